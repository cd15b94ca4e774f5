package membership

import (
	"testing"

	"github.com/Daskott/rolodex/server/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupFixtures(t *testing.T) (*models.User, *models.Contact, *models.Category, *models.Category) {
	t.Helper()
	models.InitializeTestDb()

	user := &models.User{FirstName: "tony", LastName: "stark", Email: "stark@avengers.com", Password: "very-secure"}
	assert.Nil(t, models.CreateUser(user))

	contact := &models.Contact{
		UserID:    user.ID,
		FirstName: "james",
		LastName:  "rhodes",
		Address1:  "10880 Malibu Point",
		City:      "Malibu",
		State:     "CA",
		Email:     "rhodey@avengers.com",
		Phone:     "+12345678900",
	}
	assert.Nil(t, models.CreateContact(contact))

	friends := &models.Category{UserID: user.ID, Name: "Friends"}
	work := &models.Category{UserID: user.ID, Name: "Work"}
	assert.Nil(t, models.CreateCategory(friends))
	assert.Nil(t, models.CreateCategory(work))

	return user, contact, friends, work
}

func TestAddContactToCategories(t *testing.T) {
	_, contact, friends, work := setupFixtures(t)

	err := AddContactToCategories([]uint{friends.ID, work.ID}, contact.ID)
	assert.Nil(t, err)

	for _, category := range []*models.Category{friends, work} {
		linked, err := IsContactInCategory(category.ID, contact.ID)
		assert.Nil(t, err)
		assert.True(t, linked, "Contact should be in %v", category.Name)
	}
}

func TestAddContactToCategoriesIsIdempotent(t *testing.T) {
	_, contact, friends, _ := setupFixtures(t)

	assert.Nil(t, AddContactToCategories([]uint{friends.ID}, contact.ID))
	assert.Nil(t, AddContactToCategories([]uint{friends.ID}, contact.ID))

	contacts, err := models.ContactsInCategory(friends.ID)
	assert.Nil(t, err)
	assert.Len(t, contacts, 1)
}

func TestAddContactToCategoriesSkipsUnknownIds(t *testing.T) {
	_, contact, friends, _ := setupFixtures(t)

	// unknown category ids are dropped without error
	err := AddContactToCategories([]uint{friends.ID, 404}, contact.ID)
	assert.Nil(t, err)

	linked, err := IsContactInCategory(friends.ID, contact.ID)
	assert.Nil(t, err)
	assert.True(t, linked)
}

func TestAddContactToCategoriesMissingContact(t *testing.T) {
	_, _, friends, _ := setupFixtures(t)

	// a contact that doesn't exist is a silent no-op
	err := AddContactToCategories([]uint{friends.ID}, 404)
	assert.Nil(t, err)

	contacts, err := models.ContactsInCategory(friends.ID)
	assert.Nil(t, err)
	assert.Empty(t, contacts)
}

func TestIsContactInCategory(t *testing.T) {
	_, contact, friends, work := setupFixtures(t)

	assert.Nil(t, AddContactToCategories([]uint{friends.ID}, contact.ID))

	linked, err := IsContactInCategory(friends.ID, contact.ID)
	assert.Nil(t, err)
	assert.True(t, linked)

	linked, err = IsContactInCategory(work.ID, contact.ID)
	assert.Nil(t, err)
	assert.False(t, linked)

	// lookup failure, not 'false'
	_, err = IsContactInCategory(friends.ID, 404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRemoveAllContactCategories(t *testing.T) {
	_, contact, friends, work := setupFixtures(t)

	assert.Nil(t, AddContactToCategories([]uint{friends.ID, work.ID}, contact.ID))
	assert.Nil(t, RemoveAllContactCategories(contact.ID))

	for _, category := range []*models.Category{friends, work} {
		linked, err := IsContactInCategory(category.ID, contact.ID)
		assert.Nil(t, err)
		assert.False(t, linked)
	}

	err := RemoveAllContactCategories(404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAddContactToCategoriesDoesNotCheckOwner(t *testing.T) {
	_, contact, _, _ := setupFixtures(t)

	otherUser := &models.User{FirstName: "spider", LastName: "man", Email: "web@avengers.com", Password: "secure???"}
	assert.Nil(t, models.CreateUser(otherUser))

	foreign := &models.Category{UserID: otherUser.ID, Name: "Villains"}
	assert.Nil(t, models.CreateCategory(foreign))

	// owner matching is left to the handlers; by id, any category links
	assert.Nil(t, AddContactToCategories([]uint{foreign.ID}, contact.ID))

	linked, err := IsContactInCategory(foreign.ID, contact.ID)
	assert.Nil(t, err)
	assert.True(t, linked)
}

func TestUnimplementedOperations(t *testing.T) {
	setupFixtures(t)

	err := AddContactToCategory(1, 1)
	assert.ErrorIs(t, err, ErrNotImplemented)

	_, err = AppUserCategories(1)
	assert.ErrorIs(t, err, ErrNotImplemented)
}
