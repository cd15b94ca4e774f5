package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func createContactFixtures(t *testing.T) (*User, *User) {
	t.Helper()

	owner := &User{FirstName: "tony", LastName: "stark", Email: "stark@avengers.com", Password: "very-secure"}
	other := &User{FirstName: "spider", LastName: "man", Email: "web@avengers.com", Password: "secure???"}
	assert.Nil(t, CreateUser(owner))
	assert.Nil(t, CreateUser(other))

	return owner, other
}

func newContact(userID uint, firstName, lastName, email string) *Contact {
	return &Contact{
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
		Address1:  "10880 Malibu Point",
		City:      "Malibu",
		State:     "CA",
		ZipCode:   90265,
		Email:     email,
		Phone:     "+12345678900",
	}
}

func TestFindUserContactScopedToOwner(t *testing.T) {
	InitializeTestDb()
	owner, other := createContactFixtures(t)

	contact := newContact(owner.ID, "happy", "hogan", "happy@avengers.com")
	assert.Nil(t, CreateContact(contact))

	found, err := FindUserContact(owner.ID, contact.ID)
	assert.Nil(t, err)
	assert.Equal(t, "happy hogan", found.FullName())

	_, err = FindUserContact(other.ID, contact.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "Another user's id should not resolve the contact")
}

func TestUserContactsOrdering(t *testing.T) {
	InitializeTestDb()
	owner, _ := createContactFixtures(t)

	assert.Nil(t, CreateContact(newContact(owner.ID, "stephen", "strange", "supreme@avengers.com")))
	assert.Nil(t, CreateContact(newContact(owner.ID, "james", "rhodes", "rhodey@avengers.com")))
	assert.Nil(t, CreateContact(newContact(owner.ID, "scott", "lang", "ant@avengers.com")))

	contacts, paging, err := UserContacts(owner.ID, 1, 20)
	assert.Nil(t, err)
	assert.Equal(t, int64(3), paging.Total)

	lastNames := []string{}
	for _, c := range contacts {
		lastNames = append(lastNames, c.LastName)
	}
	assert.Equal(t, []string{"lang", "rhodes", "strange"}, lastNames)
}

func TestSearchUserContacts(t *testing.T) {
	InitializeTestDb()
	owner, other := createContactFixtures(t)

	assert.Nil(t, CreateContact(newContact(owner.ID, "stephen", "strange", "supreme@avengers.com")))
	assert.Nil(t, CreateContact(newContact(owner.ID, "steve", "rogers", "cap@avengers.com")))
	assert.Nil(t, CreateContact(newContact(owner.ID, "natasha", "romanoff", "nat@avengers.com")))
	assert.Nil(t, CreateContact(newContact(other.ID, "steve", "trevor", "trevor@example.com")))

	t.Run("case-insensitive match over the full name", func(t *testing.T) {
		contacts, _, err := SearchUserContacts(owner.ID, "STEVE", 1, 20)
		assert.Nil(t, err)
		assert.Len(t, contacts, 1)
		assert.Equal(t, "rogers", contacts[0].LastName)
	})

	t.Run("match can span first & last name", func(t *testing.T) {
		contacts, _, err := SearchUserContacts(owner.ID, "hen str", 1, 20)
		assert.Nil(t, err)
		assert.Len(t, contacts, 1)
		assert.Equal(t, "strange", contacts[0].LastName)
	})

	t.Run("empty query matches everyone", func(t *testing.T) {
		contacts, paging, err := SearchUserContacts(owner.ID, "", 1, 20)
		assert.Nil(t, err)
		assert.Len(t, contacts, 3)
		assert.Equal(t, int64(3), paging.Total)
	})
}

func TestUserContactsPaging(t *testing.T) {
	InitializeTestDb()
	owner, _ := createContactFixtures(t)

	assert.Nil(t, CreateContact(newContact(owner.ID, "stephen", "strange", "supreme@avengers.com")))
	assert.Nil(t, CreateContact(newContact(owner.ID, "james", "rhodes", "rhodey@avengers.com")))
	assert.Nil(t, CreateContact(newContact(owner.ID, "scott", "lang", "ant@avengers.com")))

	contacts, paging, err := UserContacts(owner.ID, 2, 2)
	assert.Nil(t, err)
	assert.Len(t, contacts, 1)
	assert.Equal(t, int64(2), paging.Page)
	assert.Equal(t, int64(2), paging.Pages)
	assert.Equal(t, int64(3), paging.Total)
}

func TestUpdateUserContact(t *testing.T) {
	InitializeTestDb()
	owner, other := createContactFixtures(t)

	contact := newContact(owner.ID, "happy", "hogan", "happy@avengers.com")
	assert.Nil(t, CreateContact(contact))

	t.Run("applies field updates", func(t *testing.T) {
		err := UpdateUserContact(owner.ID, contact.ID, map[string]interface{}{"first_name": "harold"}, nil)
		assert.Nil(t, err)

		updated, err := FindUserContact(owner.ID, contact.ID)
		assert.Nil(t, err)
		assert.Equal(t, "harold", updated.FirstName)
	})

	t.Run("ignores non-updatable fields", func(t *testing.T) {
		err := UpdateUserContact(owner.ID, contact.ID, map[string]interface{}{
			"last_name": "hogan",
			"user_id":   other.ID,
		}, nil)
		assert.Nil(t, err)

		_, err = FindUserContact(owner.ID, contact.ID)
		assert.Nil(t, err, "Owner should be untouched by updates")
	})

	t.Run("stale precondition is rejected", func(t *testing.T) {
		current, err := FindUserContact(owner.ID, contact.ID)
		assert.Nil(t, err)

		staleTime := current.UpdatedAt.Add(-time.Hour)
		err = UpdateUserContact(owner.ID, contact.ID, map[string]interface{}{"first_name": "hank"}, &staleTime)
		assert.ErrorIs(t, err, ErrStaleRecord)
	})

	t.Run("matching precondition succeeds", func(t *testing.T) {
		current, err := FindUserContact(owner.ID, contact.ID)
		assert.Nil(t, err)

		err = UpdateUserContact(owner.ID, contact.ID, map[string]interface{}{"first_name": "hank"}, &current.UpdatedAt)
		assert.Nil(t, err)
	})

	t.Run("missing contact reports not found", func(t *testing.T) {
		err := UpdateUserContact(owner.ID, 404, map[string]interface{}{"first_name": "hank"}, nil)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestContactsInCategory(t *testing.T) {
	InitializeTestDb()
	owner, _ := createContactFixtures(t)

	friends := &Category{UserID: owner.ID, Name: "Friends"}
	assert.Nil(t, CreateCategory(friends))

	rhodey := newContact(owner.ID, "james", "rhodes", "rhodey@avengers.com")
	pepper := newContact(owner.ID, "pepper", "potts", "pepper@avengers.com")
	assert.Nil(t, CreateContact(rhodey))
	assert.Nil(t, CreateContact(pepper))
	assert.Nil(t, rhodey.AddCategories([]Category{*friends}))

	contacts, err := ContactsInCategory(friends.ID)
	assert.Nil(t, err)
	assert.Len(t, contacts, 1)
	assert.Equal(t, "rhodes", contacts[0].LastName)
}

func TestAddCategoriesIsSetLike(t *testing.T) {
	InitializeTestDb()
	owner, _ := createContactFixtures(t)

	friends := &Category{UserID: owner.ID, Name: "Friends"}
	assert.Nil(t, CreateCategory(friends))

	contact := newContact(owner.ID, "james", "rhodes", "rhodey@avengers.com")
	assert.Nil(t, CreateContact(contact))

	assert.Nil(t, contact.AddCategories([]Category{*friends}))
	assert.Nil(t, contact.AddCategories([]Category{*friends}))

	contacts, err := ContactsInCategory(friends.ID)
	assert.Nil(t, err)
	assert.Len(t, contacts, 1, "Re-adding a linked category should be a no-op")
}
