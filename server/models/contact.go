package models

import (
	"fmt"
	"strings"
	"time"
)

var updatableContactFields = []string{"first_name",
	"last_name",
	"birth_date",
	"address1",
	"address2",
	"city",
	"state",
	"zip_code",
	"email",
	"phone",
	"image_data",
	"image_type",
}

type Contact struct {
	BaseModel
	UserID     uint       `json:"user_id" gorm:"not null"`
	FirstName  string     `json:"first_name" validate:"required,min=2,max=50"`
	LastName   string     `json:"last_name" validate:"required,min=2,max=50"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Address1   string     `json:"address1" validate:"required"`
	Address2   string     `json:"address2,omitempty"`
	City       string     `json:"city" validate:"required"`
	State      string     `json:"state" validate:"required,us_state"`
	ZipCode    int        `json:"zip_code"`
	Email      string     `json:"email" validate:"required,email"`
	Phone      string     `json:"phone" validate:"required"`
	ImageData  []byte     `json:"image_data,omitempty"`
	ImageType  string     `json:"image_type,omitempty"`
	Categories []Category `json:"categories,omitempty" gorm:"many2many:contact_categories;"`
}

func (contact *Contact) FullName() string {
	return fmt.Sprintf("%v %v", contact.FirstName, contact.LastName)
}

// AddCategories links 'categories' to the contact. Membership is set-like,
// so re-adding an already linked category is a no-op.
func (contact *Contact) AddCategories(categories []Category) error {
	if len(categories) == 0 {
		return nil
	}

	return db.Model(contact).Association("Categories").Append(&categories)
}

func (contact *Contact) ClearCategories() error {
	return db.Model(contact).Association("Categories").Clear()
}

// InCategory reports membership against the contact's loaded category set
func (contact *Contact) InCategory(categoryID uint) bool {
	for _, category := range contact.Categories {
		if category.ID == categoryID {
			return true
		}
	}

	return false
}

func CreateContact(contact *Contact) error {
	return db.Create(contact).Error
}

func FindUserContact(userID uint, id interface{}) (*Contact, error) {
	contact := Contact{}
	err := db.Preload("Categories").First(&contact, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

// FindContactWithCategories looks a contact up by id alone - callers that
// need owner scoping should use FindUserContact
func FindContactWithCategories(id interface{}) (*Contact, error) {
	contact := Contact{}
	err := db.Preload("Categories").First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

func UserContacts(userID uint, page, pageSize int) ([]Contact, *Paging, error) {
	var total int64
	contacts := []Contact{}

	err := db.Model(&Contact{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, pageSize)).Preload("Categories").
		Where("user_id = ?", userID).
		Order("last_name, first_name").
		Find(&contacts).Error
	if err != nil {
		return nil, nil, err
	}

	return contacts, newPaging(page, pageSize, total), nil
}

// SearchUserContacts filters a user's contacts by a case-insensitive
// substring match over their full name. An empty query matches everyone.
func SearchUserContacts(userID uint, nameQuery string, page, pageSize int) ([]Contact, *Paging, error) {
	var total int64
	contacts := []Contact{}

	likePattern := "%" + strings.ToLower(nameQuery) + "%"
	matchQuery := "user_id = ? AND lower(first_name || ' ' || last_name) LIKE ?"

	err := db.Model(&Contact{}).Where(matchQuery, userID, likePattern).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, pageSize)).Preload("Categories").
		Where(matchQuery, userID, likePattern).
		Order("last_name, first_name").
		Find(&contacts).Error
	if err != nil {
		return nil, nil, err
	}

	return contacts, newPaging(page, pageSize, total), nil
}

// ContactsInCategory returns exactly the contacts currently linked to the category
func ContactsInCategory(categoryID uint) ([]Contact, error) {
	contacts := []Contact{}

	err := db.Joins(
		"INNER JOIN contact_categories ON contact_categories.contact_id = contacts.id AND contact_categories.category_id = ?", categoryID).
		Order("last_name, first_name").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

func UpdateUserContact(userID uint, id interface{}, data map[string]interface{}, lastKnownUpdate *time.Time) error {
	return updateScoped(&Contact{}, data, updatableContactFields, lastKnownUpdate,
		"id = ? AND user_id = ?", id, userID)
}

func DeleteUserContact(userID uint, id interface{}) error {
	return db.Where("user_id = ?", userID).Delete(&Contact{}, id).Error
}
