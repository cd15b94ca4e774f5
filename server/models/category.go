package models

import "time"

var updatableCategoryFields = []string{"name"}

type Category struct {
	BaseModel
	UserID   uint      `json:"user_id" gorm:"not null"`
	Name     string    `json:"name" validate:"required"`
	Contacts []Contact `json:"contacts,omitempty" gorm:"many2many:contact_categories;"`
}

func CreateCategory(category *Category) error {
	return db.Create(category).Error
}

func FindUserCategory(userID uint, id interface{}) (*Category, error) {
	category := Category{}
	err := db.First(&category, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}

	return &category, nil
}

func FindUserCategoryWithContacts(userID uint, id interface{}) (*Category, error) {
	category := Category{}
	err := db.Preload("Contacts").First(&category, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}

	return &category, nil
}

// FindCategory looks a category up by id alone - no owner scoping
func FindCategory(id interface{}) (*Category, error) {
	category := Category{}
	err := db.First(&category, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &category, nil
}

func UserCategories(userID uint, page, pageSize int) ([]Category, *Paging, error) {
	var total int64
	categories := []Category{}

	err := db.Model(&Category{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, pageSize)).
		Where("user_id = ?", userID).
		Order("name").
		Find(&categories).Error
	if err != nil {
		return nil, nil, err
	}

	return categories, newPaging(page, pageSize, total), nil
}

func UpdateUserCategory(userID uint, id interface{}, data map[string]interface{}, lastKnownUpdate *time.Time) error {
	return updateScoped(&Category{}, data, updatableCategoryFields, lastKnownUpdate,
		"id = ? AND user_id = ?", id, userID)
}

func DeleteUserCategory(userID uint, id interface{}) error {
	return db.Where("user_id = ?", userID).Delete(&Category{}, id).Error
}
