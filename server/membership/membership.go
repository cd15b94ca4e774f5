// Package membership manages the many-to-many association
// between contacts and categories.
package membership

import (
	"github.com/Daskott/rolodex/server/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotImplemented is returned by operations that are part of the service
// surface but have never been implemented. Callers must not invoke them.
var ErrNotImplemented = errors.New("not implemented")

// AddContactToCategories links the contact to every category in 'categoryIDs'.
// Ids that don't resolve to a category are skipped silently, as is a missing
// contact. Membership is set-like, so duplicate ids in one call are no-ops.
//
// Note: there is no check that a category belongs to the same user as the
// contact - handlers only ever offer the current user's categories.
func AddContactToCategories(categoryIDs []uint, contactID uint) error {
	contact, err := models.FindContactWithCategories(contactID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "AddContactToCategories")
	}

	categories := []models.Category{}
	for _, categoryID := range categoryIDs {
		category, err := models.FindCategory(categoryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "AddContactToCategories")
		}

		categories = append(categories, *category)
	}

	return errors.Wrap(contact.AddCategories(categories), "AddContactToCategories")
}

// AddContactToCategory is declared for parity with the bulk operation
// but was never implemented.
func AddContactToCategory(categoryID, contactID uint) error {
	return ErrNotImplemented
}

// AppUserCategories was never implemented - use models.UserCategories instead.
func AppUserCategories(userID uint) ([]models.Category, error) {
	return nil, ErrNotImplemented
}

// IsContactInCategory reports whether the contact is linked to the category.
// A missing contact is a lookup failure, not 'false'.
func IsContactInCategory(categoryID, contactID uint) (bool, error) {
	contact, err := models.FindContactWithCategories(contactID)
	if err != nil {
		return false, errors.Wrap(err, "IsContactInCategory")
	}

	return contact.InCategory(categoryID), nil
}

// RemoveAllContactCategories clears every category link the contact has.
// A missing contact is a lookup failure.
func RemoveAllContactCategories(contactID uint) error {
	contact, err := models.FindContactWithCategories(contactID)
	if err != nil {
		return errors.Wrap(err, "RemoveAllContactCategories")
	}

	return errors.Wrap(contact.ClearCategories(), "RemoveAllContactCategories")
}
