package models

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	MAX_PAGE_SIZE     = 100
	DEFAULT_PAGE_SIZE = 20
)

// ErrStaleRecord is returned when an update carries a last-known
// updated_at that no longer matches the stored row.
var ErrStaleRecord = errors.New("record has been modified since it was last read")

type BaseModel struct {
	ID        uint      `json:"id,omitempty" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Paging struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Pages int64 `json:"pages"`
}

// ---------------------------------------------------------------------------------//
// Scopes
// --------------------------------------------------------------------------------//

func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page == 0 {
			page = 1
		}

		switch {
		case pageSize > MAX_PAGE_SIZE:
			pageSize = MAX_PAGE_SIZE
		case pageSize <= 0:
			pageSize = DEFAULT_PAGE_SIZE
		}

		offset := (page - 1) * pageSize
		return db.Offset(offset).Limit(pageSize)
	}
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func newPaging(page, pageSize int, total int64) *Paging {
	paging := &Paging{Page: int64(page), Total: total}
	if paging.Page == 0 {
		paging.Page = 1
	}

	if pageSize <= 0 {
		pageSize = DEFAULT_PAGE_SIZE
	}

	paging.Pages = int64(math.Ceil(float64(paging.Total) / float64(pageSize)))
	if paging.Pages == 0 {
		paging.Pages = 1
	}

	return paging
}

// updateScoped runs an update limited to 'idQuery', with an optional
// updated_at precondition. A no-op result is resolved to either
// 'not found'(row is gone) or a stale-record conflict(row changed).
func updateScoped(model interface{}, data map[string]interface{}, fields []string, lastKnownUpdate *time.Time, idQuery string, idArgs ...interface{}) error {
	tx := db.Model(model).Where(idQuery, idArgs...)
	if lastKnownUpdate != nil {
		tx = tx.Where("updated_at = ?", *lastKnownUpdate)
	}

	res := tx.Select(fields).Updates(data)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected > 0 {
		return nil
	}

	// Re-check existence to tell a deleted row apart from a concurrent update
	err := db.Where(idQuery, idArgs...).First(model).Error
	if err != nil {
		return err
	}

	if lastKnownUpdate != nil {
		return ErrStaleRecord
	}

	return nil
}
