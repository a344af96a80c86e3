package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	DEFAULT_PAGE_SIZE = 10
	MAX_PAGE_SIZE     = 100
)

type BaseModel struct {
	ID        uint      `json:"_id" gorm:"primarykey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ---------------------------------------------------------------------------------//
// Scopes
// --------------------------------------------------------------------------------//

// paginate expects page >= 1 and 1 <= pageSize <= MAX_PAGE_SIZE, see ListParams.Validate
func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset := (page - 1) * pageSize
		return db.Offset(offset).Limit(pageSize)
	}
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func totalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}

	return int64(math.Ceil(float64(total) / float64(pageSize)))
}
