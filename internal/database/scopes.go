package database

import (
	"gorm.io/gorm"

	"github.com/infinito-iitp/ca-portal-api/internal/utils"
)

// Paginate restricts a query to one page. Params without a limit leave the
// query unpaged.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit < 1 {
			return db
		}
		return db.Offset(params.Offset()).Limit(params.Limit)
	}
}
