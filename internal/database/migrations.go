package database

import (
	"fmt"
	"log/slog"

	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"gorm.io/gorm"
)

// requiredIndexes are indexes the workflows rely on for correctness rather
// than speed. Tables created before an index was declared on the model do
// not pick it up from AutoMigrate on every dialect, so they are checked
// explicitly.
var requiredIndexes = []struct {
	model interface{}
	name  string
}{
	// One application per user.
	{&models.CAApplication{}, "idx_ca_applications_user_id"},
	{&models.User{}, "idx_users_username"},
	{&models.User{}, "idx_users_email"},
}

// EnsureIndexes creates any required index that is missing.
func EnsureIndexes(db *gorm.DB, log *slog.Logger) error {
	migrator := db.Migrator()
	for _, idx := range requiredIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Info("created index", "index", idx.name)
	}
	return nil
}
