package mysql

import (
	"testing"

	aggregateDomain "findoc-pipeline/internal/domain/aggregate"
	invaliddocDomain "findoc-pipeline/internal/domain/invaliddoc"
	ledgerDomain "findoc-pipeline/internal/domain/ledger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full schema.
// TranslateError must match production config: the ledger claim path depends
// on gorm.ErrDuplicatedKey.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&ledgerDomain.Entry{},
		&aggregateDomain.Aggregate{},
		&aggregateDomain.LineItem{},
		&invaliddocDomain.Record{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
