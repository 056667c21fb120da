package infra

import (
	"fmt"
	"strings"

	"github.com/zakareajob-cpu/zak-crm/internal/model"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverLibSQL   = "libsql"
)

// NewDatabase opens a GORM connection for the given driver, migrates the
// schema and applies the idempotent SQL patches that AutoMigrate cannot
// express. TranslateError is enabled so unique violations surface as
// gorm.ErrDuplicatedKey on every dialect.
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == DriverPostgres {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	} else {
		// SQLite allows one writer; a single connection also keeps the
		// foreign_keys pragma in effect for every statement.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("database: DATABASE_URL is required for postgres")
		}
		return postgres.Open(dsn), nil
	case DriverSQLite, "":
		if dsn == "" {
			dsn = "zakcrm.db"
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_foreign_keys=on&_busy_timeout=5000"
		}
		return sqlite.Open(dsn), nil
	case DriverLibSQL:
		// libsql speaks the SQLite dialect over HTTP; reuse the sqlite dialector
		// with the driver registered by libsql-client-go.
		return sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn}), nil
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}
}

// Migrate creates or updates all tables, then runs the schema patches for the
// active dialect.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Contact{},
		&model.Product{},
		&model.CustomerPrice{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.InvoiceCounter{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

type schemaPatch struct{ descr, sql string }

// portablePatches run on every dialect. Each uses IF NOT EXISTS so re-running
// on a patched schema is a no-op.
var portablePatches = []schemaPatch{
	{"contacts list order", `CREATE INDEX IF NOT EXISTS idx_contacts_created_desc ON contacts (created_at DESC)`},
	{"invoices list order", `CREATE INDEX IF NOT EXISTS idx_invoices_created_desc ON invoices (created_at DESC)`},
	{"products listing order", `CREATE INDEX IF NOT EXISTS idx_products_active_name ON products (active, full_name)`},
}

// postgresPatches need PostgreSQL features (extensions, expression GIN indexes).
var postgresPatches = []schemaPatch{
	{"pg_trgm extension", `CREATE EXTENSION IF NOT EXISTS pg_trgm`},
	{"products full_name trigram", `CREATE INDEX IF NOT EXISTS idx_products_full_name_trgm
		ON products USING gin (lower(full_name) gin_trgm_ops)`},
	{"products short_name trigram", `CREATE INDEX IF NOT EXISTS idx_products_short_name_trgm
		ON products USING gin (lower(short_name) gin_trgm_ops)`},
	{"contacts name trigram", `CREATE INDEX IF NOT EXISTS idx_contacts_name_trgm
		ON contacts USING gin (lower(name) gin_trgm_ops)`},
	// early schemas stored the fee as numeric(14,2)
	{"invoices fee unscaled", `ALTER TABLE invoices ALTER COLUMN internal_shipping_fee TYPE numeric`},
}

func applySchemaPatches(db *gorm.DB) error {
	patches := portablePatches
	if db.Dialector.Name() == DriverPostgres {
		patches = append(append([]schemaPatch{}, portablePatches...), postgresPatches...)
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
