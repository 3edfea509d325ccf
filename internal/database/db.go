package database

import (
	"fmt"

	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/store"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection opens a GORM connection for the postgres or sqlite driver and
// migrates the schema. The memory driver has no connection and returns nil.
func NewConnection(driver, databaseURL, sqlitePath string, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(databaseURL)
	case "sqlite":
		dialector = sqlite.Open(sqlitePath)
	case "memory":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Employee{},
		&model.School{},
		&model.WorkEntry{},
		&model.EditRecord{},
		&model.Position{},
		&model.Role{},
		&model.HistoryLog{},
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}

// Tables returns the persistence tables for db, or in-memory tables when db is nil
func Tables(db *gorm.DB) store.Tables {
	if db == nil {
		return store.MemoryTables()
	}
	return store.Tables{
		Employees:   repository.NewTable[model.Employee](db, ""),
		Schools:     repository.NewTable[model.School](db, ""),
		WorkEntries: repository.NewTable[model.WorkEntry](db, ""),
		EditRecords: repository.NewTable[model.EditRecord](db, ""),
		Positions:   repository.NewTable[model.Position](db, ""),
		Roles:       repository.NewTable[model.Role](db, ""),
		History:     repository.NewTable[model.HistoryLog](db, "created_at asc, id asc"),
	}
}

// TransactionManager returns a GORM transaction manager, or a pass-through one when db is nil
func TransactionManager(db *gorm.DB) repository.TransactionManager {
	if db == nil {
		return repository.NewNoopTransactionManager()
	}
	return repository.NewTransactionManager(db)
}
