package models

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InitializeTestDb points the package at a fresh, private in-memory database.
// Meant for tests only.
func InitializeTestDb() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		log.Panic(err)
	}

	// A single connection keeps the in-memory db alive & serializes writers
	sqlDB, err := conn.DB()
	if err != nil {
		log.Panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(conn); err != nil {
		log.Panic(err)
	}

	db = conn
}
