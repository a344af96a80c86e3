package models

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Daskott/contactspro/server/logger"
	"github.com/Daskott/contactspro/shared"
	"github.com/Daskott/contactspro/utils"
	"github.com/glebarez/sqlite"
	sqlcipher "github.com/mutecomm/go-sqlcipher/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	DB_NAME = "contactspro.db"

	// SQLCIPHER_DRIVER is the database/sql name go-sqlcipher registers under
	SQLCIPHER_DRIVER = "sqlite3"
)

var ErrEncryptedStore = errors.New("sqlite db is encrypted, set sqlite.passPhrase to open it")

var logg = logger.NewLogger()
var db *gorm.DB

// AutoMigrate opens the sqlite db under dbRootDir & migrates the schema
func AutoMigrate(config shared.SqliteConfig, dbRootDir string) error {
	err := openDB(config, dbRootDir)
	if err != nil {
		return err
	}

	return migrate(db)
}

// Ping checks that the database is reachable
func Ping(ctx context.Context) error {
	if db == nil {
		return errors.New("database not initialized")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// BackupTo writes a consistent snapshot of the database to destFilePath
func BackupTo(ctx context.Context, destFilePath string) error {
	if err := os.Remove(destFilePath); err != nil && !os.IsNotExist(err) {
		return err
	}

	return errors.Wrap(db.WithContext(ctx).Exec("VACUUM INTO ?", destFilePath).Error, "sqlite backup")
}

func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}

// DbFilePath returns where the sqlite file for dbRootDir lives
func DbFilePath(dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dbDir, DB_NAME), nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func migrate(conn *gorm.DB) error {
	err := conn.SetupJoinTable(&Contact{}, "Groups", &ContactGroup{})
	if err != nil {
		return errors.Wrap(err, "setup contact_groups join table")
	}

	err = conn.AutoMigrate(&Group{}, &Contact{}, &ContactGroup{})
	if err != nil {
		return errors.Wrap(err, "auto-migrate")
	}

	return nil
}

func openDB(config shared.SqliteConfig, dbRootDir string) error {
	dbFilePath, err := DbFilePath(dbRootDir)
	if err != nil {
		return fmt.Errorf("failed to create db directory: %v", err)
	}

	if config.PassPhrase == "" && isEncrypted(dbFilePath) {
		return ErrEncryptedStore
	}

	dialector := sqlite.Open(fmt.Sprintf(
		"file:%v?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		dbFilePath,
	))

	if config.PassPhrase != "" {
		logg.Info("Using encrypted sqlite store")
		dialector = &sqlite.Dialector{
			DriverName: SQLCIPHER_DRIVER,
			DSN: fmt.Sprintf(
				"file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL&_busy_timeout=5000",
				dbFilePath,
				url.QueryEscape(config.PassPhrase),
			),
		}
	}

	db, err = gorm.Open(dialector, gormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	return nil
}

// isEncrypted reports whether an existing db file has an encrypted header
func isEncrypted(dbFilePath string) bool {
	if !utils.FileExist(dbFilePath) {
		return false
	}

	encrypted, err := sqlcipher.IsEncrypted(dbFilePath)
	return err == nil && encrypted
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		// contact_groups is cleaned up explicitly, see DeleteGroup & RepairGroupReferences
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}
