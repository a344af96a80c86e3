package server

import (
	"context"
	"os"
	"path"

	"github.com/Daskott/contactspro/server/gstorage"
	"github.com/Daskott/contactspro/server/models"
	"github.com/Daskott/contactspro/server/work"
	"github.com/Daskott/contactspro/shared"
	"github.com/Daskott/contactspro/utils"
	"github.com/pkg/errors"
)

const (
	REPAIR_GROUP_REFERENCES_JOB = "repairGroupReferences"
	BACKUP_SQLITE_DB_JOB        = "backupSqliteDb"
)

func registerJobHandlers(wpa *work.WorkerPoolAdapter, backup *sqliteBackup) error {
	if err := wpa.Register(REPAIR_GROUP_REFERENCES_JOB, repairGroupReferences); err != nil {
		return err
	}

	if backup == nil {
		return nil
	}

	return wpa.Register(BACKUP_SQLITE_DB_JOB, backup.run)
}

func enqueueJobs(wpa *work.WorkerPoolAdapter, config *shared.ServerConfig) error {
	err := wpa.PeriodicallyPerform(config.ContactsPro.Cron.RepairSchedule, REPAIR_GROUP_REFERENCES_JOB)
	if err != nil {
		return err
	}

	if !config.Google.Storage.EnableSqliteBackupAndSync {
		return nil
	}

	return wpa.PeriodicallyPerform(config.Google.Storage.SqliteBackupSchedule, BACKUP_SQLITE_DB_JOB)
}

func repairGroupReferences(ctx context.Context) error {
	removed, err := models.RepairGroupReferences(ctx)
	if err != nil {
		return err
	}

	if removed > 0 {
		logg.Infof("Removed %v dangling group reference(s)", removed)
	}

	return nil
}

// sqliteBackup keeps a copy of the sqlite db in google storage
type sqliteBackup struct {
	storage   *gstorage.GStorage
	bucket    string
	prefix    string
	dbRootDir string
}

func newSqliteBackup(ctx context.Context, config shared.GoogleConfig, dbRootDir string) (*sqliteBackup, error) {
	storage, err := gstorage.NewGStorage(ctx, config.ApplicationCredentials)
	if err != nil {
		return nil, err
	}

	return &sqliteBackup{
		storage:   storage,
		bucket:    config.Storage.Bucket,
		prefix:    config.Storage.Prefix,
		dbRootDir: dbRootDir,
	}, nil
}

func (b *sqliteBackup) objectName() string {
	return path.Join(b.prefix, models.DB_NAME)
}

// run uploads a snapshot of the live db
func (b *sqliteBackup) run(ctx context.Context) error {
	dbFilePath, err := models.DbFilePath(b.dbRootDir)
	if err != nil {
		return err
	}

	snapshotPath := dbFilePath + ".backup"
	defer os.Remove(snapshotPath)

	if err := models.BackupTo(ctx, snapshotPath); err != nil {
		return err
	}

	err = b.storage.UploadFile(ctx, b.bucket, b.objectName(), snapshotPath)
	if err != nil {
		return errors.Wrapf(err, "upload %v", b.objectName())
	}

	logg.Infof("Uploaded sqlite backup to gs://%v/%v", b.bucket, b.objectName())
	return nil
}

// restore pulls the last backup down when there is no local db yet
func (b *sqliteBackup) restore(ctx context.Context) error {
	dbFilePath, err := models.DbFilePath(b.dbRootDir)
	if err != nil {
		return err
	}

	if utils.FileExist(dbFilePath) {
		return nil
	}

	err = b.storage.DownloadFile(ctx, b.bucket, b.objectName(), dbFilePath)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Infof("No sqlite backup found at gs://%v/%v, starting with an empty db", b.bucket, b.objectName())
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "restore sqlite backup")
	}

	logg.Infof("Restored sqlite db from gs://%v/%v", b.bucket, b.objectName())
	return nil
}

func (b *sqliteBackup) close() {
	if err := b.storage.Close(); err != nil {
		logg.Error(err)
	}
}
