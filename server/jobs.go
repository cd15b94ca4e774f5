package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Daskott/rolodex/server/gstorage"
	"github.com/Daskott/rolodex/server/models"
	"github.com/Daskott/rolodex/utils"
	"github.com/go-co-op/gocron"
)

const DB_BACKUP_JOB_TAG = "backupSqliteDb"

func scheduleDbBackup(cronScheduler *gocron.Scheduler, gcs *gstorage.GStorage, rootDir, schedule string) {
	_, err := cronScheduler.Cron(schedule).Tag(DB_BACKUP_JOB_TAG).Do(func() {
		backupSqliteDb(gcs, rootDir)
	})
	if err != nil {
		logg.Errorf("unable to schedule sqlite db backup: %v", err)
		return
	}

	logg.Infof("Sqlite db backup scheduled with cron: %v", schedule)
}

func backupSqliteDb(gcs *gstorage.GStorage, rootDir string) {
	dbFilePath, err := models.DbFilePath(rootDir)
	if err != nil {
		logg.Errorf("sqlite db backup failed: %v", err)
		return
	}

	if err = gcs.UploadFile(dbFilePath); err != nil {
		logg.Errorf("sqlite db backup failed: %v", err)
		return
	}

	logg.Infof("Sqlite db backed up to cloud storage")
}

// restoreDbBackup pulls the last uploaded db file into place on a fresh
// host. A db file already on disk always wins over the backup.
func restoreDbBackup(gcs *gstorage.GStorage, rootDir string) {
	dbFilePath, err := models.DbFilePath(rootDir)
	fatalOnError(err)

	if utils.FileExist(dbFilePath) {
		logg.Infof("%v already exists, skipping backup restore", dbFilePath)
		return
	}

	err = gcs.DownloadFile(dbFilePath)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Infof("no sqlite db backup found in cloud storage, starting fresh")
		return
	}
	fatalOnError(err)

	logg.Infof("Sqlite db restored from cloud storage")
}

// cleanup runs a final backup & then drains the server before exit
func cleanup(cronScheduler *gocron.Scheduler, server *http.Server, gcs *gstorage.GStorage, rootDir string) {
	logg.Infof("Shutting down...")
	cronScheduler.Stop()

	if gcs != nil {
		backupSqliteDb(gcs, rootDir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logg.Errorf("server shutdown: %v", err)
	}
}
