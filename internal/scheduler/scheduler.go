package scheduler

import (
	"time"

	"github.com/mdouchement/clouddrive/internal/storage"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// A Controller is an Iversion Of Control pattern used to init the scheduler package.
type Controller struct {
	Logger        logger.Logger
	Storage       storage.Backend
	Specification string
	// StagingTTL is the age after which an abandoned upload is removed. Zero disables the sweep.
	StagingTTL time.Duration
}

// Start lauches the scheduler asynchronously.
func Start(c Controller) (*cron.Cron, error) {
	cron := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	log := c.Logger.WithPrefix("[scheduler]")

	_, err := cron.AddFunc(c.Specification, func() {
		if err := Sweep(c); err != nil {
			log.Error(err)
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q", c.Specification)
	}
	log.Info("Staging cleanup task registred")

	cron.Start()
	log.Info("Scheduler is running")
	return cron, nil
}

// Sweep removes the staging uploads untouched for StagingTTL then cleans the storage.
func Sweep(c Controller) error {
	log := c.Logger.WithPrefix("[cleanup]")

	if c.StagingTTL > 0 {
		uploads, err := c.Storage.Uploads()
		if err != nil {
			return errors.Wrap(err, "sweep")
		}

		deadline := time.Now().Add(-c.StagingTTL)
		for _, upload := range uploads {
			if upload.ModifiedAt.After(deadline) {
				continue
			}

			if err = c.Storage.RemoveUpload(upload.ID); err != nil {
				log.WithField("upload", upload.ID).Error(err)
				continue
			}
			log.Infof("Removed abandoned upload %s", upload.ID)
		}
	}

	log.Debug("Storage cleanup")
	return errors.Wrap(c.Storage.Cleanup(), "sweep")
}
