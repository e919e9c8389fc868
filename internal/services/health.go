// internal/services/health.go
package services

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/relaystation/backend/internal/models"
)

// recordCronHealth upserts the health row for a scheduled job after a run.
// Health bookkeeping never fails the run it describes.
func recordCronHealth(db *gorm.DB, jobName string, runErr error) {
	now := time.Now().UTC()

	var health models.CronJobHealth
	err := db.Where("job_name = ?", jobName).Take(&health).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).WithField("job", jobName).Warn("Failed to read cron health row")
		return
	}

	health.JobName = jobName
	health.LastRunAt = now
	if runErr != nil {
		health.LastError = runErr.Error()
		health.ConsecutiveFailures++
	} else {
		health.LastSuccessAt = &now
		health.LastError = ""
		health.ConsecutiveFailures = 0
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_name"}},
		UpdateAll: true,
	}).Create(&health).Error; err != nil {
		logrus.WithError(err).WithField("job", jobName).Warn("Failed to record cron health")
	}
}
