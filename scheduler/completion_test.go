package scheduler

import (
	"context"
	"testing"
	"time"

	"coursehub/database"
	"coursehub/models"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCompletionSweep(t *testing.T) {
	db := database.NewTestDB(t)
	start := time.Now().UTC().Add(-72 * time.Hour)
	course := models.Course{
		CourseID: "CRS1001", CourseName: "Scrum", Mentor: "m", ServiceType: models.ServiceAgile,
		StartDate: start, EndDate: start.Add(48 * time.Hour), IsActive: true,
	}
	require.NoError(t, db.Create(&course).Error)

	regs := []models.Registration{
		{ParticipantID: "p1", CourseID: course.ID, RegistrationNumber: "REG1", PaymentStatus: models.PaymentPaid, RegistrationStatus: models.RegistrationConfirmed},
		{ParticipantID: "p2", CourseID: course.ID, RegistrationNumber: "REG2", PaymentStatus: models.PaymentPending, RegistrationStatus: models.RegistrationPending},
	}
	require.NoError(t, db.Create(&regs).Error)

	n, err := RunCompletionSweep(context.Background(), db, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var confirmed, pending models.Registration
	require.NoError(t, db.First(&confirmed, "registration_number = ?", "REG1").Error)
	require.NoError(t, db.First(&pending, "registration_number = ?", "REG2").Error)
	assert.Equal(t, models.RegistrationCompleted, confirmed.RegistrationStatus)
	assert.True(t, confirmed.CourseCompleted)
	assert.Equal(t, models.RegistrationPending, pending.RegistrationStatus)
}

func TestStartCompletionSchedulerRejectsBadSpec(t *testing.T) {
	c := cron.New()
	assert.Error(t, StartCompletionScheduler(c, nil, "every now and then"))
	assert.NoError(t, StartCompletionScheduler(c, nil, ""))
	assert.Len(t, c.Entries(), 1)
}
