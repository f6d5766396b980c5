package registration

import (
	"bytes"
	"context"
	"testing"
	"time"

	"coursehub/apperrors"
	"coursehub/database"
	"coursehub/models"
	"coursehub/services/catalog"
	"coursehub/services/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	db          *gorm.DB
	ctx         context.Context
	course      *models.Course
	participant *models.Participant
	recorder    *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.NewTestDB(t)

	rec := &events.Recorder{}
	previous := events.SetPublisher(rec)
	t.Cleanup(func() { events.SetPublisher(previous) })

	start := time.Now().UTC().Add(48 * time.Hour)
	f := &fixture{db: db, ctx: context.Background(), recorder: rec}
	f.course = addCourse(t, db, "CRS1001", start, ptr(10))
	f.participant = addParticipant(t, db, "asha@example.com", "9000000001")
	return f
}

func addCourse(t *testing.T, db *gorm.DB, courseID string, start time.Time, capacity *int) *models.Course {
	t.Helper()
	c := &models.Course{
		CourseID:           courseID,
		CourseName:         "Scrum Master " + courseID,
		Description:        "Two day workshop",
		Mentor:             "Ravi",
		ServiceType:        models.ServiceAgile,
		StartDate:          start,
		EndDate:            start.Add(72 * time.Hour),
		Price:              1000,
		DiscountPercentage: 10,
		FinalPrice:         900,
		IsActive:           true,
		MaxParticipants:    capacity,
		CapacityRemaining:  capacity,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func addParticipant(t *testing.T, db *gorm.DB, email, mobile string) *models.Participant {
	t.Helper()
	p := &models.Participant{
		Name: "Asha " + mobile, Email: email, Mobile: mobile,
		Password: "hash", Status: models.ParticipantActive,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func (f *fixture) reload(t *testing.T) models.Course {
	t.Helper()
	var c models.Course
	require.NoError(t, f.db.First(&c, "id = ?", f.course.ID).Error)
	return c
}

func (f *fixture) pay(t *testing.T, reg *models.Registration) *models.Registration {
	t.Helper()
	paid, err := ProcessPayment(f.ctx, f.db, f.participant.ID, reg.ID, PaymentInput{
		PaymentMode: "UPI", PaymentID: "pay_123", AmountPaid: reg.FinalAmount,
	})
	require.NoError(t, err)
	return paid
}

func TestRegisterSnapshotsPriceAndTakesSeat(t *testing.T) {
	f := newFixture(t)

	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	assert.Equal(t, models.RegistrationPending, reg.RegistrationStatus)
	assert.Equal(t, models.PaymentPending, reg.PaymentStatus)
	assert.Equal(t, 1000.0, reg.OriginalPrice)
	assert.Equal(t, 10.0, reg.DiscountApplied)
	assert.Equal(t, 900.0, reg.FinalAmount)
	assert.Equal(t, models.DefaultCurrency, reg.Currency)
	assert.Regexp(t, `^REG\d{6}[0-9A-Z]{6}$`, reg.RegistrationNumber)

	course := f.reload(t)
	assert.Equal(t, 9, *course.CapacityRemaining)
	assert.Equal(t, 1, course.EnrollmentCount)

	var entries []models.ParticipantCourse
	require.NoError(t, f.db.Where("participant_id = ?", f.participant.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, reg.ID, entries[0].RegistrationID)

	assert.Len(t, f.recorder.OfType(events.RegistrationCreated), 1)
}

func TestRegisterByInternalID(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, f.course.ID, reg.CourseID)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	_, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	_, err = Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.Conflict))
	assert.Equal(t, "You are already registered for this course", err.Error())

	course := f.reload(t)
	assert.Equal(t, 9, *course.CapacityRemaining)
	assert.Equal(t, 1, course.EnrollmentCount)
}

func TestRegisterAfterCancelIsAllowed(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)
	_, err = Cancel(f.ctx, f.db, reg.ID, ParticipantActor(f.participant.ID), "")
	require.NoError(t, err)

	_, err = Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)
	assert.Equal(t, 9, *f.reload(t).CapacityRemaining)
}

func TestRegisterFullCourse(t *testing.T) {
	f := newFixture(t)
	full := addCourse(t, f.db, "CRS1002", time.Now().UTC().Add(48*time.Hour), ptr(1))
	other := addParticipant(t, f.db, "ben@example.com", "9000000002")

	_, err := Register(f.ctx, f.db, f.participant.ID, full.CourseID)
	require.NoError(t, err)

	_, err = Register(f.ctx, f.db, other.ID, full.CourseID)
	require.Error(t, err)
	assert.Equal(t, "Course is full", err.Error())

	var c models.Course
	require.NoError(t, f.db.First(&c, "id = ?", full.ID).Error)
	assert.Equal(t, 0, *c.CapacityRemaining)
	assert.Equal(t, 1, c.EnrollmentCount)
}

func TestRegisterUntrackedCapacity(t *testing.T) {
	f := newFixture(t)
	open := addCourse(t, f.db, "CRS1003", time.Now().UTC().Add(48*time.Hour), nil)

	_, err := Register(f.ctx, f.db, f.participant.ID, open.CourseID)
	require.NoError(t, err)

	var c models.Course
	require.NoError(t, f.db.First(&c, "id = ?", open.ID).Error)
	assert.Nil(t, c.CapacityRemaining)
	assert.Equal(t, 1, c.EnrollmentCount)
}

func TestRegisterRejectsUnavailableCourses(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Model(f.course).Update("is_active", false).Error)
	_, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	assert.EqualError(t, err, "Course is not available")

	ended := addCourse(t, f.db, "CRS1004", time.Now().UTC().Add(-96*time.Hour), ptr(5))
	_, err = Register(f.ctx, f.db, f.participant.ID, ended.CourseID)
	assert.EqualError(t, err, "Course has already ended")

	_, err = Register(f.ctx, f.db, f.participant.ID, "CRS9999")
	assert.True(t, apperrors.IsKind(err, apperrors.NotFound))

	_, err = Register(f.ctx, f.db, "00000000-0000-0000-0000-000000000000", ended.CourseID)
	assert.Error(t, err)
}

func TestProcessPaymentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	_, err = ProcessPayment(f.ctx, f.db, f.participant.ID, reg.ID, PaymentInput{PaymentMode: "UPI", PaymentID: "p1", AmountPaid: 500})
	assert.EqualError(t, err, "Insufficient payment amount")

	_, err = ProcessPayment(f.ctx, f.db, f.participant.ID, reg.ID, PaymentInput{PaymentMode: "Cheque", PaymentID: "p1", AmountPaid: 900})
	assert.EqualError(t, err, "Invalid payment mode")

	paid := f.pay(t, reg)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, models.RegistrationConfirmed, paid.RegistrationStatus)
	assert.Equal(t, 900.0, paid.AmountPaid)
	require.NotNil(t, paid.TransactionDate)

	_, err = ProcessPayment(f.ctx, f.db, f.participant.ID, reg.ID, PaymentInput{PaymentMode: "Card", PaymentID: "p2", AmountPaid: 900})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.Conflict))
	assert.Equal(t, "Payment already processed", err.Error())

	var stored models.Registration
	require.NoError(t, f.db.First(&stored, "id = ?", reg.ID).Error)
	assert.Equal(t, "pay_123", stored.PaymentID)
	assert.Equal(t, "UPI", stored.PaymentMode)
}

func TestProcessPaymentScopesToParticipant(t *testing.T) {
	f := newFixture(t)
	other := addParticipant(t, f.db, "ben@example.com", "9000000002")
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	_, err = ProcessPayment(f.ctx, f.db, other.ID, reg.ID, PaymentInput{PaymentMode: "UPI", PaymentID: "p1", AmountPaid: 900})
	assert.True(t, apperrors.IsKind(err, apperrors.NotFound))

	_, err = ProcessPayment(f.ctx, f.db, f.participant.ID, "not-an-id", PaymentInput{PaymentMode: "UPI", PaymentID: "p1", AmountPaid: 900})
	assert.EqualError(t, err, "Invalid registration ID")
}

func TestCancelPaidRegistrationRefundsAndReleasesSeat(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)
	f.pay(t, reg)

	cancelled, err := Cancel(f.ctx, f.db, reg.ID, ParticipantActor(f.participant.ID), "")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationCancelled, cancelled.RegistrationStatus)
	assert.Equal(t, models.PaymentRefunded, cancelled.PaymentStatus)
	assert.Equal(t, "Cancelled by participant", cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancellationDate)

	course := f.reload(t)
	assert.Equal(t, 10, *course.CapacityRemaining)
	assert.Equal(t, 0, course.EnrollmentCount)

	var entries int64
	f.db.Model(&models.ParticipantCourse{}).Where("participant_id = ?", f.participant.ID).Count(&entries)
	assert.Zero(t, entries)

	_, err = Cancel(f.ctx, f.db, reg.ID, AdminActor("admin-1"), "")
	assert.EqualError(t, err, "Registration is already cancelled")
	assert.Equal(t, 10, *f.reload(t).CapacityRemaining)

	_, err = ProcessPayment(f.ctx, f.db, f.participant.ID, reg.ID, PaymentInput{PaymentMode: "UPI", PaymentID: "p9", AmountPaid: 900})
	assert.Error(t, err)
}

func TestAdminCancelRestoresCapacity(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	cancelled, err := Cancel(f.ctx, f.db, reg.ID, AdminActor("admin-1"), "  duplicate booking ")
	require.NoError(t, err)
	assert.Equal(t, "duplicate booking", cancelled.CancellationReason)
	assert.Equal(t, models.PaymentPending, cancelled.PaymentStatus)
	assert.Equal(t, 10, *f.reload(t).CapacityRemaining)
}

func TestParticipantCannotCancelStartedCourse(t *testing.T) {
	f := newFixture(t)
	started := addCourse(t, f.db, "CRS1005", time.Now().UTC().Add(-time.Hour), ptr(5))
	reg, err := Register(f.ctx, f.db, f.participant.ID, started.CourseID)
	require.NoError(t, err)

	_, err = Cancel(f.ctx, f.db, reg.ID, ParticipantActor(f.participant.ID), "")
	assert.EqualError(t, err, "Cannot cancel course after it has started")

	_, err = Cancel(f.ctx, f.db, reg.ID, AdminActor("admin-1"), "")
	assert.NoError(t, err)
}

func TestCannotCancelCompletedRegistration(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)
	_, err = MarkCompleted(f.ctx, f.db, reg.ID, AdminActor("admin-1"))
	require.NoError(t, err)

	_, err = Cancel(f.ctx, f.db, reg.ID, AdminActor("admin-1"), "")
	assert.True(t, apperrors.IsKind(err, apperrors.Conflict))
}

func TestReviewRequiresCompletion(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	_, err = SubmitReview(f.ctx, f.db, f.participant.ID, reg.ID, 5, "great")
	assert.EqualError(t, err, "You can only review after completing the course")

	_, err = SubmitReview(f.ctx, f.db, f.participant.ID, reg.ID, 6, "great")
	assert.EqualError(t, err, "Rating must be between 1 and 5")

	_, err = MarkCompleted(f.ctx, f.db, reg.ID, AdminActor("admin-1"))
	require.NoError(t, err)

	reviewed, err := SubmitReview(f.ctx, f.db, f.participant.ID, reg.ID, 4, " Solid ")
	require.NoError(t, err)
	require.NotNil(t, reviewed.Rating)
	assert.Equal(t, 4, *reviewed.Rating)
	assert.Equal(t, "Solid", reviewed.Review)
}

func TestCertificateLifecycle(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	_, err = Certificate(f.ctx, f.db, f.participant.ID, reg.ID)
	assert.EqualError(t, err, "Certificate not yet issued")

	_, err = IssueCertificate(f.ctx, f.db, reg.ID, "", "cert.pdf")
	assert.EqualError(t, err, "Certificate URL and name are required")

	_, err = IssueCertificate(f.ctx, f.db, reg.ID, "https://cdn.example.com/cert.pdf", "cert.pdf")
	require.NoError(t, err)

	cert, err := Certificate(f.ctx, f.db, f.participant.ID, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/cert.pdf", cert.URL)
	assert.Equal(t, "CERT-"+reg.RegistrationNumber, cert.CertificateNumber)
	assert.NotNil(t, cert.IssuedDate)

	_, err = Cancel(f.ctx, f.db, reg.ID, AdminActor("admin-1"), "")
	require.NoError(t, err)
	_, err = IssueCertificate(f.ctx, f.db, reg.ID, "https://cdn.example.com/cert.pdf", "cert.pdf")
	assert.True(t, apperrors.IsKind(err, apperrors.Conflict))
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	_, err = UpdateStatus(f.ctx, f.db, reg.ID, "admin-1", StatusUpdate{Status: "DONE"})
	assert.EqualError(t, err, "Invalid status")

	updated, err := UpdateStatus(f.ctx, f.db, reg.ID, "admin-1", StatusUpdate{Status: models.RegistrationConfirmed, Notes: "manual"})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationConfirmed, updated.RegistrationStatus)
	assert.Equal(t, "manual", updated.Notes)
	assert.Len(t, f.recorder.OfType(events.StatusChanged), 1)

	cancelled, err := UpdateStatus(f.ctx, f.db, reg.ID, "admin-1", StatusUpdate{Status: models.RegistrationCancelled})
	require.NoError(t, err)
	assert.Equal(t, "Cancelled by admin", cancelled.CancellationReason)
	assert.Equal(t, 10, *f.reload(t).CapacityRemaining)
}

func TestUpdateStatusOverrideNeedsForce(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)
	_, err = Cancel(f.ctx, f.db, reg.ID, AdminActor("admin-1"), "")
	require.NoError(t, err)

	_, err = UpdateStatus(f.ctx, f.db, reg.ID, "admin-1", StatusUpdate{Status: models.RegistrationConfirmed})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.Conflict))

	revived, err := UpdateStatus(f.ctx, f.db, reg.ID, "admin-1", StatusUpdate{Status: models.RegistrationConfirmed, Force: true})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationConfirmed, revived.RegistrationStatus)
	assert.Empty(t, revived.CancellationReason)

	course := f.reload(t)
	assert.Equal(t, 9, *course.CapacityRemaining)
	assert.Equal(t, 1, course.EnrollmentCount)

	overrides := f.recorder.OfType(events.StatusOverridden)
	require.Len(t, overrides, 1)
	assert.Equal(t, models.RegistrationCancelled, overrides[0].From)
	assert.Equal(t, models.RegistrationConfirmed, overrides[0].To)
}

func TestUpdateStatusPaidBackToPending(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)
	f.pay(t, reg)

	_, err = UpdateStatus(f.ctx, f.db, reg.ID, "admin-1", StatusUpdate{Status: models.RegistrationPending})
	assert.True(t, apperrors.IsKind(err, apperrors.Conflict))

	pending, err := UpdateStatus(f.ctx, f.db, reg.ID, "admin-1", StatusUpdate{Status: models.RegistrationPending, Force: true})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationPending, pending.RegistrationStatus)
	assert.Equal(t, models.PaymentPaid, pending.PaymentStatus)
	assert.Len(t, f.recorder.OfType(events.StatusOverridden), 1)
}

func TestCompleteEnded(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)
	f.pay(t, reg)

	n, err := CompleteEnded(f.ctx, f.db, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = CompleteEnded(f.ctx, f.db, f.course.EndDate.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var stored models.Registration
	require.NoError(t, f.db.First(&stored, "id = ?", reg.ID).Error)
	assert.Equal(t, models.RegistrationCompleted, stored.RegistrationStatus)
	assert.True(t, stored.CourseCompleted)
}

func TestListsAndStats(t *testing.T) {
	f := newFixture(t)
	other := addParticipant(t, f.db, "ben@example.com", "9000000002")
	second := addCourse(t, f.db, "CRS1002", time.Now().UTC().Add(48*time.Hour), ptr(5))
	require.NoError(t, f.db.Model(second).Update("service_type", models.ServiceBusiness).Error)

	first, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)
	f.pay(t, first)
	_, err = Register(f.ctx, f.db, other.ID, "CRS1001")
	require.NoError(t, err)
	_, err = Register(f.ctx, f.db, f.participant.ID, "CRS1002")
	require.NoError(t, err)

	mine, page, err := ListForParticipant(f.ctx, f.db, f.participant.ID, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.Equal(t, int64(2), page.Total)
	require.NotNil(t, mine[0].Course)

	confirmed, _, err := ListForParticipant(f.ctx, f.db, f.participant.ID, "confirmed", 1, 10)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)

	byCourse, _, err := List(f.ctx, f.db, Filter{CourseRef: "CRS1001"})
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)

	bySearch, _, err := List(f.ctx, f.db, Filter{Search: "BEN@"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, other.ID, bySearch[0].ParticipantID)
	require.NotNil(t, bySearch[0].Participant)

	paid, _, err := List(f.ctx, f.db, Filter{PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Len(t, paid, 1)

	payment, err := Payment(f.ctx, f.db, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, payment.PaymentStatus)
	assert.Equal(t, 900.0, payment.AmountPaid)

	stats, err := Stats(f.ctx, f.db)
	require.NoError(t, err)
	assert.Equal(t, CourseStats{Total: 2, Active: 2, Inactive: 0}, stats.Courses)
	assert.Equal(t, RegistrationStats{Total: 3, Confirmed: 1, Pending: 2}, stats.Registrations)
	assert.Equal(t, PaymentStats{Total: 1, TotalRevenue: 900}, stats.Payments)
	assert.Equal(t, int64(2), stats.Participants.Total)
	assert.Equal(t, []TypeCount{{Name: models.ServiceAgile, Value: 1}, {Name: models.ServiceBusiness, Value: 1}}, stats.CoursesByType)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	data, err := Export(f.ctx, f.db, Filter{To: ptr(EndOfDay(time.Now()))})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Registration ID", rows[0][0])
	assert.Len(t, rows[0], 16)
	assert.Equal(t, reg.RegistrationNumber, rows[1][0])
	assert.Equal(t, f.participant.Email, rows[1][2])
	assert.Equal(t, "CRS1001", rows[1][5])
	assert.Equal(t, "N/A", rows[1][12])

	empty, err := Export(f.ctx, f.db, Filter{Status: models.RegistrationCompleted})
	require.NoError(t, err)
	book2, err := excelize.OpenReader(bytes.NewReader(empty))
	require.NoError(t, err)
	defer book2.Close()
	rows, err = book2.GetRows(ExportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestEndOfDay(t *testing.T) {
	got := EndOfDay(time.Date(2031, 3, 1, 8, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2031, 3, 1, 23, 59, 59, 999999999, time.UTC), got)
}

func TestFinalAmountSurvivesCoursePriceChange(t *testing.T) {
	f := newFixture(t)
	reg, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	_, err = catalog.Update(f.ctx, f.db, "CRS1001", catalog.CoursePatch{
		Price:              ptr(2000.0),
		DiscountPercentage: ptr(25.0),
	})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, f.reload(t).FinalPrice)

	var stored models.Registration
	require.NoError(t, f.db.First(&stored, "id = ?", reg.ID).Error)
	assert.Equal(t, 1000.0, stored.OriginalPrice)
	assert.Equal(t, 10.0, stored.DiscountApplied)
	assert.Equal(t, 900.0, stored.FinalAmount)

	paid := f.pay(t, &stored)
	assert.Equal(t, 900.0, paid.FinalAmount)
}

func TestRegisterRetriesRegistrationNumberClash(t *testing.T) {
	f := newFixture(t)
	first, err := Register(f.ctx, f.db, f.participant.ID, "CRS1001")
	require.NoError(t, err)

	calls := 0
	previous := registrationNumber
	registrationNumber = func(at time.Time) string {
		calls++
		if calls == 1 {
			return first.RegistrationNumber
		}
		return previous(at)
	}
	t.Cleanup(func() { registrationNumber = previous })

	other := addParticipant(t, f.db, "ben@example.com", "9000000002")
	reg, err := Register(f.ctx, f.db, other.ID, "CRS1001")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NotEqual(t, first.RegistrationNumber, reg.RegistrationNumber)

	course := f.reload(t)
	assert.Equal(t, 2, course.EnrollmentCount)
	assert.Equal(t, 8, *course.CapacityRemaining)
}
