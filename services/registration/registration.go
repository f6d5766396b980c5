// Package registration runs the enrollment lifecycle: registering,
// paying, cancelling, completing, reviewing and certificates, together
// with the seat bookkeeping on courses and participants.
//
// Every operation that touches more than the registration row runs in a
// single transaction.
package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"coursehub/apperrors"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/services/catalog"
	"coursehub/services/events"
	"coursehub/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor roles.
const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
	RoleSystem      = "system"
)

const maxRegisterAttempts = 3

var registrationNumber = utils.GenerateRegistrationNumber

// Actor identifies who drives a transition.
type Actor struct {
	ID   string
	Role string
}

func AdminActor(id string) Actor       { return Actor{ID: id, Role: RoleAdmin} }
func ParticipantActor(id string) Actor { return Actor{ID: id, Role: RoleParticipant} }

func (a Actor) IsParticipant() bool { return a.Role == RoleParticipant }

type PaymentInput struct {
	PaymentMode string
	PaymentID   string
	AmountPaid  float64
	Currency    string
}

// StatusUpdate is an admin override of the registration status.
type StatusUpdate struct {
	Status string
	Notes  string
	// Force allows leaving a terminal state or moving a paid registration
	// back to PENDING.
	Force bool
}

var now = func() time.Time { return time.Now().UTC() }

// Register enrolls a participant. The course may be given by internal id
// or by courseId. The price is snapshotted from the course. A clash on the
// registration number rolls back and retries with a fresh one.
func Register(ctx context.Context, db *gorm.DB, participantID, courseRef string) (*models.Registration, error) {
	var (
		reg *models.Registration
		err error
	)
	for attempt := 1; ; attempt++ {
		reg, err = register(ctx, db, participantID, courseRef)
		if err == nil || !database.IsDuplicateKey(err) || attempt >= maxRegisterAttempts {
			break
		}
		logger.Warn("registration number collision, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	logger.Info("registration created",
		zap.String("registrationId", reg.ID),
		zap.String("registrationNumber", reg.RegistrationNumber),
		zap.String("participantId", participantID),
		zap.String("courseId", reg.CourseID))
	emit(ctx, events.RegistrationCreated, reg, ParticipantActor(participantID), "", reg.RegistrationStatus)
	return reg, nil
}

func register(ctx context.Context, db *gorm.DB, participantID, courseRef string) (*models.Registration, error) {
	var reg *models.Registration
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := catalog.FindCourse(ctx, tx, courseRef)
		if err != nil {
			return err
		}
		if !course.IsActive {
			return apperrors.NewInvalidError("Course is not available")
		}
		if !now().Before(course.EndDate) {
			return apperrors.NewInvalidError("Course has already ended")
		}

		var participant models.Participant
		if err := tx.Select("id").First(&participant, "id = ?", participantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError("Participant not found")
			}
			return err
		}

		if err := ensureNoActiveRegistration(tx, participantID, course.ID); err != nil {
			return err
		}
		if err := claimSeat(tx, course.ID); err != nil {
			return err
		}

		reg = &models.Registration{
			ParticipantID:      participantID,
			CourseID:           course.ID,
			RegistrationNumber: registrationNumber(now()),
			PaymentStatus:      models.PaymentPending,
			Currency:           models.DefaultCurrency,
			OriginalPrice:      course.Price,
			DiscountApplied:    course.DiscountPercentage,
			DiscountType:       models.DiscountPercentage,
			FinalAmount:        course.FinalPrice,
			RegistrationStatus: models.RegistrationPending,
		}
		if err := tx.Create(reg).Error; err != nil {
			return err
		}
		return appendParticipantCourse(tx, reg)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ProcessPayment records a payment for the participant's registration and
// confirms it. A second payment is rejected.
func ProcessPayment(ctx context.Context, db *gorm.DB, participantID, registrationID string, in PaymentInput) (*models.Registration, error) {
	if strings.TrimSpace(in.PaymentID) == "" || in.PaymentMode == "" || in.AmountPaid <= 0 {
		return nil, apperrors.NewInvalidError("Payment details are required")
	}
	if !models.IsValidPaymentMode(in.PaymentMode) {
		return nil, apperrors.NewInvalidError("Invalid payment mode")
	}

	db = db.WithContext(ctx)
	reg, err := load(db, registrationID, ParticipantActor(participantID))
	if err != nil {
		return nil, err
	}
	if reg.PaymentStatus == models.PaymentPaid {
		return nil, apperrors.NewConflictError("Payment already processed")
	}
	if reg.RegistrationStatus == models.RegistrationCancelled {
		return nil, apperrors.NewConflictError("Cannot pay for a cancelled registration")
	}
	if in.AmountPaid < reg.FinalAmount {
		return nil, apperrors.NewInvalidError("Insufficient payment amount")
	}

	status := models.RegistrationConfirmed
	if reg.RegistrationStatus == models.RegistrationCompleted {
		status = models.RegistrationCompleted
	}
	paidAt := now()
	updates := map[string]interface{}{
		"payment_mode":        in.PaymentMode,
		"payment_id":          strings.TrimSpace(in.PaymentID),
		"amount_paid":         in.AmountPaid,
		"payment_status":      models.PaymentPaid,
		"registration_status": status,
		"transaction_date":    paidAt,
	}
	if in.Currency != "" {
		updates["currency"] = strings.ToUpper(in.Currency)
	}

	// The status guard makes concurrent double payments lose.
	res := db.Model(&models.Registration{}).
		Where("id = ? AND payment_status <> ?", reg.ID, models.PaymentPaid).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewConflictError("Payment already processed")
	}

	previous := reg.RegistrationStatus
	if err := db.First(reg, "id = ?", reg.ID).Error; err != nil {
		return nil, err
	}
	logger.Info("payment processed",
		zap.String("registrationId", reg.ID),
		zap.String("registrationNumber", reg.RegistrationNumber),
		zap.Float64("amountPaid", in.AmountPaid),
		zap.String("paymentMode", in.PaymentMode))
	emit(ctx, events.RegistrationPaid, reg, ParticipantActor(participantID), previous, reg.RegistrationStatus)
	return reg, nil
}

// Cancel cancels a registration, refunds a paid one and gives the seat
// back. Participants can only cancel their own registrations and only
// before the course starts.
func Cancel(ctx context.Context, db *gorm.DB, registrationID string, actor Actor, reason string) (*models.Registration, error) {
	var (
		reg      *models.Registration
		previous string
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reg, err = load(tx, registrationID, actor)
		if err != nil {
			return err
		}
		previous = reg.RegistrationStatus
		if reg.RegistrationStatus == models.RegistrationCancelled {
			return apperrors.NewConflictError("Registration is already cancelled")
		}
		if reg.RegistrationStatus == models.RegistrationCompleted {
			return apperrors.NewConflictError("Cannot cancel a completed registration")
		}
		return cancelInTx(tx, reg, actor, reason)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("registration cancelled",
		zap.String("registrationId", reg.ID),
		zap.String("registrationNumber", reg.RegistrationNumber),
		zap.String("actor", actor.Role),
		zap.String("paymentStatus", reg.PaymentStatus))
	emit(ctx, events.RegistrationCancelled, reg, actor, previous, reg.RegistrationStatus)
	return reg, nil
}

// MarkCompleted closes a registration as completed, which unlocks reviews.
func MarkCompleted(ctx context.Context, db *gorm.DB, registrationID string, actor Actor) (*models.Registration, error) {
	db = db.WithContext(ctx)
	reg, err := load(db, registrationID, actor)
	if err != nil {
		return nil, err
	}
	if reg.RegistrationStatus == models.RegistrationCancelled {
		return nil, apperrors.NewConflictError("Cannot complete a cancelled registration")
	}
	if reg.RegistrationStatus == models.RegistrationCompleted && reg.CourseCompleted {
		return reg, nil
	}

	previous := reg.RegistrationStatus
	if err := completeRow(db, reg); err != nil {
		return nil, err
	}
	emit(ctx, events.RegistrationCompleted, reg, actor, previous, reg.RegistrationStatus)
	return reg, nil
}

// CompleteEnded completes every confirmed registration whose course has
// ended before at. It returns the number of registrations completed.
func CompleteEnded(ctx context.Context, db *gorm.DB, at time.Time) (int64, error) {
	db = db.WithContext(ctx)
	ended := db.Model(&models.Course{}).Select("id").Where("end_date < ?", at.UTC())
	res := db.Model(&models.Registration{}).
		Where("registration_status = ? AND course_id IN (?)", models.RegistrationConfirmed, ended).
		Updates(map[string]interface{}{
			"registration_status": models.RegistrationCompleted,
			"course_completed":    true,
			"completion_date":     at.UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		events.Emit(ctx, events.Event{
			Type:       events.RegistrationCompleted,
			Actor:      RoleSystem,
			To:         models.RegistrationCompleted,
			Attributes: map[string]string{"bulk": "true"},
		})
	}
	return res.RowsAffected, nil
}

// SubmitReview stores a rating and review on a completed registration.
func SubmitReview(ctx context.Context, db *gorm.DB, participantID, registrationID string, rating int, review string) (*models.Registration, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewInvalidError("Rating must be between 1 and 5")
	}
	db = db.WithContext(ctx)
	reg, err := load(db, registrationID, ParticipantActor(participantID))
	if err != nil {
		return nil, err
	}
	if !reg.CourseCompleted {
		return nil, apperrors.NewInvalidError("You can only review after completing the course")
	}

	review = strings.TrimSpace(review)
	if err := db.Model(reg).Updates(map[string]interface{}{"rating": rating, "review": review}).Error; err != nil {
		return nil, err
	}
	reg.Rating = &rating
	reg.Review = review
	emit(ctx, events.RegistrationReviewed, reg, ParticipantActor(participantID), "", "")
	return reg, nil
}

// IssueCertificate attaches a certificate. Completion is not required, but
// cancelled registrations never get one.
func IssueCertificate(ctx context.Context, db *gorm.DB, registrationID, url, name string) (*models.Registration, error) {
	url, name = strings.TrimSpace(url), strings.TrimSpace(name)
	if url == "" || name == "" {
		return nil, apperrors.NewInvalidError("Certificate URL and name are required")
	}
	db = db.WithContext(ctx)
	reg, err := load(db, registrationID, Actor{Role: RoleAdmin})
	if err != nil {
		return nil, err
	}
	if reg.RegistrationStatus == models.RegistrationCancelled {
		return nil, apperrors.NewConflictError("Cannot issue a certificate for a cancelled registration")
	}

	issued := now()
	reg.CertificateIssued = true
	reg.Certificate = models.Certificate{
		URL:               url,
		FileName:          name,
		CertificateNumber: "CERT-" + reg.RegistrationNumber,
		IssuedDate:        &issued,
	}
	err = db.Model(&models.Registration{}).Where("id = ?", reg.ID).Updates(map[string]interface{}{
		"certificate_issued":             true,
		"certificate_url":                url,
		"certificate_file_name":          name,
		"certificate_certificate_number": reg.Certificate.CertificateNumber,
		"certificate_issued_date":        issued,
	}).Error
	if err != nil {
		return nil, err
	}
	emit(ctx, events.CertificateIssued, reg, Actor{Role: RoleAdmin}, "", "")
	return reg, nil
}

// Certificate returns the participant's issued certificate.
func Certificate(ctx context.Context, db *gorm.DB, participantID, registrationID string) (*models.Certificate, error) {
	reg, err := load(db.WithContext(ctx), registrationID, ParticipantActor(participantID))
	if err != nil {
		return nil, err
	}
	if !reg.CertificateIssued {
		return nil, apperrors.NewInvalidError("Certificate not yet issued")
	}
	return &reg.Certificate, nil
}

// UpdateStatus is the admin override. CANCELLED and COMPLETED go through
// the regular cancel and complete paths. Leaving a terminal state, or
// un-confirming a paid registration, needs Force and is audited.
func UpdateStatus(ctx context.Context, db *gorm.DB, registrationID, adminID string, in StatusUpdate) (*models.Registration, error) {
	if !models.IsValidRegistrationStatus(in.Status) {
		return nil, apperrors.NewInvalidError("Invalid status")
	}
	actor := AdminActor(adminID)

	var (
		reg      *models.Registration
		previous string
		override bool
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reg, err = load(tx, registrationID, actor)
		if err != nil {
			return err
		}
		previous = reg.RegistrationStatus

		if in.Notes != "" {
			reg.Notes = strings.TrimSpace(in.Notes)
			if err := tx.Model(reg).Update("notes", reg.Notes).Error; err != nil {
				return err
			}
		}
		if in.Status == previous {
			return nil
		}

		if reg.IsTerminal() {
			if !in.Force {
				return apperrors.NewConflictError("Registration is already " + strings.ToLower(previous) + "; set force to override")
			}
			override = true
		}
		if in.Status == models.RegistrationPending && reg.PaymentStatus == models.PaymentPaid {
			if !in.Force {
				return apperrors.NewConflictError("Registration is paid; set force to move it back to PENDING")
			}
			override = true
		}

		switch in.Status {
		case models.RegistrationCancelled:
			reason := in.Notes
			if reason == "" {
				reason = "Cancelled by admin"
			}
			return cancelInTx(tx, reg, actor, reason)
		case models.RegistrationCompleted:
			if previous == models.RegistrationCancelled {
				if err := revive(tx, reg); err != nil {
					return err
				}
			}
			return completeRow(tx, reg)
		default:
			return reopen(tx, reg, in.Status)
		}
	})
	if err != nil {
		return nil, err
	}

	if override {
		logger.Warn("registration status override",
			zap.Bool("override", true),
			zap.String("registrationId", reg.ID),
			zap.String("adminId", adminID),
			zap.String("from", previous),
			zap.String("to", reg.RegistrationStatus),
			zap.String("paymentStatus", reg.PaymentStatus))
		emit(ctx, events.StatusOverridden, reg, actor, previous, reg.RegistrationStatus)
	} else if previous != reg.RegistrationStatus {
		logger.Info("registration status updated",
			zap.String("registrationId", reg.ID),
			zap.String("from", previous),
			zap.String("to", reg.RegistrationStatus))
		emit(ctx, events.StatusChanged, reg, actor, previous, reg.RegistrationStatus)
	}
	return reg, nil
}

// cancelInTx applies the cancellation to reg inside tx.
func cancelInTx(tx *gorm.DB, reg *models.Registration, actor Actor, reason string) error {
	if actor.IsParticipant() {
		var course models.Course
		err := tx.Select("id", "start_date").First(&course, "id = ?", reg.CourseID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && now().After(course.StartDate) {
			return apperrors.NewInvalidError("Cannot cancel course after it has started")
		}
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		if actor.IsParticipant() {
			reason = "Cancelled by participant"
		} else {
			reason = "Cancelled by admin"
		}
	}

	cancelledAt := now()
	payment := reg.PaymentStatus
	if payment == models.PaymentPaid {
		payment = models.PaymentRefunded
	}
	res := tx.Model(&models.Registration{}).
		Where("id = ? AND registration_status <> ?", reg.ID, models.RegistrationCancelled).
		Updates(map[string]interface{}{
			"registration_status": models.RegistrationCancelled,
			"payment_status":      payment,
			"cancellation_reason": reason,
			"cancellation_date":   cancelledAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NewConflictError("Registration is already cancelled")
	}

	reg.RegistrationStatus = models.RegistrationCancelled
	reg.PaymentStatus = payment
	reg.CancellationReason = reason
	reg.CancellationDate = &cancelledAt
	return releaseSeat(tx, reg)
}

func completeRow(db *gorm.DB, reg *models.Registration) error {
	completedAt := now()
	err := db.Model(&models.Registration{}).Where("id = ?", reg.ID).Updates(map[string]interface{}{
		"registration_status": models.RegistrationCompleted,
		"course_completed":    true,
		"completion_date":     completedAt,
	}).Error
	if err != nil {
		return err
	}
	reg.RegistrationStatus = models.RegistrationCompleted
	reg.CourseCompleted = true
	reg.CompletionDate = &completedAt
	return nil
}

// revive takes a seat again for a cancelled registration and clears the
// cancellation fields.
func revive(tx *gorm.DB, reg *models.Registration) error {
	if err := ensureNoActiveRegistration(tx, reg.ParticipantID, reg.CourseID); err != nil {
		return err
	}
	if err := claimSeat(tx, reg.CourseID); err != nil {
		return err
	}
	if err := appendParticipantCourse(tx, reg); err != nil {
		return err
	}
	err := tx.Model(&models.Registration{}).Where("id = ?", reg.ID).Updates(map[string]interface{}{
		"cancellation_reason": "",
		"cancellation_date":   nil,
	}).Error
	if err != nil {
		return err
	}
	reg.CancellationReason = ""
	reg.CancellationDate = nil
	return nil
}

// reopen moves reg to PENDING or CONFIRMED.
func reopen(tx *gorm.DB, reg *models.Registration, status string) error {
	updates := map[string]interface{}{"registration_status": status}
	if reg.RegistrationStatus == models.RegistrationCancelled {
		if err := revive(tx, reg); err != nil {
			return err
		}
	}
	if reg.RegistrationStatus == models.RegistrationCompleted {
		updates["course_completed"] = false
		updates["completion_date"] = nil
		reg.CourseCompleted = false
		reg.CompletionDate = nil
	}
	if err := tx.Model(&models.Registration{}).Where("id = ?", reg.ID).Updates(updates).Error; err != nil {
		return err
	}
	reg.RegistrationStatus = status
	return nil
}

func ensureNoActiveRegistration(tx *gorm.DB, participantID, courseID string) error {
	var count int64
	err := tx.Model(&models.Registration{}).
		Where("participant_id = ? AND course_id = ? AND registration_status <> ?",
			participantID, courseID, models.RegistrationCancelled).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflictError("You are already registered for this course")
	}
	return nil
}

// claimSeat bumps the enrollment count and takes one unit of capacity in a
// single conditional update. Untracked capacity (NULL) never runs out.
func claimSeat(tx *gorm.DB, courseID string) error {
	res := tx.Model(&models.Course{}).
		Where("id = ? AND (capacity_remaining IS NULL OR capacity_remaining > 0)", courseID).
		Updates(map[string]interface{}{
			"enrollment_count":   gorm.Expr("enrollment_count + 1"),
			"capacity_remaining": gorm.Expr("capacity_remaining - 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NewConflictError("Course is full")
	}
	return nil
}

// releaseSeat undoes claimSeat and drops the participant's course entry.
// A deleted course is skipped.
func releaseSeat(tx *gorm.DB, reg *models.Registration) error {
	if err := tx.Where("registration_id = ?", reg.ID).Delete(&models.ParticipantCourse{}).Error; err != nil {
		return err
	}
	return tx.Model(&models.Course{}).
		Where("id = ?", reg.CourseID).
		Updates(map[string]interface{}{
			"enrollment_count":   gorm.Expr("CASE WHEN enrollment_count > 0 THEN enrollment_count - 1 ELSE 0 END"),
			"capacity_remaining": gorm.Expr("capacity_remaining + 1"),
		}).Error
}

func appendParticipantCourse(tx *gorm.DB, reg *models.Registration) error {
	return tx.Create(&models.ParticipantCourse{
		ParticipantID:    reg.ParticipantID,
		CourseID:         reg.CourseID,
		RegistrationID:   reg.ID,
		RegistrationDate: now(),
	}).Error
}

// load fetches a registration. Participants only see their own.
func load(db *gorm.DB, registrationID string, actor Actor) (*models.Registration, error) {
	if !models.IsInternalID(registrationID) {
		return nil, apperrors.NewInvalidError("Invalid registration ID")
	}
	q := db.Where("id = ?", registrationID)
	if actor.IsParticipant() {
		q = q.Where("participant_id = ?", actor.ID)
	}
	var reg models.Registration
	if err := q.First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Registration not found")
		}
		return nil, err
	}
	return &reg, nil
}

func emit(ctx context.Context, typ string, reg *models.Registration, actor Actor, from, to string) {
	events.Emit(ctx, events.Event{
		Type:           typ,
		RegistrationID: reg.ID,
		CourseID:       reg.CourseID,
		ParticipantID:  reg.ParticipantID,
		Actor:          actor.Role + ":" + actor.ID,
		From:           from,
		To:             to,
	})
}
