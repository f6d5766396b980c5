package registration

import (
	"context"
	"strings"
	"time"

	"coursehub/models"
	"coursehub/services/catalog"
	"coursehub/utils"

	"gorm.io/gorm"
)

// Filter narrows the admin registration list and the export.
type Filter struct {
	CourseRef     string
	Status        string
	PaymentStatus string
	Search        string
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

type PaymentDetails struct {
	RegistrationNumber string     `json:"registrationNumber"`
	OriginalPrice      float64    `json:"originalPrice"`
	DiscountApplied    float64    `json:"discountApplied"`
	DiscountType       string     `json:"discountType"`
	FinalAmount        float64    `json:"finalAmount"`
	AmountPaid         float64    `json:"amountPaid"`
	PaymentMode        string     `json:"paymentMode"`
	PaymentStatus      string     `json:"paymentStatus"`
	PaymentID          string     `json:"paymentId"`
	TransactionDate    *time.Time `json:"transactionDate"`
	Currency           string     `json:"currency"`
}

type CourseStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type RegistrationStats struct {
	Total     int64 `json:"total"`
	Confirmed int64 `json:"confirmed"`
	Pending   int64 `json:"pending"`
}

type PaymentStats struct {
	Total        int64   `json:"total"`
	TotalRevenue float64 `json:"totalRevenue"`
}

type ParticipantStats struct {
	Total int64 `json:"total"`
}

type TypeCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// DashboardStats feeds the admin dashboard.
type DashboardStats struct {
	Courses       CourseStats       `json:"courses"`
	Registrations RegistrationStats `json:"registrations"`
	Payments      PaymentStats      `json:"payments"`
	Participants  ParticipantStats  `json:"participants"`
	CoursesByType []TypeCount       `json:"coursesByType"`
}

// ListForParticipant returns the participant's registrations, newest first.
func ListForParticipant(ctx context.Context, db *gorm.DB, participantID, status string, page, limit int) ([]models.Registration, utils.Pagination, error) {
	page, limit, offset := utils.Paginate(page, limit)

	q := db.WithContext(ctx).Model(&models.Registration{}).Where("participant_id = ?", participantID)
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
		q = q.Where("registration_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, err
	}
	regs := []models.Registration{}
	err := q.Preload("Course").Order("created_at DESC").Offset(offset).Limit(limit).Find(&regs).Error
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	return regs, utils.NewPagination(page, limit, total), nil
}

// GetForParticipant loads one of the participant's registrations with its
// course.
func GetForParticipant(ctx context.Context, db *gorm.DB, participantID, registrationID string) (*models.Registration, error) {
	reg, err := load(db.WithContext(ctx), registrationID, ParticipantActor(participantID))
	if err != nil {
		return nil, err
	}
	return withRelations(ctx, db, reg)
}

// Get loads any registration with its course and participant.
func Get(ctx context.Context, db *gorm.DB, registrationID string) (*models.Registration, error) {
	reg, err := load(db.WithContext(ctx), registrationID, Actor{Role: RoleAdmin})
	if err != nil {
		return nil, err
	}
	return withRelations(ctx, db, reg)
}

// List returns registrations matching f, newest first.
func List(ctx context.Context, db *gorm.DB, f Filter) ([]models.Registration, utils.Pagination, error) {
	page, limit, offset := utils.Paginate(f.Page, f.Limit)

	q, err := filtered(ctx, db, f)
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, err
	}
	regs := []models.Registration{}
	err = q.Preload("Course").Preload("Participant").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&regs).Error
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	return regs, utils.NewPagination(page, limit, total), nil
}

// Payment returns the payment view of a registration.
func Payment(ctx context.Context, db *gorm.DB, registrationID string) (*PaymentDetails, error) {
	reg, err := load(db.WithContext(ctx), registrationID, Actor{Role: RoleAdmin})
	if err != nil {
		return nil, err
	}
	return &PaymentDetails{
		RegistrationNumber: reg.RegistrationNumber,
		OriginalPrice:      reg.OriginalPrice,
		DiscountApplied:    reg.DiscountApplied,
		DiscountType:       reg.DiscountType,
		FinalAmount:        reg.FinalAmount,
		AmountPaid:         reg.AmountPaid,
		PaymentMode:        reg.PaymentMode,
		PaymentStatus:      reg.PaymentStatus,
		PaymentID:          reg.PaymentID,
		TransactionDate:    reg.TransactionDate,
		Currency:           reg.Currency,
	}, nil
}

// Stats aggregates the dashboard counters. Revenue sums finalAmount of
// paid registrations.
func Stats(ctx context.Context, db *gorm.DB) (*DashboardStats, error) {
	db = db.WithContext(ctx)
	stats := &DashboardStats{CoursesByType: []TypeCount{}}

	counts := []struct {
		dst   *int64
		model interface{}
		where []interface{}
	}{
		{&stats.Courses.Total, &models.Course{}, nil},
		{&stats.Courses.Active, &models.Course{}, []interface{}{"is_active = ?", true}},
		{&stats.Registrations.Total, &models.Registration{}, nil},
		{&stats.Registrations.Confirmed, &models.Registration{}, []interface{}{"registration_status = ?", models.RegistrationConfirmed}},
		{&stats.Payments.Total, &models.Registration{}, []interface{}{"payment_status = ?", models.PaymentPaid}},
		{&stats.Participants.Total, &models.Participant{}, nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	stats.Courses.Inactive = stats.Courses.Total - stats.Courses.Active
	stats.Registrations.Pending = stats.Registrations.Total - stats.Registrations.Confirmed

	if err := db.Model(&models.Registration{}).
		Select("COALESCE(SUM(final_amount), 0)").
		Where("payment_status = ?", models.PaymentPaid).
		Row().Scan(&stats.Payments.TotalRevenue); err != nil {
		return nil, err
	}

	if err := db.Model(&models.Course{}).
		Select("service_type AS name, COUNT(*) AS value").
		Group("service_type").
		Order("value DESC").Order("name ASC").
		Scan(&stats.CoursesByType).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// filtered builds the shared admin list and export query.
func filtered(ctx context.Context, db *gorm.DB, f Filter) (*gorm.DB, error) {
	db = db.WithContext(ctx)
	q := db.Model(&models.Registration{})

	if ref := strings.TrimSpace(f.CourseRef); ref != "" {
		courseID := ref
		if course, err := catalog.FindCourse(ctx, db, ref); err == nil {
			courseID = course.ID
		}
		q = q.Where("course_id = ?", courseID)
	}
	if s := strings.ToUpper(strings.TrimSpace(f.Status)); s != "" {
		q = q.Where("registration_status = ?", s)
	}
	if s := strings.ToUpper(strings.TrimSpace(f.PaymentStatus)); s != "" {
		q = q.Where("payment_status = ?", s)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", f.To.UTC())
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := utils.LikeContains(s)
		participants := db.Model(&models.Participant{}).Select("id").
			Where("LOWER(name) LIKE ? "+utils.LikeEscape+" OR LOWER(email) LIKE ? "+utils.LikeEscape, like, like)
		courses := db.Model(&models.Course{}).Select("id").
			Where("LOWER(course_name) LIKE ? "+utils.LikeEscape, like)
		q = q.Where("participant_id IN (?) OR course_id IN (?)", participants, courses)
	}
	return q, nil
}

func withRelations(ctx context.Context, db *gorm.DB, reg *models.Registration) (*models.Registration, error) {
	var full models.Registration
	err := db.WithContext(ctx).Preload("Course").Preload("Participant").First(&full, "id = ?", reg.ID).Error
	if err != nil {
		return nil, err
	}
	return &full, nil
}
