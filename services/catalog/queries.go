package catalog

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"coursehub/apperrors"
	"coursehub/models"
	"coursehub/utils"

	"gorm.io/gorm"
)

// AllTypes is the catch-all value the course filter UI sends.
const AllTypes = "All Types"

type ListFilter struct {
	Search      string
	Mentor      string
	ServiceType string
	IsActive    *bool
	Page        int
	Limit       int
}

// CourseDetails is a course plus its public registration figures.
type CourseDetails struct {
	models.Course
	RegistrationCount int64   `json:"registrationCount"`
	AvgRating         float64 `json:"avgRating"`
}

type Review struct {
	RegistrationID  string    `json:"id"`
	Rating          int       `json:"rating"`
	Review          string    `json:"review"`
	ParticipantName string    `json:"participantName"`
	CreatedAt       time.Time `json:"createdAt"`
}

// List returns courses ordered by start date ascending. Search matches
// name or mentor case-insensitively.
func List(ctx context.Context, db *gorm.DB, f ListFilter) ([]models.Course, utils.Pagination, error) {
	page, limit, offset := utils.Paginate(f.Page, f.Limit)

	q := db.WithContext(ctx).Model(&models.Course{})
	if s := strings.TrimSpace(f.Search); s != "" {
		like := utils.LikeContains(s)
		q = q.Where("LOWER(course_name) LIKE ? "+utils.LikeEscape+" OR LOWER(mentor) LIKE ? "+utils.LikeEscape, like, like)
	}
	if m := strings.TrimSpace(f.Mentor); m != "" {
		q = q.Where("LOWER(mentor) LIKE ? "+utils.LikeEscape, utils.LikeContains(m))
	}
	if st := strings.TrimSpace(f.ServiceType); st != "" && st != AllTypes {
		q = q.Where("service_type = ?", st)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, err
	}

	courses := []models.Course{}
	if err := q.Order("start_date ASC").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return nil, utils.Pagination{}, err
	}
	return courses, utils.NewPagination(page, limit, total), nil
}

// Search looks for active courses whose name, description or mentor
// contains q.
func Search(ctx context.Context, db *gorm.DB, q string, page, limit int) ([]models.Course, utils.Pagination, error) {
	q = strings.TrimSpace(q)
	if len(q) < 2 {
		return nil, utils.Pagination{}, apperrors.NewInvalidError("Search query must be at least 2 characters")
	}
	page, limit, offset := utils.Paginate(page, limit)
	like := utils.LikeContains(q)

	query := db.WithContext(ctx).Model(&models.Course{}).
		Where("is_active = ?", true).
		Where("LOWER(course_name) LIKE ? "+utils.LikeEscape+" OR LOWER(description) LIKE ? "+utils.LikeEscape+
			" OR LOWER(mentor) LIKE ? "+utils.LikeEscape, like, like, like)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, err
	}
	courses := []models.Course{}
	if err := query.Order("start_date ASC").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return nil, utils.Pagination{}, err
	}
	return courses, utils.NewPagination(page, limit, total), nil
}

// ListByType lists active courses of one service type.
func ListByType(ctx context.Context, db *gorm.DB, serviceType string, page, limit int) ([]models.Course, utils.Pagination, error) {
	if !models.IsValidServiceType(serviceType) {
		return nil, utils.Pagination{}, apperrors.NewInvalidError("Invalid service type")
	}
	active := true
	return List(ctx, db, ListFilter{ServiceType: serviceType, IsActive: &active, Page: page, Limit: limit})
}

// Details returns an active course with its confirmed registration count
// and average rating.
func Details(ctx context.Context, db *gorm.DB, ref string) (*CourseDetails, error) {
	course, err := FindCourse(ctx, db, ref)
	if err != nil {
		return nil, err
	}
	if !course.IsActive {
		return nil, apperrors.NewNotFoundError("Course not found")
	}
	db = db.WithContext(ctx)

	details := &CourseDetails{Course: *course}
	if err := db.Model(&models.Registration{}).
		Where("course_id = ? AND registration_status = ?", course.ID, models.RegistrationConfirmed).
		Count(&details.RegistrationCount).Error; err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	if err := db.Model(&models.Registration{}).
		Select("AVG(rating)").
		Where("course_id = ? AND rating IS NOT NULL", course.ID).
		Row().Scan(&avg); err != nil {
		return nil, err
	}
	if avg.Valid {
		details.AvgRating = math.Round(avg.Float64*10) / 10
	}
	return details, nil
}

// Reviews lists rated and reviewed registrations of a course, newest first.
func Reviews(ctx context.Context, db *gorm.DB, ref string, page, limit int) ([]Review, utils.Pagination, error) {
	course, err := FindCourse(ctx, db, ref)
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	page, limit, offset := utils.Paginate(page, limit)
	db = db.WithContext(ctx)

	base := db.Table("registrations AS r").
		Where("r.course_id = ? AND r.rating IS NOT NULL AND r.review <> ''", course.ID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, err
	}

	reviews := []Review{}
	err = base.
		Select("r.id AS registration_id, r.rating, r.review, r.created_at, p.name AS participant_name").
		Joins("LEFT JOIN participants AS p ON p.id = r.participant_id").
		Order("r.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&reviews).Error
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	return reviews, utils.NewPagination(page, limit, total), nil
}
