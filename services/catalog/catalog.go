// Package catalog owns course records: creation, updates, lifecycle flags,
// lookups and the public listing queries.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"coursehub/apperrors"
	"coursehub/database"
	"coursehub/models"
	"coursehub/utils"

	"gorm.io/gorm"
)

const maxCreateAttempts = 3

// CourseInput carries a new course. Price is a pointer so that a missing
// price can be told apart from a free course.
type CourseInput struct {
	CourseName         string
	Description        string
	Mentor             string
	ServiceType        string
	StartDate          *time.Time
	EndDate            *time.Time
	Price              *float64
	DiscountPercentage float64
	CourseImage        string
	Brochure           models.Brochure
	DifficultyLevel    string
	Duration           string
	MaxParticipants    *int
	Language           string
	StartTime          string
	EndTime            string
	BatchType          string
	CourseType         string
	Address            string
	CountryPricing     []models.CountryPrice
	IsActive           *bool
	CreatedBy          string
}

// CoursePatch holds the fields an update touches. Nil means untouched.
type CoursePatch struct {
	CourseName         *string
	Description        *string
	Mentor             *string
	ServiceType        *string
	StartDate          *time.Time
	EndDate            *time.Time
	Price              *float64
	DiscountPercentage *float64
	CourseImage        *string
	Brochure           *models.Brochure
	DifficultyLevel    *string
	Duration           *string
	MaxParticipants    *int
	Language           *string
	StartTime          *string
	EndTime            *string
	BatchType          *string
	CourseType         *string
	Address            *string
	CountryPricing     *[]models.CountryPrice
	IsActive           *bool
}

// Create validates in, assigns the next free courseId and stores the course.
func Create(ctx context.Context, db *gorm.DB, in CourseInput) (*models.Course, error) {
	in.CourseName = strings.TrimSpace(in.CourseName)
	in.Mentor = strings.TrimSpace(in.Mentor)

	if in.CourseName == "" || in.Mentor == "" || in.ServiceType == "" ||
		in.StartDate == nil || in.EndDate == nil || in.Price == nil {
		return nil, apperrors.NewInvalidError("Please provide all required fields")
	}
	if !in.StartDate.Before(*in.EndDate) {
		return nil, apperrors.NewInvalidError("Start date must be before end date")
	}

	course := &models.Course{
		CourseName:         in.CourseName,
		Description:        strings.TrimSpace(in.Description),
		Mentor:             in.Mentor,
		ServiceType:        in.ServiceType,
		StartDate:          in.StartDate.UTC(),
		EndDate:            in.EndDate.UTC(),
		Price:              *in.Price,
		DiscountPercentage: in.DiscountPercentage,
		CourseImage:        in.CourseImage,
		Brochure:           in.Brochure,
		IsActive:           in.IsActive == nil || *in.IsActive,
		CreatedBy:          in.CreatedBy,
		DifficultyLevel:    orDefault(in.DifficultyLevel, models.DifficultyIntermediate),
		Duration:           in.Duration,
		MaxParticipants:    in.MaxParticipants,
		Language:           orDefault(in.Language, models.DefaultLanguage),
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		BatchType:          orDefault(in.BatchType, models.DefaultBatchType),
		CourseType:         orDefault(in.CourseType, models.DefaultCourseType),
		Address:            in.Address,
		CountryPricing:     PriceCountries(in.CountryPricing),
	}
	if in.MaxParticipants != nil {
		capacity := *in.MaxParticipants
		course.CapacityRemaining = &capacity
	}
	course.FinalPrice = utils.CalculateFinalPrice(course.Price, course.DiscountPercentage)

	if err := validateCourse(course); err != nil {
		return nil, err
	}

	db = db.WithContext(ctx)
	for attempt := 1; ; attempt++ {
		courseID, err := NextCourseID(db)
		if err != nil {
			return nil, err
		}
		course.CourseID = courseID
		course.ID = ""

		err = db.Create(course).Error
		if err == nil {
			return course, nil
		}
		// Lost a race for the same courseId; pick the next one.
		if database.IsDuplicateKey(err) && attempt < maxCreateAttempts {
			continue
		}
		return nil, err
	}
}

// FindCourse resolves ref as an internal id when it parses as one, and
// otherwise (or when nothing matches) as a business courseId.
func FindCourse(ctx context.Context, db *gorm.DB, ref string) (*models.Course, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.NewInvalidError("Course ID is required")
	}
	db = db.WithContext(ctx)

	var course models.Course
	if models.IsInternalID(ref) {
		err := db.Where("id = ?", ref).First(&course).Error
		if err == nil {
			return &course, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err := db.Where("course_id = ?", ref).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("Course not found")
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Update applies patch, re-checking dates against the merged values and
// re-deriving prices whose inputs were touched.
func Update(ctx context.Context, db *gorm.DB, ref string, patch CoursePatch) (*models.Course, error) {
	course, err := FindCourse(ctx, db, ref)
	if err != nil {
		return nil, err
	}

	setString(&course.CourseName, patch.CourseName)
	setString(&course.Description, patch.Description)
	setString(&course.Mentor, patch.Mentor)
	setString(&course.ServiceType, patch.ServiceType)
	setString(&course.CourseImage, patch.CourseImage)
	setString(&course.DifficultyLevel, patch.DifficultyLevel)
	setString(&course.Duration, patch.Duration)
	setString(&course.Language, patch.Language)
	setString(&course.StartTime, patch.StartTime)
	setString(&course.EndTime, patch.EndTime)
	setString(&course.BatchType, patch.BatchType)
	setString(&course.CourseType, patch.CourseType)
	setString(&course.Address, patch.Address)

	if patch.Brochure != nil {
		course.Brochure = *patch.Brochure
	}
	if patch.IsActive != nil {
		course.IsActive = *patch.IsActive
	}

	if patch.StartDate != nil || patch.EndDate != nil {
		if patch.StartDate != nil {
			course.StartDate = patch.StartDate.UTC()
		}
		if patch.EndDate != nil {
			course.EndDate = patch.EndDate.UTC()
		}
		if !course.StartDate.Before(course.EndDate) {
			return nil, apperrors.NewInvalidError("Start date must be before end date")
		}
	}

	if patch.Price != nil || patch.DiscountPercentage != nil {
		if patch.Price != nil {
			course.Price = *patch.Price
		}
		if patch.DiscountPercentage != nil {
			course.DiscountPercentage = *patch.DiscountPercentage
		}
		course.FinalPrice = utils.CalculateFinalPrice(course.Price, course.DiscountPercentage)
	}

	if patch.CountryPricing != nil {
		course.CountryPricing = PriceCountries(*patch.CountryPricing)
	}

	if patch.MaxParticipants != nil {
		limit := *patch.MaxParticipants
		course.MaxParticipants = &limit
	}

	if err := validateCourse(course); err != nil {
		return nil, err
	}

	// Seat counters move under concurrent registrations, so they are never
	// written from the copy read above.
	tx := db.WithContext(ctx)
	if err := tx.Omit("enrollment_count", "capacity_remaining").Save(course).Error; err != nil {
		return nil, err
	}
	if patch.MaxParticipants != nil {
		limit := *patch.MaxParticipants
		remaining := gorm.Expr("CASE WHEN enrollment_count > ? THEN 0 ELSE ? - enrollment_count END", limit, limit)
		if err := tx.Model(&models.Course{}).Where("id = ?", course.ID).
			Update("capacity_remaining", remaining).Error; err != nil {
			return nil, err
		}
	}
	if err := tx.First(course, "id = ?", course.ID).Error; err != nil {
		return nil, err
	}
	return course, nil
}

// SetActive flips the active flag. Registrations are untouched.
func SetActive(ctx context.Context, db *gorm.DB, ref string, active bool) (*models.Course, error) {
	course, err := FindCourse(ctx, db, ref)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(course).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	course.IsActive = active
	return course, nil
}

// Delete removes the course row. Its registrations stay behind.
func Delete(ctx context.Context, db *gorm.DB, ref string) (*models.Course, error) {
	course, err := FindCourse(ctx, db, ref)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(&models.Course{}, "id = ?", course.ID).Error; err != nil {
		return nil, err
	}
	return course, nil
}

// PriceCountries returns a copy of entries with every FinalPrice derived
// from its own price and discount.
func PriceCountries(entries []models.CountryPrice) []models.CountryPrice {
	out := make([]models.CountryPrice, 0, len(entries))
	for _, e := range entries {
		e.Country = strings.TrimSpace(e.Country)
		e.Currency = strings.ToUpper(strings.TrimSpace(e.Currency))
		e.FinalPrice = utils.CalculateFinalPrice(e.Price, e.DiscountPercentage)
		out = append(out, e)
	}
	return out
}

// LatestCourseNumber returns the highest numeric suffix among existing
// courseIds, or FirstCourseNumber-1 when there are none.
func LatestCourseNumber(db *gorm.DB) (int, error) {
	var ids []string
	err := db.Model(&models.Course{}).
		Where("course_id LIKE ?", utils.CourseIDPrefix+"%").
		Order("LENGTH(course_id) DESC").
		Order("course_id DESC").
		Limit(1).
		Pluck("course_id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		if n, ok := utils.ParseCourseNumber(ids[0]); ok && n >= utils.FirstCourseNumber {
			return n, nil
		}
	}
	return utils.FirstCourseNumber - 1, nil
}

// NextCourseID returns the first free courseId after the latest one.
func NextCourseID(db *gorm.DB) (string, error) {
	n, err := LatestCourseNumber(db)
	if err != nil {
		return "", err
	}
	for {
		n++
		candidate := utils.FormatCourseID(n)
		var count int64
		if err := db.Model(&models.Course{}).Where("course_id = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
}

func validateCourse(c *models.Course) error {
	switch {
	case strings.TrimSpace(c.CourseName) == "":
		return apperrors.NewInvalidError("Course name is required")
	case strings.TrimSpace(c.Mentor) == "":
		return apperrors.NewInvalidError("Mentor is required")
	case !models.IsValidServiceType(c.ServiceType):
		return apperrors.NewInvalidError("Invalid service type")
	case c.Price < 0:
		return apperrors.NewInvalidError("Price cannot be negative")
	case c.DiscountPercentage < 0 || c.DiscountPercentage > 100:
		return apperrors.NewInvalidError("Discount percentage must be between 0 and 100")
	case c.DifficultyLevel != "" && !models.IsValidDifficulty(c.DifficultyLevel):
		return apperrors.NewInvalidError("Invalid difficulty level")
	case c.Language != "" && !models.IsValidLanguage(c.Language):
		return apperrors.NewInvalidError("Invalid language")
	case c.BatchType != "" && !models.IsValidBatchType(c.BatchType):
		return apperrors.NewInvalidError("Invalid batch type")
	case c.CourseType != "" && !models.IsValidCourseType(c.CourseType):
		return apperrors.NewInvalidError("Invalid course type")
	case c.MaxParticipants != nil && *c.MaxParticipants < 0:
		return apperrors.NewInvalidError("Max participants cannot be negative")
	}
	for _, cp := range c.CountryPricing {
		if cp.Country == "" || cp.Currency == "" {
			return apperrors.NewInvalidError("Country pricing entries need a country and a currency")
		}
		if cp.Price < 0 || cp.DiscountPercentage < 0 || cp.DiscountPercentage > 100 {
			return apperrors.NewInvalidError("Invalid country pricing for " + cp.Country)
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
