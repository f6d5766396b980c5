// Package importer turns spreadsheet rows into courses. A batch is
// persisted only when every row is valid.
package importer

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"coursehub/logger"
	"coursehub/models"
	"coursehub/services/catalog"
	"coursehub/services/events"
	"coursehub/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	insertBatchSize         = 100
	defaultBrochureFileName = "brochure.pdf"
	// matches the startTime/endTime column width
	maxTimeLength = 32
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Report summarizes one import attempt.
type Report struct {
	TotalRows     int        `json:"totalRows"`
	ImportedCount int        `json:"importedCount"`
	FailedCount   int        `json:"failedCount"`
	Errors        []RowError `json:"errors"`
}

// Rejected reports whether the batch was refused because of row errors.
func (r *Report) Rejected() bool {
	return len(r.Errors) > 0
}

type Options struct {
	// Checker validates brochure URLs. Nil skips the check.
	Checker URLChecker
	// DefaultCapacity seeds capacityRemaining when no capacity column is given.
	DefaultCapacity int
	CreatedBy       string
}

// Import validates every row and, when all pass, inserts the courses in
// row order inside one transaction with sequential courseIds.
func Import(ctx context.Context, db *gorm.DB, rows []Row, opts Options) (*Report, error) {
	report := &Report{TotalRows: len(rows), Errors: []RowError{}}

	courses := make([]*models.Course, 0, len(rows))
	for i, row := range rows {
		course, msg := buildCourse(ctx, row, opts)
		if msg != "" {
			report.Errors = append(report.Errors, RowError{Row: i + 2, Message: msg})
			continue
		}
		courses = append(courses, course)
	}

	if report.Rejected() {
		report.FailedCount = len(report.Errors)
		return report, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		latest, err := catalog.LatestCourseNumber(tx)
		if err != nil {
			return err
		}
		for i, c := range courses {
			c.CourseID = utils.FormatCourseID(latest + 1 + i)
		}
		if len(courses) == 0 {
			return nil
		}
		return tx.CreateInBatches(courses, insertBatchSize).Error
	})
	if err != nil {
		return nil, err
	}

	report.ImportedCount = len(courses)
	events.Emit(ctx, events.Event{
		Type:       events.CoursesImported,
		Actor:      opts.CreatedBy,
		Attributes: map[string]string{"count": strconv.Itoa(report.ImportedCount)},
	})
	return report, nil
}

// buildCourse maps one row onto a course. A non-empty message means the
// row is invalid.
func buildCourse(ctx context.Context, row Row, opts Options) (*models.Course, string) {
	mapped := map[string]string{}
	for header, value := range row {
		field, ok := CanonicalField(header)
		if !ok || value == "" {
			continue
		}
		if _, seen := mapped[field]; !seen {
			mapped[field] = value
		}
	}

	serviceType, _ := NormalizeServiceType(mapped[FieldServiceType])
	startDate, hasStart := parseDate(mapped[FieldStartDate])
	endDate, hasEnd := parseDate(mapped[FieldEndDate])

	if mapped[FieldCourseName] == "" || mapped[FieldDescription] == "" || mapped[FieldMentor] == "" ||
		serviceType == "" || !hasStart || !hasEnd {
		return nil, "Missing required fields"
	}
	if !startDate.Before(endDate) {
		return nil, "Start date must be before end date"
	}

	difficulty, msg := choice(mapped[FieldDifficultyLevel], models.DifficultyIntermediate, NormalizeDifficulty, "Invalid difficulty level")
	if msg != "" {
		return nil, msg
	}
	language, msg := choice(mapped[FieldLanguage], models.DefaultLanguage, NormalizeLanguage, "Invalid language")
	if msg != "" {
		return nil, msg
	}
	batchType, msg := choice(mapped[FieldBatchType], models.DefaultBatchType, NormalizeBatchType, "Invalid batch type")
	if msg != "" {
		return nil, msg
	}
	courseType, msg := choice(mapped[FieldCourseType], models.DefaultCourseType, NormalizeCourseType, "Invalid course type")
	if msg != "" {
		return nil, msg
	}

	if len(mapped[FieldStartTime]) > maxTimeLength || len(mapped[FieldEndTime]) > maxTimeLength {
		return nil, "Invalid start or end time"
	}

	capacity := opts.DefaultCapacity
	var maxParticipants *int
	if raw := mapped[FieldMaxParticipants]; raw != "" {
		n, ok := parseNumber(raw)
		if !ok || n < 0 {
			return nil, "Invalid max participants"
		}
		limit := int(n)
		maxParticipants = &limit
		capacity = limit
	}

	var brochure models.Brochure
	if link := mapped[FieldBrochure]; link != "" {
		if msg := checkBrochure(ctx, opts.Checker, link); msg != "" {
			return nil, msg
		}
		brochure = models.Brochure{URL: link, FileName: brochureFileName(link)}
	}

	pricing := countryPricing(row)
	base := pricing[0]

	address := mapped[FieldAddress]
	if courseType == "Online" {
		address = ""
	}

	return &models.Course{
		CourseName:         mapped[FieldCourseName],
		Description:        mapped[FieldDescription],
		Mentor:             mapped[FieldMentor],
		ServiceType:        serviceType,
		StartDate:          startDate,
		EndDate:            endDate,
		Price:              base.Price,
		DiscountPercentage: base.DiscountPercentage,
		FinalPrice:         base.FinalPrice,
		Brochure:           brochure,
		IsActive:           true,
		CreatedBy:          opts.CreatedBy,
		DifficultyLevel:    difficulty,
		Duration:           mapped[FieldDuration],
		MaxParticipants:    maxParticipants,
		CapacityRemaining:  &capacity,
		Language:           language,
		StartTime:          mapped[FieldStartTime],
		EndTime:            mapped[FieldEndTime],
		BatchType:          batchType,
		CourseType:         courseType,
		Address:            address,
		CountryPricing:     pricing,
	}, ""
}

// countryPricing scans the original columns for Fee<Country>,
// Discount<Country> and Price<Country>. A positive explicit price wins
// over the computed one.
func countryPricing(row Row) []models.CountryPrice {
	out := make([]models.CountryPrice, 0, len(PricingCountries))
	for _, c := range PricingCountries {
		key := NormalizeKey(c.Name)
		var fee, discount, explicit float64
		for header, value := range row {
			switch NormalizeKey(header) {
			case "fee" + key:
				fee, _ = parseNumber(value)
			case "discount" + key:
				discount, _ = parseNumber(value)
			case "price" + key:
				explicit, _ = parseNumber(value)
			}
		}
		final := utils.CalculateFinalPrice(fee, discount)
		if explicit > 0 {
			final = explicit
		}
		out = append(out, models.CountryPrice{
			Country:            c.Name,
			Currency:           c.Currency,
			Price:              fee,
			DiscountPercentage: discount,
			FinalPrice:         final,
		})
	}
	return out
}

func checkBrochure(ctx context.Context, checker URLChecker, link string) string {
	if checker == nil {
		return ""
	}
	err := checker.Check(ctx, link)
	if err == nil {
		return ""
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	logger.Debug("brochure check failed", zap.String("url", link), zap.Error(err))
	return "Brochure URL invalid or unreachable"
}

func brochureFileName(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return defaultBrochureFileName
	}
	name := path.Base(u.Path)
	if path.Ext(name) == "" {
		return defaultBrochureFileName
	}
	return name
}

// choice normalizes an optional enum cell: blank takes def, an unknown
// value yields invalidMsg.
func choice(raw, def string, normalize func(string) (string, bool), invalidMsg string) (string, string) {
	if raw == "" {
		return def, ""
	}
	v, ok := normalize(raw)
	if !ok {
		return "", invalidMsg
	}
	return v, ""
}

// parseDate accepts spreadsheet serial numbers and common textual layouts.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
