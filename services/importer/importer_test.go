package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coursehub/database"
	"coursehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

var header = []interface{}{"Course Name", "Description", "Mentor Name", "Service Type", "Start Date", "End Date", "FeeUSA", "DiscountUSA"}

func validRow(name string) []interface{} {
	return []interface{}{name, "Two day workshop", "Ravi", "agile", "2031-03-01", "2031-03-03", 500, 10}
}

func TestNormalization(t *testing.T) {
	assert.Equal(t, "coursename", NormalizeKey(" Course_Name "))

	f, ok := CanonicalField("Mentor Name")
	assert.True(t, ok)
	assert.Equal(t, FieldMentor, f)
	f, _ = CanonicalField("Level")
	assert.Equal(t, FieldDifficultyLevel, f)
	_, ok = CanonicalField("Course ID")
	assert.False(t, ok)

	st, ok := NormalizeServiceType("Gen AI")
	assert.True(t, ok)
	assert.Equal(t, models.ServiceGenerativeAI, st)
	st, _ = NormalizeServiceType("safe")
	assert.Equal(t, models.ServiceSAFe, st)
	_, ok = NormalizeServiceType("cooking")
	assert.False(t, ok)

	d, ok := NormalizeDifficulty("Intermidate")
	assert.True(t, ok)
	assert.Equal(t, models.DifficultyIntermediate, d)
}

func TestParseDate(t *testing.T) {
	got, ok := parseDate("45658")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), got)

	got, ok = parseDate("2031-03-01")
	require.True(t, ok)
	assert.Equal(t, 2031, got.Year())

	got, ok = parseDate("03/15/2031")
	require.True(t, ok)
	assert.Equal(t, time.March, got.Month())

	_, ok = parseDate("next tuesday")
	assert.False(t, ok)
	_, ok = parseDate("")
	assert.False(t, ok)
}

func TestReadRowsWorkbookSkipsBlankRows(t *testing.T) {
	data := workbook(t, header, validRow("Scrum"), []interface{}{"", ""}, validRow("Kanban"))

	rows, err := ReadRows(data, "courses.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Scrum", rows[0]["Course Name"])
	assert.Equal(t, "500", rows[0]["FeeUSA"])
	assert.Equal(t, "Kanban", rows[1]["Course Name"])
}

func TestReadRowsCSV(t *testing.T) {
	data := []byte("\xef\xbb\xbfCourse,Description,Mentor,Type,Start Date,End Date\n" +
		"Scrum,Workshop,Ravi,Agile,2031-03-01,2031-03-03\n")

	rows, err := ReadRows(data, "courses.CSV")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Scrum", rows[0]["Course"])
}

func TestReadRowsRejectsEmptyAndGarbage(t *testing.T) {
	_, err := ReadRows(workbook(t, header), "courses.xlsx")
	assert.Error(t, err)

	_, err = ReadRows([]byte("not a workbook"), "courses.xlsx")
	assert.Error(t, err)
}

func TestImportMapsFeeAndDiscountColumns(t *testing.T) {
	db := database.NewTestDB(t)
	rows, err := ReadRows(workbook(t, header, validRow("Scrum")), "courses.xlsx")
	require.NoError(t, err)

	report, err := Import(context.Background(), db, rows, Options{DefaultCapacity: 100, CreatedBy: "admin-1"})
	require.NoError(t, err)
	assert.False(t, report.Rejected())
	assert.Equal(t, 1, report.TotalRows)
	assert.Equal(t, 1, report.ImportedCount)

	var course models.Course
	require.NoError(t, db.First(&course).Error)
	assert.Equal(t, "CRS1001", course.CourseID)
	assert.Equal(t, models.ServiceAgile, course.ServiceType)
	assert.Equal(t, 500.0, course.Price)
	assert.Equal(t, 10.0, course.DiscountPercentage)
	assert.Equal(t, 450.0, course.FinalPrice)
	assert.Equal(t, 100, *course.CapacityRemaining)
	assert.Equal(t, models.DefaultLanguage, course.Language)
	assert.Equal(t, models.DifficultyIntermediate, course.DifficultyLevel)

	require.Len(t, course.CountryPricing, len(PricingCountries))
	usa := course.CountryPricing[0]
	assert.Equal(t, models.CountryPrice{Country: "USA", Currency: "USD", Price: 500, DiscountPercentage: 10, FinalPrice: 450}, usa)
	assert.Equal(t, "INR", course.CountryPricing[3].Currency)
	assert.Zero(t, course.CountryPricing[3].FinalPrice)
}

func TestImportIsAllOrNothing(t *testing.T) {
	db := database.NewTestDB(t)
	bad := validRow("Broken dates")
	bad[4], bad[5] = "2031-03-05", "2031-03-01"

	rows, err := ReadRows(workbook(t, header, validRow("Scrum"), bad, validRow("Kanban")), "courses.xlsx")
	require.NoError(t, err)

	report, err := Import(context.Background(), db, rows, Options{DefaultCapacity: 100})
	require.NoError(t, err)
	assert.True(t, report.Rejected())
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 0, report.ImportedCount)
	assert.Equal(t, []RowError{{Row: 3, Message: "Start date must be before end date"}}, report.Errors)

	var count int64
	db.Model(&models.Course{}).Count(&count)
	assert.Zero(t, count)
}

func TestImportReportsMissingFields(t *testing.T) {
	db := database.NewTestDB(t)
	rows := []Row{
		{"Course": "Scrum", "Mentor": "Ravi", "Type": "Agile", "Start Date": "2031-03-01", "End Date": "2031-03-03"},
		{"Course": "Lean", "Description": "x", "Mentor": "Ravi", "Type": "Cooking", "Start Date": "2031-03-01", "End Date": "2031-03-03"},
		{"Course": "Lean", "Description": "x", "Mentor": "Ravi", "Type": "Quality", "Start Date": "2031-03-01", "End Date": "2031-03-03", "Language": "Klingon"},
	}

	report, err := Import(context.Background(), db, rows, Options{})
	require.NoError(t, err)
	assert.Equal(t, []RowError{
		{Row: 2, Message: "Missing required fields"},
		{Row: 3, Message: "Missing required fields"},
		{Row: 4, Message: "Invalid language"},
	}, report.Errors)
	assert.Equal(t, 3, report.FailedCount)
}

func TestImportContinuesCourseIDsAndHonoursExplicitPrice(t *testing.T) {
	db := database.NewTestDB(t)
	start := time.Now().Add(24 * time.Hour).UTC()
	require.NoError(t, db.Create(&models.Course{
		CourseID: "CRS1041", CourseName: "Existing", Mentor: "m", ServiceType: models.ServiceAgile,
		StartDate: start, EndDate: start.Add(time.Hour), IsActive: true,
	}).Error)

	rows := []Row{
		{"Course": "A", "Description": "x", "Mentor": "m", "Type": "Agile", "Start Date": "2031-03-01", "End Date": "2031-03-03",
			"Fee India": "20000", "Discount India": "10", "Price India": "17500", "Course Type": "Offline", "Address": "Pune", "Capacity": "30"},
		{"Course": "B", "Description": "x", "Mentor": "m", "Type": "Business", "Start Date": "2031-04-01", "End Date": "2031-04-03",
			"Course Type": "online", "Address": "Ignored", "Batch Type": "weekend"},
	}

	report, err := Import(context.Background(), db, rows, Options{DefaultCapacity: 100})
	require.NoError(t, err)
	require.False(t, report.Rejected())

	var a, b models.Course
	require.NoError(t, db.Where("course_name = ?", "A").First(&a).Error)
	require.NoError(t, db.Where("course_name = ?", "B").First(&b).Error)

	assert.Equal(t, "CRS1042", a.CourseID)
	assert.Equal(t, "CRS1043", b.CourseID)
	assert.Equal(t, 17500.0, a.CountryPricing[3].FinalPrice)
	assert.Equal(t, "Pune", a.Address)
	assert.Equal(t, 30, *a.MaxParticipants)
	assert.Equal(t, 30, *a.CapacityRemaining)
	assert.Empty(t, b.Address)
	assert.Equal(t, "Weekend", b.BatchType)
	assert.Equal(t, "Online", b.CourseType)
}

func TestImportChecksBrochureURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/files/agile.pdf" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	checker := NewHTTPChecker(2 * time.Second)
	row := func(link string) Row {
		return Row{"Course": "A", "Description": "x", "Mentor": "m", "Type": "Agile",
			"Start Date": "2031-03-01", "End Date": "2031-03-03", "Brochure": link}
	}

	db := database.NewTestDB(t)
	report, err := Import(context.Background(), db, []Row{
		row(srv.URL + "/files/agile.pdf"),
		row(srv.URL + "/missing.pdf"),
		row(closedURL + "/x.pdf"),
	}, Options{Checker: checker})
	require.NoError(t, err)
	assert.Equal(t, []RowError{
		{Row: 3, Message: "Brochure URL not accessible (Status: 404)"},
		{Row: 4, Message: "Brochure URL invalid or unreachable"},
	}, report.Errors)

	report, err = Import(context.Background(), db, []Row{row(srv.URL + "/files/agile.pdf")}, Options{Checker: checker})
	require.NoError(t, err)
	require.False(t, report.Rejected())

	var course models.Course
	require.NoError(t, db.First(&course).Error)
	assert.Equal(t, "agile.pdf", course.Brochure.FileName)
}

func TestImportReadsNativeDatesTimesAndAmounts(t *testing.T) {
	db := database.NewTestDB(t)

	f := excelize.NewFile()
	defer f.Close()
	hdr := append(append([]interface{}{}, header...), "Start Time")
	row := []interface{}{"Scrum", "Two day workshop", "Ravi", "agile",
		time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2031, 3, 3, 0, 0, 0, 0, time.UTC),
		1200, 10, 10.0 / 24}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &hdr))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	timeStyle, err := f.NewStyle(&excelize.Style{NumFmt: 18})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "I2", "I2", timeStyle))
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "G2", "G2", amountStyle))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ReadRows(buf.Bytes(), "courses.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "10:00 AM", rows[0]["Start Time"])
	assert.Equal(t, "1200", rows[0]["FeeUSA"])

	report, err := Import(context.Background(), db, rows, Options{DefaultCapacity: 20})
	require.NoError(t, err)
	require.False(t, report.Rejected(), "%v", report.Errors)

	var course models.Course
	require.NoError(t, db.First(&course).Error)
	assert.Equal(t, time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC), course.StartDate.UTC())
	assert.Equal(t, time.Date(2031, 3, 3, 0, 0, 0, 0, time.UTC), course.EndDate.UTC())
	assert.Equal(t, "10:00 AM", course.StartTime)
	assert.Equal(t, 1200.0, course.Price)
	assert.Equal(t, 1080.0, course.FinalPrice)
}

func TestImportRejectsOversizedTimes(t *testing.T) {
	db := database.NewTestDB(t)
	hdr := append(append([]interface{}{}, header...), "End Time")
	row := append(validRow("Scrum"), "from ten in the morning until late")

	rows, err := ReadRows(workbook(t, hdr, row), "courses.xlsx")
	require.NoError(t, err)

	report, err := Import(context.Background(), db, rows, Options{DefaultCapacity: 20})
	require.NoError(t, err)
	assert.Equal(t, []RowError{{Row: 2, Message: "Invalid start or end time"}}, report.Errors)
}
