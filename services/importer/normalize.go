package importer

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// Canonical field names produced by header normalization.
const (
	FieldCourseName      = "courseName"
	FieldDescription     = "description"
	FieldMentor          = "mentor"
	FieldServiceType     = "serviceType"
	FieldStartDate       = "startDate"
	FieldEndDate         = "endDate"
	FieldDuration        = "duration"
	FieldLanguage        = "language"
	FieldStartTime       = "startTime"
	FieldEndTime         = "endTime"
	FieldBatchType       = "batchType"
	FieldCourseType      = "courseType"
	FieldAddress         = "address"
	FieldBrochure        = "brochure"
	FieldDifficultyLevel = "difficultyLevel"
	FieldMaxParticipants = "maxParticipants"
)

var headerAliases = map[string]string{
	"coursename":      FieldCourseName,
	"course":          FieldCourseName,
	"description":     FieldDescription,
	"mentor":          FieldMentor,
	"mentorname":      FieldMentor,
	"servicetype":     FieldServiceType,
	"type":            FieldServiceType,
	"startdate":       FieldStartDate,
	"enddate":         FieldEndDate,
	"duration":        FieldDuration,
	"language":        FieldLanguage,
	"starttime":       FieldStartTime,
	"endtime":         FieldEndTime,
	"batchtype":       FieldBatchType,
	"coursetype":      FieldCourseType,
	"address":         FieldAddress,
	"brochure":        FieldBrochure,
	"difficultylevel": FieldDifficultyLevel,
	"level":           FieldDifficultyLevel,
	"maxparticipants": FieldMaxParticipants,
	"capacity":        FieldMaxParticipants,
}

var serviceTypeAliases = map[string]string{
	"agile":        "Agile",
	"service":      "Service",
	"safe":         "SAFe",
	"project":      "Project",
	"quality":      "Quality",
	"business":     "Business",
	"generativeai": "Generative AI",
	"genai":        "Generative AI",
}

var difficultyAliases = map[string]string{
	"beginner":     "Beginner",
	"intermediate": "Intermediate",
	"intermidate":  "Intermediate",
	"advanced":     "Advanced",
}

var languageAliases = map[string]string{
	"english": "English",
	"spanish": "Spanish",
}

var batchTypeAliases = map[string]string{
	"weekend":  "Weekend",
	"weekends": "Weekend",
	"weekdays": "Weekdays",
	"weekday":  "Weekdays",
}

var courseTypeAliases = map[string]string{
	"online":  "Online",
	"offline": "Offline",
}

// Country is a fixed pricing region scanned from Fee/Discount/Price columns.
type Country struct {
	Name     string
	Currency string
}

// PricingCountries lists the regions in output order. USA is the base price.
var PricingCountries = []Country{
	{Name: "USA", Currency: "USD"},
	{Name: "Canadian", Currency: "CAD"},
	{Name: "Europe", Currency: "EUR"},
	{Name: "India", Currency: "INR"},
	{Name: "Australia", Currency: "AUD"},
	{Name: "Singapore", Currency: "SGD"},
}

// NormalizeKey lower-cases s and strips everything but [a-z0-9].
func NormalizeKey(s string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "")
}

// CanonicalField maps a raw header to its field name.
func CanonicalField(header string) (string, bool) {
	f, ok := headerAliases[NormalizeKey(header)]
	return f, ok
}

func NormalizeServiceType(v string) (string, bool) { return lookup(serviceTypeAliases, v) }

func NormalizeDifficulty(v string) (string, bool) { return lookup(difficultyAliases, v) }

func NormalizeLanguage(v string) (string, bool) { return lookup(languageAliases, v) }

func NormalizeBatchType(v string) (string, bool) { return lookup(batchTypeAliases, v) }

func NormalizeCourseType(v string) (string, bool) { return lookup(courseTypeAliases, v) }

func lookup(table map[string]string, v string) (string, bool) {
	out, ok := table[NormalizeKey(v)]
	return out, ok
}
