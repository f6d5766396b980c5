package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ServiceAgile        = "Agile"
	ServiceService      = "Service"
	ServiceSAFe         = "SAFe"
	ServiceProject      = "Project"
	ServiceQuality      = "Quality"
	ServiceBusiness     = "Business"
	ServiceGenerativeAI = "Generative AI"
)

// ServiceTypes is the closed set of course categories.
var ServiceTypes = []string{
	ServiceAgile, ServiceService, ServiceSAFe, ServiceProject,
	ServiceQuality, ServiceBusiness, ServiceGenerativeAI,
}

const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

var DifficultyLevels = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

var (
	Languages   = []string{"English", "Spanish"}
	BatchTypes  = []string{"Weekend", "Weekdays"}
	CourseTypes = []string{"Online", "Offline"}
)

const (
	DefaultLanguage   = "English"
	DefaultBatchType  = "Weekdays"
	DefaultCourseType = "Online"
)

func IsValidServiceType(s string) bool { return contains(ServiceTypes, s) }

func IsValidDifficulty(s string) bool { return contains(DifficultyLevels, s) }

func IsValidLanguage(s string) bool { return contains(Languages, s) }

func IsValidBatchType(s string) bool { return contains(BatchTypes, s) }

func IsValidCourseType(s string) bool { return contains(CourseTypes, s) }

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// CountryPrice is one regional price point of a course.
type CountryPrice struct {
	Country            string  `json:"country"`
	Currency           string  `json:"currency"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discountPercentage"`
	FinalPrice         float64 `json:"finalPrice"`
}

type Brochure struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

type Course struct {
	Base
	CourseID           string    `gorm:"size:32;uniqueIndex;not null" json:"courseId"`
	CourseName         string    `gorm:"size:255;not null" json:"courseName"`
	Description        string    `gorm:"type:text" json:"description"`
	Mentor             string    `gorm:"size:255;not null" json:"mentor"`
	ServiceType        string    `gorm:"size:32;index;not null" json:"serviceType"`
	StartDate          time.Time `gorm:"index;not null" json:"startDate"`
	EndDate            time.Time `gorm:"not null" json:"endDate"`
	Price              float64   `gorm:"not null" json:"price"`
	DiscountPercentage float64   `gorm:"not null" json:"discountPercentage"`
	FinalPrice         float64   `gorm:"not null" json:"finalPrice"`
	CourseImage        string    `json:"courseImage,omitempty"`
	Brochure           Brochure  `gorm:"embedded;embeddedPrefix:brochure_" json:"brochure"`
	IsActive           bool      `gorm:"index;not null" json:"isActive"`
	CreatedBy          string    `gorm:"size:36" json:"createdBy,omitempty"`
	EnrollmentCount    int       `gorm:"not null;default:0" json:"enrollmentCount"`
	DifficultyLevel    string    `gorm:"size:16" json:"difficultyLevel"`
	Duration           string    `gorm:"size:64" json:"duration,omitempty"`
	MaxParticipants    *int      `json:"maxParticipants,omitempty"`
	// Nil means capacity is not tracked.
	CapacityRemaining *int                              `json:"capacityRemaining,omitempty"`
	Language          string                            `gorm:"size:16" json:"language"`
	StartTime         string                            `gorm:"size:32" json:"startTime,omitempty"`
	EndTime           string                            `gorm:"size:32" json:"endTime,omitempty"`
	BatchType         string                            `gorm:"size:16" json:"batchType"`
	CourseType        string                            `gorm:"size:16" json:"courseType"`
	Address           string                            `json:"address,omitempty"`
	CountryPricing    datatypes.JSONSlice[CountryPrice] `json:"countryPricing"`
}
