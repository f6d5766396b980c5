package models

import "time"

const (
	ParticipantActive    = "ACTIVE"
	ParticipantInactive  = "INACTIVE"
	ParticipantSuspended = "SUSPENDED"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Preferences struct {
	Newsletter    bool `json:"newsletter"`
	Notifications bool `json:"notifications"`
}

type Participant struct {
	Base
	Name              string              `gorm:"size:255;not null" json:"name"`
	Email             string              `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Mobile            string              `gorm:"size:32;uniqueIndex;not null" json:"mobile"`
	Password          string              `gorm:"not null" json:"-"`
	AlternateMobile   string              `gorm:"size:32" json:"alternateMobile,omitempty"`
	Address           Address             `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Organization      string              `json:"organization,omitempty"`
	Designation       string              `json:"designation,omitempty"`
	YearsOfExperience int                 `json:"yearsOfExperience"`
	ProfilePicture    string              `json:"profilePicture,omitempty"`
	Status            string              `gorm:"size:16;not null" json:"status"`
	EmailVerified     bool                `json:"emailVerified"`
	Preferences       Preferences         `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	RegisteredCourses []ParticipantCourse `gorm:"foreignKey:ParticipantID" json:"registeredCourses"`
}

// ParticipantCourse mirrors one live registration on the participant side.
type ParticipantCourse struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	ParticipantID    string    `gorm:"size:36;index;not null" json:"-"`
	CourseID         string    `gorm:"size:36;not null" json:"courseId"`
	RegistrationID   string    `gorm:"size:36;uniqueIndex;not null" json:"registrationId"`
	RegistrationDate time.Time `json:"registrationDate"`
}
