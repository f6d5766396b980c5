package models

import "time"

const (
	RegistrationPending   = "PENDING"
	RegistrationConfirmed = "CONFIRMED"
	RegistrationCancelled = "CANCELLED"
	RegistrationCompleted = "COMPLETED"
)

var RegistrationStatuses = []string{
	RegistrationPending, RegistrationConfirmed, RegistrationCancelled, RegistrationCompleted,
}

const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)

var PaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}

var PaymentModes = []string{"UPI", "Card", "NetBanking", "Wallet", "Cash"}

const (
	DefaultCurrency    = "INR"
	DiscountPercentage = "PERCENTAGE"
)

func IsValidRegistrationStatus(s string) bool { return contains(RegistrationStatuses, s) }

func IsValidPaymentStatus(s string) bool { return contains(PaymentStatuses, s) }

func IsValidPaymentMode(s string) bool { return contains(PaymentModes, s) }

type Certificate struct {
	URL               string     `json:"url,omitempty"`
	FileName          string     `json:"fileName,omitempty"`
	CertificateNumber string     `json:"certificateNumber,omitempty"`
	IssuedDate        *time.Time `json:"issuedDate,omitempty"`
}

type Registration struct {
	Base
	ParticipantID      string `gorm:"size:36;index;not null" json:"participantId"`
	CourseID           string `gorm:"size:36;index;not null" json:"courseId"`
	RegistrationNumber string `gorm:"size:32;uniqueIndex;not null" json:"registrationNumber"`

	PaymentID       string     `gorm:"size:128" json:"paymentId,omitempty"`
	PaymentMode     string     `gorm:"size:16" json:"paymentMode,omitempty"`
	PaymentStatus   string     `gorm:"size:16;index;not null" json:"paymentStatus"`
	AmountPaid      float64    `json:"amountPaid"`
	Currency        string     `gorm:"size:8" json:"currency"`
	TransactionDate *time.Time `json:"transactionDate,omitempty"`
	PaymentReceipt  string     `json:"paymentReceipt,omitempty"`

	// Price snapshot taken at registration time.
	OriginalPrice   float64 `json:"originalPrice"`
	DiscountApplied float64 `json:"discountApplied"`
	DiscountType    string  `gorm:"size:16" json:"discountType"`
	FinalAmount     float64 `json:"finalAmount"`

	RegistrationStatus string     `gorm:"size:16;index;not null" json:"registrationStatus"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	CancellationDate   *time.Time `json:"cancellationDate,omitempty"`

	CertificateIssued bool        `json:"certificateIssued"`
	Certificate       Certificate `gorm:"embedded;embeddedPrefix:certificate_" json:"certificate"`

	AttendancePercentage float64    `json:"attendancePercentage"`
	CourseCompleted      bool       `json:"courseCompleted"`
	CompletionDate       *time.Time `json:"completionDate,omitempty"`
	Rating               *int       `json:"rating,omitempty"`
	Review               string     `gorm:"type:text" json:"review,omitempty"`
	Notes                string     `gorm:"type:text" json:"notes,omitempty"`

	Participant *Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
	Course      *Course      `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// IsTerminal reports whether normal transitions are closed.
func (r *Registration) IsTerminal() bool {
	return r.RegistrationStatus == RegistrationCancelled || r.RegistrationStatus == RegistrationCompleted
}
