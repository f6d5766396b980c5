package registration

import (
	"context"
	"time"

	"coursehub/models"

	dates "github.com/jinzhu/now"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	ExportSheet    = "Registrations"
	ExportFileName = "Registrations.xlsx"
	ExportMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []interface{}{
	"Registration ID", "Participant Name", "Email", "Mobile",
	"Course Name", "Course ID", "Service Type",
	"Registration Status", "Payment Status", "Amount Paid", "Total Amount",
	"Currency", "Payment Mode", "Payment ID", "Registration Date", "Cancellation Reason",
}

// EndOfDay moves t to the last instant of its UTC day so date-only upper
// bounds include the whole day.
func EndOfDay(t time.Time) time.Time {
	return dates.With(t.UTC()).EndOfDay()
}

// Export writes every registration matching f (pagination ignored) to an
// xlsx workbook, newest first.
func Export(ctx context.Context, db *gorm.DB, f Filter) ([]byte, error) {
	q, err := filtered(ctx, db, f)
	if err != nil {
		return nil, err
	}
	regs := []models.Registration{}
	if err := q.Preload("Course").Preload("Participant").Order("created_at DESC").Find(&regs).Error; err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer file.Close()
	if err := file.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, err
	}
	if err := file.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i := range regs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := exportRow(&regs[i])
		if err := file.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportRow(reg *models.Registration) []interface{} {
	name, email, mobile := "N/A", "N/A", "N/A"
	if p := reg.Participant; p != nil {
		name, email, mobile = orNA(p.Name), orNA(p.Email), orNA(p.Mobile)
	}
	courseName, courseID, serviceType := "N/A", "N/A", "N/A"
	if c := reg.Course; c != nil {
		courseName, courseID, serviceType = orNA(c.CourseName), orNA(c.CourseID), orNA(c.ServiceType)
	}
	registered := "N/A"
	if !reg.CreatedAt.IsZero() {
		registered = reg.CreatedAt.UTC().Format("2006-01-02")
	}
	return []interface{}{
		reg.RegistrationNumber, name, email, mobile,
		courseName, courseID, serviceType,
		reg.RegistrationStatus, reg.PaymentStatus, reg.AmountPaid, reg.FinalAmount,
		reg.Currency, orNA(reg.PaymentMode), orNA(reg.PaymentID), registered, orNA(reg.CancellationReason),
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
