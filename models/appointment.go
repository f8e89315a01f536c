package models

import "time"

type AppointmentStatus string

const (
	AppointmentPending  AppointmentStatus = "Pending"
	AppointmentAccepted AppointmentStatus = "Accepted"
	AppointmentRejected AppointmentStatus = "Rejected"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentAccepted, AppointmentRejected:
		return true
	}
	return false
}

// ValidGender accepts the empty string as "not given".
func ValidGender(g string) bool {
	switch g {
	case "", "male", "female", "other":
		return true
	}
	return false
}

type Appointment struct {
	Model
	PatientName   string            `json:"patientName" gorm:"not null"`
	PatientEmail  string            `json:"patientEmail"`
	CNIC          string            `json:"cnic"`
	Phone         string            `json:"phone"`
	Address       string            `json:"address"`
	Gender        string            `json:"gender" gorm:"type:varchar(8);default:''"`
	DateOfBirth   *time.Time        `json:"dateOfBirth,omitempty"`
	Department    string            `json:"department"`
	Doctor        string            `json:"doctor"`
	Notes         string            `json:"notes" gorm:"type:text"`
	VisitedBefore bool              `json:"visitedBefore" gorm:"default:false"`
	Date          time.Time         `json:"date" gorm:"not null;index"`
	Status        AppointmentStatus `json:"status" gorm:"type:varchar(16);not null;default:Pending;index"`
	CreatedBy     string            `json:"createdBy,omitempty" gorm:"index"`
}

type AppointmentFilter struct {
	Status AppointmentStatus
	Search string
}

type CreateAppointmentRequest struct {
	PatientName   string `json:"patientName" conform:"trim"`
	PatientEmail  string `json:"patientEmail" binding:"omitempty,email" conform:"trim"`
	CNIC          string `json:"cnic" conform:"trim"`
	Phone         string `json:"phone" conform:"trim"`
	Address       string `json:"address" conform:"trim"`
	Gender        string `json:"gender" conform:"trim"`
	DateOfBirth   string `json:"dateOfBirth" conform:"trim"`
	Department    string `json:"department" conform:"trim"`
	Doctor        string `json:"doctor" conform:"trim"`
	Notes         string `json:"notes" conform:"trim"`
	VisitedBefore bool   `json:"visitedBefore"`
	Date          string `json:"date" conform:"trim"`
}

type AppointmentStatusRequest struct {
	Status string `json:"status" binding:"required" conform:"trim"`
}
