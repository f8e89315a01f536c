package services

import (
	"context"
	"strings"
	"time"

	"github.com/techagentng/carefront/db"
	errs "github.com/techagentng/carefront/errors"
	"github.com/techagentng/carefront/models"
)

type AppointmentService interface {
	CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest, identity *models.Identity) (*models.Appointment, error)
	ListAppointments(ctx context.Context, status, search string) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Appointment, error)
}

type appointmentService struct {
	repo db.AppointmentRepository
}

func NewAppointmentService(repo db.AppointmentRepository) AppointmentService {
	return &appointmentService{repo: repo}
}

func (s *appointmentService) CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest, identity *models.Identity) (*models.Appointment, error) {
	if strings.TrimSpace(req.PatientName) == "" || strings.TrimSpace(req.Date) == "" {
		return nil, errs.Validation("Patient name and date are required")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, errs.Validation("date must be a date (YYYY-MM-DD) or RFC3339 timestamp")
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, errs.Validation("dateOfBirth must be a date (YYYY-MM-DD)")
	}
	gender := strings.ToLower(req.Gender)
	if !models.ValidGender(gender) {
		return nil, errs.Validation("gender must be one of male, female, other")
	}

	appointment := &models.Appointment{
		PatientName:   req.PatientName,
		PatientEmail:  req.PatientEmail,
		CNIC:          req.CNIC,
		Phone:         req.Phone,
		Address:       req.Address,
		Gender:        gender,
		DateOfBirth:   dob,
		Department:    req.Department,
		Doctor:        req.Doctor,
		Notes:         req.Notes,
		VisitedBefore: req.VisitedBefore,
		Date:          *date,
		Status:        models.AppointmentPending,
	}
	if identity != nil {
		appointment.CreatedBy = identity.ID
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, errs.Persistence(err)
	}
	return appointment, nil
}

func (s *appointmentService) ListAppointments(ctx context.Context, status, search string) ([]models.Appointment, error) {
	filter := models.AppointmentFilter{Search: strings.TrimSpace(search)}
	if status != "" {
		st := models.AppointmentStatus(status)
		if !st.Valid() {
			return nil, errs.Validation("status must be one of Pending, Accepted, Rejected")
		}
		filter.Status = st
	}
	appointments, err := s.repo.List(ctx, filter, db.MaxListResults)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return appointments, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, id, status string) (*models.Appointment, error) {
	st := models.AppointmentStatus(status)
	if !st.Valid() {
		return nil, errs.Validation("status must be one of Pending, Accepted, Rejected")
	}
	appointment, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, storeError(err, "Appointment not found")
	}
	return appointment, nil
}

// parseDate accepts an empty string, a calendar date or an RFC3339 timestamp.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	_, err := time.Parse("2006-01-02", value)
	return nil, err
}
