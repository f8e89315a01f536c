package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/carefront/models"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	List(ctx context.Context, filter models.AppointmentFilter, limit int) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error)
}

type appointmentRepo struct {
	DB *gorm.DB
}

func NewAppointmentRepo(db *GormDB) AppointmentRepository {
	return &appointmentRepo{db.DB}
}

func (r *appointmentRepo) Create(ctx context.Context, appointment *models.Appointment) error {
	if err := r.DB.WithContext(ctx).Create(appointment).Error; err != nil {
		return errors.Wrap(err, "creating appointment")
	}
	return nil
}

func (r *appointmentRepo) List(ctx context.Context, filter models.AppointmentFilter, limit int) ([]models.Appointment, error) {
	q := r.DB.WithContext(ctx).Model(&models.Appointment{})
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Search != "" {
		q = q.Where("patient_name ILIKE ?", likePattern(filter.Search))
	}
	var appointments []models.Appointment
	if err := q.Order("created_at DESC").Limit(clampLimit(limit)).Find(&appointments).Error; err != nil {
		return nil, errors.Wrap(err, "listing appointments")
	}
	return appointments, nil
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	res := r.DB.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "updating appointment %s", id)
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var appointment models.Appointment
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&appointment).Error; err != nil {
		return nil, errors.Wrapf(err, "finding appointment %s", id)
	}
	return &appointment, nil
}
