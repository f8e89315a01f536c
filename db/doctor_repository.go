package db

import (
	"context"

	"github.com/pkg/errors"
	"github.com/techagentng/carefront/models"
	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	List(ctx context.Context, search string, limit int) ([]models.Doctor, error)
}

type doctorRepo struct {
	DB *gorm.DB
}

func NewDoctorRepo(db *GormDB) DoctorRepository {
	return &doctorRepo{db.DB}
}

func (r *doctorRepo) Create(ctx context.Context, doctor *models.Doctor) error {
	if err := r.DB.WithContext(ctx).Create(doctor).Error; err != nil {
		return errors.Wrap(err, "creating doctor")
	}
	return nil
}

func (r *doctorRepo) List(ctx context.Context, search string, limit int) ([]models.Doctor, error) {
	q := r.DB.WithContext(ctx).Model(&models.Doctor{})
	if search != "" {
		q = q.Where("name ILIKE ?", likePattern(search))
	}
	var doctors []models.Doctor
	if err := q.Order("name ASC").Limit(clampLimit(limit)).Find(&doctors).Error; err != nil {
		return nil, errors.Wrap(err, "listing doctors")
	}
	return doctors, nil
}
