package services

import (
	"context"
	"io"
	"strings"

	"github.com/techagentng/carefront/db"
	errs "github.com/techagentng/carefront/errors"
	"github.com/techagentng/carefront/models"
)

type DoctorService interface {
	CreateDoctor(ctx context.Context, req models.CreateDoctorRequest, photo io.Reader) (*models.Doctor, error)
	ListDoctors(ctx context.Context, search string) ([]models.Doctor, error)
}

type doctorService struct {
	repo   db.DoctorRepository
	photos PhotoStore
}

// NewDoctorService builds the doctor registry. photos may be nil, in which
// case uploaded files are rejected.
func NewDoctorService(repo db.DoctorRepository, photos PhotoStore) DoctorService {
	return &doctorService{repo: repo, photos: photos}
}

func (s *doctorService) CreateDoctor(ctx context.Context, req models.CreateDoctorRequest, photo io.Reader) (*models.Doctor, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, errs.Validation("Doctor name and email are required")
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, errs.Validation("dateOfBirth must be a date (YYYY-MM-DD)")
	}

	doctor := &models.Doctor{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Department:  req.Department,
		NIC:         req.NIC,
		Gender:      req.Gender,
		Bio:         req.Bio,
		DateOfBirth: dob,
	}
	if p := strings.TrimSpace(req.Photo); p != "" {
		doctor.Photo = &p
	}

	if photo != nil {
		if s.photos == nil {
			return nil, errs.Validation("Photo uploads are not enabled")
		}
		thumb, err := ProcessPhoto(photo)
		if err != nil {
			return nil, errs.Validation("photo must be a JPEG, PNG or GIF image")
		}
		url, err := s.photos.Upload(ctx, thumb)
		if err != nil {
			return nil, errs.Persistence(err)
		}
		doctor.Photo = &url
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, errs.Persistence(err)
	}
	return doctor, nil
}

func (s *doctorService) ListDoctors(ctx context.Context, search string) ([]models.Doctor, error) {
	doctors, err := s.repo.List(ctx, strings.TrimSpace(search), db.MaxListResults)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return doctors, nil
}
