package models

import "time"

type Doctor struct {
	Model
	Name        string     `json:"name" gorm:"not null"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Department  string     `json:"department"`
	NIC         string     `json:"nic"`
	Gender      string     `json:"gender"`
	Bio         string     `json:"bio" gorm:"type:text"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Photo       *string    `json:"photo,omitempty"`
}

type CreateDoctorRequest struct {
	Name        string `json:"name" form:"name" conform:"trim"`
	Email       string `json:"email" form:"email" binding:"omitempty,email" conform:"trim"`
	Phone       string `json:"phone" form:"phone" conform:"trim"`
	Department  string `json:"department" form:"department" conform:"trim"`
	NIC         string `json:"nic" form:"nic" conform:"trim"`
	Gender      string `json:"gender" form:"gender" conform:"trim"`
	Bio         string `json:"bio" form:"bio" conform:"trim"`
	DateOfBirth string `json:"dateOfBirth" form:"dateOfBirth" conform:"trim"`
	Photo       string `json:"photo" form:"photo" conform:"trim"`
}
