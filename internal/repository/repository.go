package repository

import (
	"errors"

	"wayfarer/internal/database"
)

// Sentinel errors the service layer translates into the HTTP taxonomy.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repositories struct {
	Users       *UserRepository
	Tours       *TourRepository
	Experiences *ExperienceRepository
	Bookings    *BookingRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Tours:       NewTourRepository(db),
		Experiences: NewExperienceRepository(db),
		Bookings:    NewBookingRepository(db),
	}
}
