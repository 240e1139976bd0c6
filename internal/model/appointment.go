package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus: SCHEDULED | CONFIRMED | DONE | NO_SHOW | CANCELED
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentDone      AppointmentStatus = "DONE"
	AppointmentNoShow    AppointmentStatus = "NO_SHOW"
	AppointmentCanceled  AppointmentStatus = "CANCELED"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentDone, AppointmentNoShow, AppointmentCanceled:
		return true
	}
	return false
}

type Appointment struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BarberID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_appt_barber_start"`
	CustomerID uuid.UUID         `gorm:"type:uuid;not null"`
	ServiceID  uuid.UUID         `gorm:"type:uuid;not null"`
	StartAt    time.Time         `gorm:"not null;index:idx_appt_barber_start"`
	EndAt      time.Time         `gorm:"not null"`
	Status     AppointmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`
	Notes      string            `gorm:"type:varchar(255)"`
	CreatedBy  uuid.UUID         `gorm:"type:uuid;not null"`
	CreatedAt  time.Time

	Barber   *User     `gorm:"foreignKey:BarberID"`
	Customer *Customer `gorm:"foreignKey:CustomerID"`
	Service  *Service  `gorm:"foreignKey:ServiceID"`
}
