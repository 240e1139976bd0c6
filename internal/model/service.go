package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a catalog entry. DefaultPrice and DefaultCommissionPercent are
// defaults only; the charged price lives on each ServiceRecord.
type Service struct {
	ID                       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                     string          `gorm:"type:varchar(120);uniqueIndex;not null"`
	DefaultPrice             decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	DefaultCommissionPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:50"`
	Active                   bool            `gorm:"not null;default:true"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// ServiceRecord is one service actually performed. It is written once at
// sale time; Payment and Commission hang off it 1:1.
type ServiceRecord struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BarberID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceID     uuid.UUID       `gorm:"type:uuid;not null"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid"`
	AppointmentID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	PriceCharged  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PerformedAt   time.Time       `gorm:"not null;index"`
	Notes         string          `gorm:"type:varchar(255)"`
	CreatedAt     time.Time

	Barber     *User       `gorm:"foreignKey:BarberID"`
	Service    *Service    `gorm:"foreignKey:ServiceID"`
	Customer   *Customer   `gorm:"foreignKey:CustomerID"`
	Payment    *Payment    `gorm:"foreignKey:ServiceRecordID"`
	Commission *Commission `gorm:"foreignKey:ServiceRecordID"`
}

// Customer is a barbershop client.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(120);not null;index"`
	Phone     string    `gorm:"type:varchar(30);index"`
	Email     string    `gorm:"type:varchar(254)"`
	Notes     string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time
}
