package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod: "CASH" | "PIX" | "CARD"
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentPix  PaymentMethod = "PIX"
	PaymentCard PaymentMethod = "CARD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentCard:
		return true
	}
	return false
}

// Payment settles exactly one ServiceRecord. Immutable once created.
// CashSessionID is nil only on legacy rows.
type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ServiceRecordID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Method          PaymentMethod   `gorm:"type:varchar(10);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CashSessionID   *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
}

// CommissionRule overrides the service default for one (barber, service)
// pair. FixedAmount wins over Percent when both are set.
type CommissionRule struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BarberID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_rule_barber_service"`
	ServiceID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_rule_barber_service"`
	Percent     *decimal.Decimal `gorm:"type:decimal(5,2)"`
	FixedAmount *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Active      bool             `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Commission is what a barber earns for one ServiceRecord. Recomputing
// replaces BaseAmount and CommissionAmount in place.
type Commission struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ServiceRecordID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	BarberID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BaseAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Barber *User `gorm:"foreignKey:BarberID"`
}
