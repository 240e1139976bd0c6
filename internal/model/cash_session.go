package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSession is one opening of the physical drawer. A session is open while
// ClosedAt is nil; closing is terminal.
type CashSession struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OpenedBy      uuid.UUID       `gorm:"type:uuid;not null"`
	OpenedAt      time.Time       `gorm:"not null;index"`
	InitialAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	ClosedBy      *uuid.UUID `gorm:"type:uuid"`
	ClosedAt      *time.Time
	ClosingAmount *decimal.Decimal `gorm:"type:decimal(10,2)"`
	// ExpectedAmount and Difference are frozen when the session closes.
	ExpectedAmount *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Difference     *decimal.Decimal `gorm:"type:decimal(10,2)"`

	Entries []CashEntry `gorm:"foreignKey:CashSessionID"`
}

// IsOpen reports whether the session still accepts payments and entries.
func (s *CashSession) IsOpen() bool { return s.ClosedAt == nil }

// CashEntryType: "IN" | "OUT"
type CashEntryType string

const (
	CashEntryIn  CashEntryType = "IN"
	CashEntryOut CashEntryType = "OUT"
)

// CashEntry is a manual drawer adjustment. Entries are append-only.
type CashEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashSessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type          CashEntryType   `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Description   string          `gorm:"type:varchar(200);not null"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}
