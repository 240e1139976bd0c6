package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateServiceRecordRequest registers a performed service together with its
// payment. PaymentAmount defaults to PriceCharged; PerformedAt defaults to now.
type CreateServiceRecordRequest struct {
	BarberID      *string          `json:"barber"         validate:"omitempty,uuid"`
	ServiceID     string           `json:"service"        validate:"required,uuid"`
	CustomerID    *string          `json:"customer"       validate:"omitempty,uuid"`
	AppointmentID *string          `json:"appointment"    validate:"omitempty,uuid"`
	PriceCharged  decimal.Decimal  `json:"price_charged"  validate:"required,gt=0"`
	PerformedAt   *time.Time       `json:"performed_at"`
	Notes         string           `json:"notes"          validate:"max=255"`
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=CASH PIX CARD"`
	PaymentAmount *decimal.Decimal `json:"payment_amount"`
}

type ServiceRecordFilter struct {
	BarberID   string `form:"barber"`
	ServiceID  string `form:"service"`
	CustomerID string `form:"customer"`
	From       string `form:"from"` // YYYY-MM-DD
	To         string `form:"to"`   // YYYY-MM-DD, inclusive
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type PaymentFilter struct {
	CashSessionID string `form:"cash_session"`
	Method        string `form:"method"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ServiceRecordResponse struct {
	ID               string           `json:"id"`
	BarberID         string           `json:"barber"`
	BarberUsername   string           `json:"barber_username"`
	ServiceID        string           `json:"service"`
	ServiceName      string           `json:"service_name"`
	CustomerID       *string          `json:"customer"`
	CustomerName     *string          `json:"customer_name"`
	AppointmentID    *string          `json:"appointment"`
	PriceCharged     decimal.Decimal  `json:"price_charged"`
	PerformedAt      string           `json:"performed_at"`
	Notes            string           `json:"notes"`
	CreatedAt        string           `json:"created_at"`
	PaymentMethod    *string          `json:"payment_method"`
	PaymentAmount    *decimal.Decimal `json:"payment_amount"`
	CommissionAmount *decimal.Decimal `json:"commission_amount"`
}

type ServiceRecordListResponse struct {
	Data  []ServiceRecordResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type TodaySummaryResponse struct {
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type PaymentResponse struct {
	ID              string          `json:"id"`
	ServiceRecordID string          `json:"service_record"`
	Method          string          `json:"method"`
	Amount          decimal.Decimal `json:"amount"`
	CashSessionID   *string         `json:"cash_session"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       string          `json:"created_at"`
}

type PaymentListResponse struct {
	Data  []PaymentResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
