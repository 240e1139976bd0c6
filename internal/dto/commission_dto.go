package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CommissionRuleRequest creates or replaces the rule for a (barber, service)
// pair. FixedAmount takes precedence over Percent.
type CommissionRuleRequest struct {
	BarberID    string           `json:"barber"       validate:"required,uuid"`
	ServiceID   string           `json:"service"      validate:"required,uuid"`
	Percent     *decimal.Decimal `json:"percent"`
	FixedAmount *decimal.Decimal `json:"fixed_amount"`
	Active      *bool            `json:"active"`
}

type CommissionPreviewRequest struct {
	BarberID  string          `json:"barber"  validate:"required,uuid"`
	ServiceID string          `json:"service" validate:"required,uuid"`
	Price     decimal.Decimal `json:"price"   validate:"required,gt=0"`
}

type CommissionFilter struct {
	BarberID string `form:"barber"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CommissionRuleResponse struct {
	ID          string           `json:"id"`
	BarberID    string           `json:"barber"`
	ServiceID   string           `json:"service"`
	Percent     *decimal.Decimal `json:"percent"`
	FixedAmount *decimal.Decimal `json:"fixed_amount"`
	Active      bool             `json:"active"`
}

type CommissionResponse struct {
	ID               string          `json:"id"`
	ServiceRecordID  string          `json:"service_record"`
	BarberID         string          `json:"barber"`
	BarberUsername   string          `json:"barber_username"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

type CommissionListResponse struct {
	Data  []CommissionResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// CommissionPreviewResponse.Source: "fixed" | "rule_percent" | "service_default"
type CommissionPreviewResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Source string          `json:"source"`
}

// CommissionRecalcRequest queues a recalculation of every commission whose
// record was performed between From and To (inclusive).
type CommissionRecalcRequest struct {
	BarberID string `json:"barber,omitempty" validate:"omitempty,uuid"`
	From     string `json:"from"             validate:"required,datetime=2006-01-02"`
	To       string `json:"to"               validate:"required,datetime=2006-01-02"`
}
