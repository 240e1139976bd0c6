package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenCashRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount" validate:"min=0"`
}

// ClosingAmount is a pointer so an explicit 0.00 passes "required".
type CloseCashRequest struct {
	ClosingAmount *decimal.Decimal `json:"closing_amount" validate:"required"`
}

type CashEntryRequest struct {
	CashSessionID string          `json:"cash_session_id" validate:"required,uuid"`
	Type          string          `json:"type"            validate:"required,oneof=IN OUT"`
	Amount        decimal.Decimal `json:"amount"          validate:"required,gt=0"`
	Description   string          `json:"description"     validate:"required,min=3,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CashSessionResponse struct {
	ID             string           `json:"id"`
	Open           bool             `json:"open"`
	OpenedBy       string           `json:"opened_by"`
	OpenedAt       string           `json:"opened_at"`
	InitialAmount  decimal.Decimal  `json:"initial_amount"`
	ClosedBy       *string          `json:"closed_by"`
	ClosedAt       *string          `json:"closed_at"`
	ClosingAmount  *decimal.Decimal `json:"closing_amount"`
	PaymentsTotal  decimal.Decimal  `json:"payments_total"`
	EntriesIn      decimal.Decimal  `json:"entries_in"`
	EntriesOut     decimal.Decimal  `json:"entries_out"`
	ExpectedAmount decimal.Decimal  `json:"expected_amount"`
	Difference     *decimal.Decimal `json:"difference"`
}

type CashEntryResponse struct {
	ID            string          `json:"id"`
	CashSessionID string          `json:"cash_session_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     string          `json:"created_at"`
}

// OpenCashSummaryResponse is {"open": false} when no drawer is open.
type OpenCashSummaryResponse struct {
	Open           bool             `json:"open"`
	CashSessionID  *string          `json:"cash_session_id,omitempty"`
	OpenedAt       *string          `json:"opened_at,omitempty"`
	InitialAmount  *decimal.Decimal `json:"initial_amount,omitempty"`
	PaymentsTotal  *decimal.Decimal `json:"payments_total,omitempty"`
	EntriesIn      *decimal.Decimal `json:"entries_in,omitempty"`
	EntriesOut     *decimal.Decimal `json:"entries_out,omitempty"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
}

type CashSessionListResponse struct {
	Data  []CashSessionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
