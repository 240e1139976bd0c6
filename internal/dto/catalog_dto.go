package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Services ────────────────────────────────────────────────────────────────

type ServiceRequest struct {
	Name                     string           `json:"name"                       validate:"required,min=2,max=120"`
	DefaultPrice             decimal.Decimal  `json:"default_price"              validate:"min=0"`
	DefaultCommissionPercent *decimal.Decimal `json:"default_commission_percent" validate:"omitempty,min=0,max=100"`
	Active                   *bool            `json:"active"`
}

type ServiceResponse struct {
	ID                       string          `json:"id"`
	Name                     string          `json:"name"`
	DefaultPrice             decimal.Decimal `json:"default_price"`
	DefaultCommissionPercent decimal.Decimal `json:"default_commission_percent"`
	Active                   bool            `json:"active"`
}

// ─── Customers ───────────────────────────────────────────────────────────────

type CustomerRequest struct {
	Name  string `json:"name"  validate:"required,min=2,max=120"`
	Phone string `json:"phone" validate:"max=30"`
	Email string `json:"email" validate:"omitempty,email"`
	Notes string `json:"notes" validate:"max=255"`
}

type CustomerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

// ─── Appointments ────────────────────────────────────────────────────────────

type AppointmentRequest struct {
	BarberID   *string   `json:"barber"   validate:"omitempty,uuid"`
	CustomerID string    `json:"customer" validate:"required,uuid"`
	ServiceID  string    `json:"service"  validate:"required,uuid"`
	StartAt    time.Time `json:"start_at" validate:"required"`
	EndAt      time.Time `json:"end_at"   validate:"required"`
	Notes      string    `json:"notes"    validate:"max=255"`
}

type AppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SCHEDULED CONFIRMED DONE NO_SHOW CANCELED"`
}

type AppointmentFilter struct {
	Date     string `form:"date"` // YYYY-MM-DD
	BarberID string `form:"barber"`
	Status   string `form:"status"`
}

type AppointmentResponse struct {
	ID         string `json:"id"`
	BarberID   string `json:"barber"`
	Barber     string `json:"barber_username,omitempty"`
	CustomerID string `json:"customer"`
	Customer   string `json:"customer_name,omitempty"`
	ServiceID  string `json:"service"`
	Service    string `json:"service_name,omitempty"`
	StartAt    string `json:"start_at"`
	EndAt      string `json:"end_at"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
	CreatedAt  string `json:"created_at"`
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

type MethodTotal struct {
	Method string          `json:"method"`
	Total  decimal.Decimal `json:"total"`
}

// PeriodTotal is one point of a revenue chart: a local day (YYYY-MM-DD) or
// month (YYYY-MM).
type PeriodTotal struct {
	Period string          `json:"period"`
	Total  decimal.Decimal `json:"total"`
}

type BarberRevenue struct {
	BarberID       string          `json:"barber"`
	BarberUsername string          `json:"barber_username"`
	Total          decimal.Decimal `json:"total"`
}

type DashboardSummaryResponse struct {
	Timezone              string                `json:"timezone"`
	TodayTotal            decimal.Decimal       `json:"today_total"`
	MonthTotal            decimal.Decimal       `json:"month_total"`
	DailySeries           []PeriodTotal         `json:"daily_series"`
	BarberRanking         []BarberRevenue       `json:"barber_ranking"` // empty for barbers
	PaymentsByMethod      []MethodTotal         `json:"payments_by_method"`
	MonthCommissionsTotal decimal.Decimal       `json:"month_commissions_total"`
	TodaysAppointments    []AppointmentResponse `json:"todays_appointments"`
}

type RevenueByMonthQuery struct {
	Months int `form:"months"` // default 12, max 36
}

type RevenueByMonthResponse struct {
	Timezone string        `json:"timezone"`
	Series   []PeriodTotal `json:"series"`
}

// FormatTime renders timestamps the same way across all responses.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTimePtr is FormatTime for optional timestamps.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}
