package service

import (
	"context"
	"time"

	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/repository"
)

type DashboardService interface {
	Summary(ctx context.Context, actor Actor) (*dto.DashboardSummaryResponse, error)
	// RevenueByMonth returns one point per month with revenue, covering the
	// last months calendar months including the current one.
	RevenueByMonth(ctx context.Context, actor Actor, months int) (*dto.RevenueByMonthResponse, error)
}

const (
	defaultRevenueMonths = 12
	maxRevenueMonths     = 36
)

type dashboardService struct {
	recordRepo     repository.ServiceRecordRepository
	paymentRepo    repository.PaymentRepository
	commissionRepo repository.CommissionRepository
	appointments   AppointmentService
	loc            *time.Location
	now            func() time.Time
}

func NewDashboardService(
	recordRepo repository.ServiceRecordRepository,
	paymentRepo repository.PaymentRepository,
	commissionRepo repository.CommissionRepository,
	appointments AppointmentService,
	loc *time.Location,
) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{
		recordRepo:     recordRepo,
		paymentRepo:    paymentRepo,
		commissionRepo: commissionRepo,
		appointments:   appointments,
		loc:            loc,
		now:            time.Now,
	}
}

// Summary aggregates revenue for today and the current month in the shop's
// timezone. Barbers only see their own numbers.
func (s *dashboardService) Summary(ctx context.Context, actor Actor) (*dto.DashboardSummaryResponse, error) {
	now := s.now()
	today := startOfDay(now, s.loc)
	month := startOfMonth(now, s.loc)
	scope := actor.scope()

	todayTotal, _, err := s.recordRepo.Totals(ctx, today, scope)
	if err != nil {
		return nil, err
	}
	monthTotal, _, err := s.recordRepo.Totals(ctx, month, scope)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.paymentRepo.SumByMethod(ctx, month, scope)
	if err != nil {
		return nil, err
	}
	daily, err := s.recordRepo.DailySeries(ctx, month, scope, s.loc.String())
	if err != nil {
		return nil, err
	}
	// The ranking compares barbers, so only privileged callers get it.
	var ranking []repository.BarberTotal
	if actor.Privileged {
		if ranking, err = s.recordRepo.BarberRanking(ctx, month); err != nil {
			return nil, err
		}
	}
	commissions, err := s.commissionRepo.SumSince(ctx, month, scope)
	if err != nil {
		return nil, err
	}
	appts, err := s.appointments.Today(ctx, actor)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardSummaryResponse{
		Timezone:              s.loc.String(),
		TodayTotal:            todayTotal,
		MonthTotal:            monthTotal,
		DailySeries:           periodsToDTO(daily),
		BarberRanking:         make([]dto.BarberRevenue, 0, len(ranking)),
		PaymentsByMethod:      make([]dto.MethodTotal, 0, len(byMethod)),
		MonthCommissionsTotal: commissions,
		TodaysAppointments:    appts,
	}
	for _, m := range byMethod {
		resp.PaymentsByMethod = append(resp.PaymentsByMethod, dto.MethodTotal{Method: string(m.Method), Total: m.Total})
	}
	for _, b := range ranking {
		resp.BarberRanking = append(resp.BarberRanking, dto.BarberRevenue{
			BarberID:       b.BarberID.String(),
			BarberUsername: b.Username,
			Total:          b.Total,
		})
	}
	return resp, nil
}

func (s *dashboardService) RevenueByMonth(ctx context.Context, actor Actor, months int) (*dto.RevenueByMonthResponse, error) {
	if months == 0 {
		months = defaultRevenueMonths
	}
	if months < 0 || months > maxRevenueMonths {
		return nil, apperror.Validation("months deve estar entre 1 e 36")
	}
	since := startOfMonth(s.now(), s.loc).AddDate(0, -(months - 1), 0)
	series, err := s.recordRepo.MonthlySeries(ctx, since, actor.scope(), s.loc.String())
	if err != nil {
		return nil, err
	}
	return &dto.RevenueByMonthResponse{Timezone: s.loc.String(), Series: periodsToDTO(series)}, nil
}

func periodsToDTO(rows []repository.PeriodTotal) []dto.PeriodTotal {
	out := make([]dto.PeriodTotal, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PeriodTotal{Period: r.Period, Total: r.Total})
	}
	return out
}
