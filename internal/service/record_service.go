package service

import (
	"context"
	"errors"
	"time"

	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/metrics"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type RecordService interface {
	// Create persists the ServiceRecord and settles it in the same
	// transaction: either both the record and its payment exist, or neither.
	Create(ctx context.Context, actor Actor, req dto.CreateServiceRecordRequest) (*dto.ServiceRecordResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ServiceRecordResponse, error)
	List(ctx context.Context, actor Actor, filter dto.ServiceRecordFilter) (*dto.ServiceRecordListResponse, error)
	Today(ctx context.Context, actor Actor) (*dto.TodaySummaryResponse, error)
}

type recordService struct {
	repo            repository.ServiceRecordRepository
	serviceRepo     repository.ServiceRepository
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
	sales           SaleService
	metrics         *metrics.Metrics
	skew            time.Duration
	loc             *time.Location
	now             func() time.Time
}

func NewRecordService(
	repo repository.ServiceRecordRepository,
	serviceRepo repository.ServiceRepository,
	appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	sales SaleService,
	m *metrics.Metrics,
	skew time.Duration,
	loc *time.Location,
) RecordService {
	if loc == nil {
		loc = time.UTC
	}
	return &recordService{
		repo:            repo,
		serviceRepo:     serviceRepo,
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		sales:           sales,
		metrics:         m,
		skew:            skew,
		loc:             loc,
		now:             time.Now,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *recordService) Create(ctx context.Context, actor Actor, req dto.CreateServiceRecordRequest) (*dto.ServiceRecordResponse, error) {
	rec, svc, err := s.buildRecord(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	method := model.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, apperror.Validation("Forma de pagamento inválida.")
	}
	amount := rec.PriceCharged
	if req.PaymentAmount != nil {
		amount = *req.PaymentAmount
	}
	if !amount.IsPositive() {
		return nil, apperror.Validation("O valor do pagamento deve ser maior que zero.")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, rec); err != nil {
			return err
		}
		rec.Service = svc
		_, err := s.sales.RegisterSaleTx(ctx, tx, SaleInput{
			Record:        rec,
			PaymentMethod: method,
			PaymentAmount: amount,
			CreatedBy:     actor.UserID,
		})
		return err
	})
	if txErr != nil {
		err := classify(txErr)
		s.metrics.SaleFailed(apperror.KindOf(err).String())
		if apperror.Is(err, apperror.KindIntegrity) {
			log.Error().Err(txErr).Str("barber_id", rec.BarberID.String()).Msg("service record rolled back")
		}
		return nil, err
	}

	s.metrics.SaleRegistered(string(method), amount)
	log.Info().
		Str("service_record_id", rec.ID.String()).
		Str("barber_id", rec.BarberID.String()).
		Str("service", svc.Name).
		Str("method", string(method)).
		Str("amount", amount.StringFixed(2)).
		Msg("service record created")

	saved, err := s.repo.FindByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	resp := recordToResponse(saved)
	return &resp, nil
}

func (s *recordService) buildRecord(ctx context.Context, actor Actor, req dto.CreateServiceRecordRequest) (*model.ServiceRecord, *model.Service, error) {
	// Barbers always record for themselves.
	barberID := actor.UserID
	if actor.Privileged && req.BarberID != nil && *req.BarberID != "" {
		id, err := uuid.Parse(*req.BarberID)
		if err != nil {
			return nil, nil, apperror.Validation("barber inválido")
		}
		barber, err := s.userRepo.FindByID(ctx, id)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		if err != nil || !barber.Active {
			return nil, nil, apperror.Validation("barber inexistente ou inativo")
		}
		barberID = id
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, nil, apperror.Validation("service inválido")
	}
	svc, err := s.serviceRepo.FindByID(ctx, nil, serviceID)
	if err != nil {
		return nil, nil, notFound("Serviço", err)
	}
	if !svc.Active {
		return nil, nil, apperror.Validation("Serviço inativo.")
	}

	if !req.PriceCharged.IsPositive() {
		return nil, nil, apperror.Validation("O valor cobrado deve ser maior que zero.")
	}

	now := s.now()
	performedAt := now
	if req.PerformedAt != nil {
		performedAt = *req.PerformedAt
	}
	if performedAt.After(now.Add(s.skew)) {
		return nil, nil, apperror.Validation("Data do atendimento não pode estar no futuro.")
	}

	rec := &model.ServiceRecord{
		BarberID:     barberID,
		ServiceID:    serviceID,
		PriceCharged: req.PriceCharged,
		PerformedAt:  performedAt,
		Notes:        req.Notes,
	}
	if req.CustomerID != nil && *req.CustomerID != "" {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, nil, apperror.Validation("customer inválido")
		}
		rec.CustomerID = &id
	}
	if req.AppointmentID != nil && *req.AppointmentID != "" {
		id, err := uuid.Parse(*req.AppointmentID)
		if err != nil {
			return nil, nil, apperror.Validation("appointment inválido")
		}
		appt, err := s.appointmentRepo.FindByID(ctx, nil, id)
		if err != nil {
			return nil, nil, notFound("Agendamento", err)
		}
		if !actor.Privileged && appt.BarberID != barberID {
			return nil, nil, apperror.Forbidden("Agendamento de outro barbeiro.")
		}
		switch appt.Status {
		case model.AppointmentCanceled:
			return nil, nil, apperror.InvalidState("Agendamento cancelado não pode ser atendido.")
		case model.AppointmentDone:
			return nil, nil, apperror.InvalidState("Agendamento já concluído.")
		}
		// The unique index on appointment_id still settles concurrent creates.
		exists, err := s.repo.ExistsForAppointment(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			return nil, nil, apperror.InvalidState("Agendamento já possui atendimento.")
		}
		rec.AppointmentID = &id
		if rec.CustomerID == nil {
			rec.CustomerID = &appt.CustomerID
		}
	}
	return rec, svc, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *recordService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ServiceRecordResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Atendimento", err)
	}
	if !actor.Privileged && rec.BarberID != actor.UserID {
		return nil, apperror.Forbidden("Acesso negado a este atendimento.")
	}
	resp := recordToResponse(rec)
	return &resp, nil
}

func (s *recordService) List(ctx context.Context, actor Actor, filter dto.ServiceRecordFilter) (*dto.ServiceRecordListResponse, error) {
	if scope := actor.scope(); scope != nil {
		filter.BarberID = scope.String()
	}
	if err := validateIDs(filter.BarberID, filter.ServiceID, filter.CustomerID); err != nil {
		return nil, err
	}
	if err := validateDates(filter.From, filter.To); err != nil {
		return nil, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.ServiceRecordListResponse{Data: make([]dto.ServiceRecordResponse, 0, len(records)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range records {
		out.Data = append(out.Data, recordToResponse(&records[i]))
	}
	return out, nil
}

func (s *recordService) Today(ctx context.Context, actor Actor) (*dto.TodaySummaryResponse, error) {
	total, count, err := s.repo.Totals(ctx, startOfDay(s.now(), s.loc), actor.scope())
	if err != nil {
		return nil, err
	}
	return &dto.TodaySummaryResponse{Total: total, Count: count}, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func startOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func recordToResponse(r *model.ServiceRecord) dto.ServiceRecordResponse {
	resp := dto.ServiceRecordResponse{
		ID:           r.ID.String(),
		BarberID:     r.BarberID.String(),
		ServiceID:    r.ServiceID.String(),
		PriceCharged: r.PriceCharged,
		PerformedAt:  dto.FormatTime(r.PerformedAt),
		Notes:        r.Notes,
		CreatedAt:    dto.FormatTime(r.CreatedAt),
	}
	if r.Barber != nil {
		resp.BarberUsername = r.Barber.Username
	}
	if r.Service != nil {
		resp.ServiceName = r.Service.Name
	}
	if r.CustomerID != nil {
		id := r.CustomerID.String()
		resp.CustomerID = &id
	}
	if r.Customer != nil {
		name := r.Customer.Name
		resp.CustomerName = &name
	}
	if r.AppointmentID != nil {
		id := r.AppointmentID.String()
		resp.AppointmentID = &id
	}
	if r.Payment != nil {
		method := string(r.Payment.Method)
		amount := r.Payment.Amount
		resp.PaymentMethod = &method
		resp.PaymentAmount = &amount
	}
	if r.Commission != nil {
		amount := r.Commission.CommissionAmount
		resp.CommissionAmount = &amount
	}
	return resp
}
