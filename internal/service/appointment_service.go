package service

import (
	"context"
	"time"

	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/repository"

	"github.com/google/uuid"
)

type AppointmentService interface {
	Create(ctx context.Context, actor Actor, req dto.AppointmentRequest) (*dto.AppointmentResponse, error)
	List(ctx context.Context, actor Actor, filter dto.AppointmentFilter) ([]dto.AppointmentResponse, error)
	// SetStatus moves an appointment to any status except DONE, which is
	// only reached through sale registration.
	SetStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.AppointmentStatus) (*dto.AppointmentResponse, error)
	// Today lists the appointments starting on the current local day.
	Today(ctx context.Context, actor Actor) ([]dto.AppointmentResponse, error)
}

type appointmentService struct {
	repo         repository.AppointmentRepository
	customerRepo repository.CustomerRepository
	serviceRepo  repository.ServiceRepository
	loc          *time.Location
	now          func() time.Time
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	customerRepo repository.CustomerRepository,
	serviceRepo repository.ServiceRepository,
	loc *time.Location,
) AppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &appointmentService{repo: repo, customerRepo: customerRepo, serviceRepo: serviceRepo, loc: loc, now: time.Now}
}

func (s *appointmentService) Create(ctx context.Context, actor Actor, req dto.AppointmentRequest) (*dto.AppointmentResponse, error) {
	if !req.EndAt.After(req.StartAt) {
		return nil, apperror.Validation("O horário final deve ser posterior ao inicial.")
	}

	barberID := actor.UserID
	if actor.Privileged && req.BarberID != nil && *req.BarberID != "" {
		id, err := uuid.Parse(*req.BarberID)
		if err != nil {
			return nil, apperror.Validation("barber inválido")
		}
		barberID = id
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apperror.Validation("customer inválido")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperror.Validation("service inválido")
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, notFound("Cliente", err)
	}
	if _, err := s.serviceRepo.FindByID(ctx, nil, serviceID); err != nil {
		return nil, notFound("Serviço", err)
	}

	a := &model.Appointment{
		BarberID:   barberID,
		CustomerID: customerID,
		ServiceID:  serviceID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Status:     model.AppointmentScheduled,
		Notes:      req.Notes,
		CreatedBy:  actor.UserID,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	resp := appointmentToResponse(a)
	return &resp, nil
}

func (s *appointmentService) List(ctx context.Context, actor Actor, filter dto.AppointmentFilter) ([]dto.AppointmentResponse, error) {
	q := repository.AppointmentQuery{Status: model.AppointmentStatus(filter.Status)}
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperror.Validation("status inválido")
	}
	if filter.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", filter.Date, s.loc)
		if err != nil {
			return nil, apperror.Validation("date deve estar no formato YYYY-MM-DD")
		}
		q.From, q.To = day, day.AddDate(0, 0, 1)
	}
	if scope := actor.scope(); scope != nil {
		q.BarberID = scope
	} else if filter.BarberID != "" {
		id, err := uuid.Parse(filter.BarberID)
		if err != nil {
			return nil, apperror.Validation("barber inválido")
		}
		q.BarberID = &id
	}
	return s.list(ctx, q)
}

func (s *appointmentService) Today(ctx context.Context, actor Actor) ([]dto.AppointmentResponse, error) {
	from := startOfDay(s.now(), s.loc)
	return s.list(ctx, repository.AppointmentQuery{From: from, To: from.AddDate(0, 0, 1), BarberID: actor.scope()})
}

func (s *appointmentService) list(ctx context.Context, q repository.AppointmentQuery) ([]dto.AppointmentResponse, error) {
	appts, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, appointmentToResponse(&appts[i]))
	}
	return out, nil
}

func (s *appointmentService) SetStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.AppointmentStatus) (*dto.AppointmentResponse, error) {
	if !status.Valid() {
		return nil, apperror.Validation("status inválido")
	}
	if status == model.AppointmentDone {
		return nil, apperror.Validation("Use o registro de atendimento para concluir um agendamento.")
	}
	a, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFound("Agendamento", err)
	}
	if !actor.Privileged && a.BarberID != actor.UserID {
		return nil, apperror.Forbidden("Acesso negado a este agendamento.")
	}
	if a.Status == model.AppointmentDone {
		return nil, apperror.InvalidState("Agendamento já foi concluído.")
	}
	if err := s.repo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, err
	}
	a.Status = status
	resp := appointmentToResponse(a)
	return &resp, nil
}

func appointmentToResponse(a *model.Appointment) dto.AppointmentResponse {
	resp := dto.AppointmentResponse{
		ID:         a.ID.String(),
		BarberID:   a.BarberID.String(),
		CustomerID: a.CustomerID.String(),
		ServiceID:  a.ServiceID.String(),
		StartAt:    dto.FormatTime(a.StartAt),
		EndAt:      dto.FormatTime(a.EndAt),
		Status:     string(a.Status),
		Notes:      a.Notes,
		CreatedAt:  dto.FormatTime(a.CreatedAt),
	}
	if a.Barber != nil {
		resp.Barber = a.Barber.Username
	}
	if a.Customer != nil {
		resp.Customer = a.Customer.Name
	}
	if a.Service != nil {
		resp.Service = a.Service.Name
	}
	return resp
}
