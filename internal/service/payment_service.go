package service

import (
	"context"

	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/repository"

	"github.com/google/uuid"
)

// PaymentService is the read side of payments. Payments are only ever
// written by SaleService.
type PaymentService interface {
	List(ctx context.Context, filter dto.PaymentFilter) (*dto.PaymentListResponse, error)
}

type paymentService struct {
	repo repository.PaymentRepository
}

func NewPaymentService(repo repository.PaymentRepository) PaymentService {
	return &paymentService{repo: repo}
}

func (s *paymentService) List(ctx context.Context, filter dto.PaymentFilter) (*dto.PaymentListResponse, error) {
	if filter.Method != "" && !model.PaymentMethod(filter.Method).Valid() {
		return nil, apperror.Validation("method inválido")
	}
	if filter.CashSessionID != "" {
		if _, err := uuid.Parse(filter.CashSessionID); err != nil {
			return nil, apperror.Validation("cash_session inválido")
		}
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.PaymentListResponse{Data: make([]dto.PaymentResponse, 0, len(payments)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range payments {
		out.Data = append(out.Data, paymentToResponse(&payments[i]))
	}
	return out, nil
}

func paymentToResponse(p *model.Payment) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:              p.ID.String(),
		ServiceRecordID: p.ServiceRecordID.String(),
		Method:          string(p.Method),
		Amount:          p.Amount,
		CreatedBy:       p.CreatedBy.String(),
		CreatedAt:       dto.FormatTime(p.CreatedAt),
	}
	if p.CashSessionID != nil {
		id := p.CashSessionID.String()
		resp.CashSessionID = &id
	}
	return resp
}
