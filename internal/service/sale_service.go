package service

import (
	"context"

	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/metrics"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleInput settles one already-persisted ServiceRecord.
type SaleInput struct {
	Record        *model.ServiceRecord
	PaymentMethod model.PaymentMethod
	PaymentAmount decimal.Decimal
	CreatedBy     uuid.UUID
}

type SaleService interface {
	// RegisterSale binds a payment to the open cash session, upserts the
	// barber's commission and marks the linked appointment DONE, all in one
	// transaction. Nothing is written when it fails.
	RegisterSale(ctx context.Context, in SaleInput) (*model.ServiceRecord, error)
	// RegisterSaleTx does the same inside the caller's transaction.
	RegisterSaleTx(ctx context.Context, tx *gorm.DB, in SaleInput) (*model.ServiceRecord, error)
}

type saleService struct {
	cashRepo        repository.CashRepository
	paymentRepo     repository.PaymentRepository
	appointmentRepo repository.AppointmentRepository
	commissions     CommissionService
	metrics         *metrics.Metrics
}

func NewSaleService(
	cashRepo repository.CashRepository,
	paymentRepo repository.PaymentRepository,
	appointmentRepo repository.AppointmentRepository,
	commissions CommissionService,
	m *metrics.Metrics,
) SaleService {
	return &saleService{
		cashRepo:        cashRepo,
		paymentRepo:     paymentRepo,
		appointmentRepo: appointmentRepo,
		commissions:     commissions,
		metrics:         m,
	}
}

// ── RegisterSale ──────────────────────────────────────────────────────────────
//   1. lock the open cash session (none -> NoOpenCashSession)
//   2. insert the Payment bound to it
//   3. compute + upsert the Commission
//   4. mark the linked appointment DONE

func (s *saleService) RegisterSale(ctx context.Context, in SaleInput) (*model.ServiceRecord, error) {
	if err := validateSale(in); err != nil {
		s.metrics.SaleFailed(apperror.KindOf(err).String())
		return nil, err
	}

	var sessionID uuid.UUID
	txErr := runTx(ctx, s.cashRepo.DB(), func(tx *gorm.DB) error {
		var err error
		sessionID, err = s.settle(ctx, tx, in)
		return err
	})
	if txErr != nil {
		err := classify(txErr)
		s.metrics.SaleFailed(apperror.KindOf(err).String())
		if apperror.Is(err, apperror.KindIntegrity) {
			log.Error().Err(txErr).Str("service_record_id", in.Record.ID.String()).Msg("sale rolled back")
		}
		return nil, err
	}

	s.metrics.SaleRegistered(string(in.PaymentMethod), in.PaymentAmount)
	log.Info().
		Str("service_record_id", in.Record.ID.String()).
		Str("cash_session_id", sessionID.String()).
		Str("method", string(in.PaymentMethod)).
		Str("amount", in.PaymentAmount.StringFixed(2)).
		Msg("sale registered")

	return in.Record, nil
}

func (s *saleService) RegisterSaleTx(ctx context.Context, tx *gorm.DB, in SaleInput) (*model.ServiceRecord, error) {
	if err := validateSale(in); err != nil {
		return nil, err
	}
	if _, err := s.settle(ctx, tx, in); err != nil {
		return nil, classify(err)
	}
	return in.Record, nil
}

func (s *saleService) settle(ctx context.Context, tx *gorm.DB, in SaleInput) (uuid.UUID, error) {
	rec := in.Record

	session, err := s.cashRepo.FindOpenSessionForUpdate(ctx, tx)
	if err != nil {
		return uuid.Nil, err
	}
	if session == nil {
		return uuid.Nil, apperror.ErrNoOpenCashSession
	}

	payment := &model.Payment{
		ServiceRecordID: rec.ID,
		Method:          in.PaymentMethod,
		Amount:          in.PaymentAmount,
		CashSessionID:   &session.ID,
		CreatedBy:       in.CreatedBy,
	}
	if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return uuid.Nil, err
	}

	if _, err := s.commissions.UpsertForRecord(ctx, tx, rec); err != nil {
		return uuid.Nil, err
	}

	if rec.AppointmentID != nil {
		if err := s.appointmentRepo.UpdateStatus(ctx, tx, *rec.AppointmentID, model.AppointmentDone); err != nil {
			return uuid.Nil, err
		}
	}
	return session.ID, nil
}

func validateSale(in SaleInput) error {
	if in.Record == nil || in.Record.ID == uuid.Nil {
		return apperror.Validation("Atendimento precisa estar salvo antes do pagamento.")
	}
	if !in.Record.PriceCharged.IsPositive() {
		return apperror.Validation("O valor cobrado deve ser maior que zero.")
	}
	if !in.PaymentAmount.IsPositive() {
		return apperror.Validation("O valor do pagamento deve ser maior que zero.")
	}
	if !in.PaymentMethod.Valid() {
		return apperror.Validation("Forma de pagamento inválida.")
	}
	return nil
}
