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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	errCashAlreadyOpen   = apperror.InvalidState("Já existe um caixa aberto.")
	errCashAlreadyClosed = apperror.InvalidState("Caixa já está fechado.")
	errCashClosed        = apperror.InvalidState("Caixa está fechado.")
)

type CashService interface {
	Open(ctx context.Context, openedBy uuid.UUID, req dto.OpenCashRequest) (*dto.CashSessionResponse, error)
	// GetOpen returns the newest open session, or nil when the drawer is closed.
	GetOpen(ctx context.Context) (*model.CashSession, error)
	OpenSummary(ctx context.Context) (*dto.OpenCashSummaryResponse, error)
	Close(ctx context.Context, sessionID, closedBy uuid.UUID, req dto.CloseCashRequest) (*dto.CashSessionResponse, error)
	RecordEntry(ctx context.Context, createdBy uuid.UUID, req dto.CashEntryRequest) (*dto.CashEntryResponse, error)
	// ExpectedBalance is initial + payments + IN − OUT, for open and closed sessions alike.
	ExpectedBalance(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
	Report(ctx context.Context, sessionID uuid.UUID) (*dto.CashSessionResponse, error)
	List(ctx context.Context, page, limit int) (*dto.CashSessionListResponse, error)
	ListEntries(ctx context.Context, sessionID uuid.UUID) ([]dto.CashEntryResponse, error)
}

type cashService struct {
	repo    repository.CashRepository
	metrics *metrics.Metrics
}

func NewCashService(repo repository.CashRepository, m *metrics.Metrics) CashService {
	return &cashService{repo: repo, metrics: m}
}

// balance is the breakdown behind an expected amount.
type balance struct {
	payments decimal.Decimal
	in       decimal.Decimal
	out      decimal.Decimal
	expected decimal.Decimal
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *cashService) Open(ctx context.Context, openedBy uuid.UUID, req dto.OpenCashRequest) (*dto.CashSessionResponse, error) {
	if req.InitialAmount.IsNegative() {
		return nil, apperror.Validation("Valor inicial não pode ser negativo.")
	}

	// Guard: one open session at a time. The partial unique index on
	// cash_sessions catches the race between two concurrent opens.
	existing, err := s.repo.FindOpenSession(ctx, nil)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errCashAlreadyOpen
	}

	session := &model.CashSession{
		OpenedBy:      openedBy,
		OpenedAt:      time.Now(),
		InitialAmount: req.InitialAmount,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errCashAlreadyOpen
		}
		return nil, err
	}

	s.metrics.CashOpened()
	log.Info().
		Str("cash_session_id", session.ID.String()).
		Str("opened_by", openedBy.String()).
		Str("initial_amount", session.InitialAmount.StringFixed(2)).
		Msg("cash session opened")

	return sessionToResponse(session, balance{expected: session.InitialAmount}), nil
}

func (s *cashService) GetOpen(ctx context.Context) (*model.CashSession, error) {
	return s.repo.FindOpenSession(ctx, nil)
}

func (s *cashService) OpenSummary(ctx context.Context) (*dto.OpenCashSummaryResponse, error) {
	session, err := s.repo.FindOpenSession(ctx, nil)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &dto.OpenCashSummaryResponse{Open: false}, nil
	}
	b, err := s.balance(ctx, nil, session)
	if err != nil {
		return nil, err
	}
	id := session.ID.String()
	openedAt := dto.FormatTime(session.OpenedAt)
	return &dto.OpenCashSummaryResponse{
		Open:           true,
		CashSessionID:  &id,
		OpenedAt:       &openedAt,
		InitialAmount:  &session.InitialAmount,
		PaymentsTotal:  &b.payments,
		EntriesIn:      &b.in,
		EntriesOut:     &b.out,
		ExpectedAmount: &b.expected,
	}, nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Terminal. The row is locked so a sale in flight either commits before the
// close or sees the session closed.

func (s *cashService) Close(ctx context.Context, sessionID, closedBy uuid.UUID, req dto.CloseCashRequest) (*dto.CashSessionResponse, error) {
	if req.ClosingAmount == nil {
		return nil, apperror.Validation("Informe o valor de fechamento.")
	}
	if req.ClosingAmount.IsNegative() {
		return nil, apperror.Validation("Valor de fechamento não pode ser negativo.")
	}

	var session *model.CashSession
	var b balance
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		session, err = s.repo.FindSessionByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return notFound("Caixa", err)
		}
		if !session.IsOpen() {
			return errCashAlreadyClosed
		}
		if b, err = s.balance(ctx, tx, session); err != nil {
			return err
		}

		now := time.Now()
		closing := *req.ClosingAmount
		difference := closing.Sub(b.expected)
		expected := b.expected
		session.ClosedBy = &closedBy
		session.ClosedAt = &now
		session.ClosingAmount = &closing
		session.ExpectedAmount = &expected
		session.Difference = &difference
		return s.repo.UpdateSession(ctx, tx, session)
	})
	if txErr != nil {
		return nil, classify(txErr)
	}

	s.metrics.CashClosed(*session.Difference)
	log.Info().
		Str("cash_session_id", session.ID.String()).
		Str("closed_by", closedBy.String()).
		Str("expected_amount", session.ExpectedAmount.StringFixed(2)).
		Str("difference", session.Difference.StringFixed(2)).
		Msg("cash session closed")

	return sessionToResponse(session, b), nil
}

// ── RecordEntry ───────────────────────────────────────────────────────────────
// Manual IN / OUT. Entries are append-only and only land on an open session.

func (s *cashService) RecordEntry(ctx context.Context, createdBy uuid.UUID, req dto.CashEntryRequest) (*dto.CashEntryResponse, error) {
	sessionID, err := uuid.Parse(req.CashSessionID)
	if err != nil {
		return nil, apperror.Validation("cash_session_id inválido")
	}
	entryType := model.CashEntryType(req.Type)
	if entryType != model.CashEntryIn && entryType != model.CashEntryOut {
		return nil, apperror.Validation("Tipo deve ser IN ou OUT.")
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.Validation("Valor deve ser maior que zero.")
	}

	entry := &model.CashEntry{
		CashSessionID: sessionID,
		Type:          entryType,
		Amount:        req.Amount,
		Description:   req.Description,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now(),
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		session, err := s.repo.FindSessionByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return notFound("Caixa", err)
		}
		if !session.IsOpen() {
			return errCashClosed
		}
		return s.repo.CreateEntry(ctx, tx, entry)
	})
	if txErr != nil {
		return nil, classify(txErr)
	}

	log.Info().
		Str("cash_session_id", sessionID.String()).
		Str("type", string(entryType)).
		Str("amount", entry.Amount.StringFixed(2)).
		Msg("cash entry recorded")

	resp := entryToResponse(entry)
	return &resp, nil
}

// ── Balance / reports ─────────────────────────────────────────────────────────

func (s *cashService) ExpectedBalance(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return decimal.Zero, notFound("Caixa", err)
	}
	b, err := s.balance(ctx, nil, session)
	if err != nil {
		return decimal.Zero, err
	}
	return b.expected, nil
}

func (s *cashService) Report(ctx context.Context, sessionID uuid.UUID) (*dto.CashSessionResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, notFound("Caixa", err)
	}
	b, err := s.balance(ctx, nil, session)
	if err != nil {
		return nil, err
	}
	return sessionToResponse(session, b), nil
}

func (s *cashService) List(ctx context.Context, page, limit int) (*dto.CashSessionListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	sessions, total, err := s.repo.ListSessions(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	out := &dto.CashSessionListResponse{Data: make([]dto.CashSessionResponse, 0, len(sessions)), Total: total, Page: page, Limit: limit}
	for i := range sessions {
		b, err := s.balance(ctx, nil, &sessions[i])
		if err != nil {
			return nil, err
		}
		out.Data = append(out.Data, *sessionToResponse(&sessions[i], b))
	}
	return out, nil
}

func (s *cashService) ListEntries(ctx context.Context, sessionID uuid.UUID) ([]dto.CashEntryResponse, error) {
	if _, err := s.repo.FindSessionByID(ctx, sessionID); err != nil {
		return nil, notFound("Caixa", err)
	}
	entries, err := s.repo.ListEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CashEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, entryToResponse(&entries[i]))
	}
	return out, nil
}

func (s *cashService) balance(ctx context.Context, tx *gorm.DB, session *model.CashSession) (balance, error) {
	var b balance
	var err error
	if b.payments, err = s.repo.SumPayments(ctx, tx, session.ID); err != nil {
		return b, err
	}
	if b.in, err = s.repo.SumEntries(ctx, tx, session.ID, model.CashEntryIn); err != nil {
		return b, err
	}
	if b.out, err = s.repo.SumEntries(ctx, tx, session.ID, model.CashEntryOut); err != nil {
		return b, err
	}
	b.expected = session.InitialAmount.Add(b.payments).Add(b.in).Sub(b.out)
	return b, nil
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func sessionToResponse(s *model.CashSession, b balance) *dto.CashSessionResponse {
	resp := &dto.CashSessionResponse{
		ID:             s.ID.String(),
		Open:           s.IsOpen(),
		OpenedBy:       s.OpenedBy.String(),
		OpenedAt:       dto.FormatTime(s.OpenedAt),
		InitialAmount:  s.InitialAmount,
		ClosedAt:       dto.FormatTimePtr(s.ClosedAt),
		ClosingAmount:  s.ClosingAmount,
		PaymentsTotal:  b.payments,
		EntriesIn:      b.in,
		EntriesOut:     b.out,
		ExpectedAmount: b.expected,
		Difference:     s.Difference,
	}
	if s.ClosedBy != nil {
		by := s.ClosedBy.String()
		resp.ClosedBy = &by
	}
	return resp
}

func entryToResponse(e *model.CashEntry) dto.CashEntryResponse {
	return dto.CashEntryResponse{
		ID:            e.ID.String(),
		CashSessionID: e.CashSessionID.String(),
		Type:          string(e.Type),
		Amount:        e.Amount,
		Description:   e.Description,
		CreatedBy:     e.CreatedBy.String(),
		CreatedAt:     dto.FormatTime(e.CreatedAt),
	}
}
