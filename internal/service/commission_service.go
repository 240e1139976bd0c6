package service

import (
	"context"

	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Commission sources reported by the preview endpoint.
const (
	SourceFixed          = "fixed"
	SourceRulePercent    = "rule_percent"
	SourceServiceDefault = "service_default"
)

var hundred = decimal.NewFromInt(100)

type CommissionService interface {
	// ResolveRule returns the active rule for exactly (barberID, serviceID),
	// or nil when the service default applies.
	ResolveRule(ctx context.Context, tx *gorm.DB, barberID, serviceID uuid.UUID) (*model.CommissionRule, error)
	// Compute returns the commission for one performed service.
	Compute(ctx context.Context, tx *gorm.DB, barberID uuid.UUID, svc *model.Service, price decimal.Decimal) (decimal.Decimal, error)
	ComputeForPair(ctx context.Context, req dto.CommissionPreviewRequest) (*dto.CommissionPreviewResponse, error)
	// UpsertForRecord computes and stores the commission of rec inside tx.
	UpsertForRecord(ctx context.Context, tx *gorm.DB, rec *model.ServiceRecord) (*model.Commission, error)
	Recalculate(ctx context.Context, recordID uuid.UUID) (*dto.CommissionResponse, error)
	List(ctx context.Context, actor Actor, filter dto.CommissionFilter) (*dto.CommissionListResponse, error)

	SaveRule(ctx context.Context, req dto.CommissionRuleRequest) (*dto.CommissionRuleResponse, error)
	UpdateRule(ctx context.Context, id uuid.UUID, req dto.CommissionRuleRequest) (*dto.CommissionRuleResponse, error)
	DeactivateRule(ctx context.Context, id uuid.UUID) error
	ListRules(ctx context.Context, barberID *uuid.UUID) ([]dto.CommissionRuleResponse, error)
}

type commissionService struct {
	repo        repository.CommissionRepository
	serviceRepo repository.ServiceRepository
	recordRepo  repository.ServiceRecordRepository
}

func NewCommissionService(
	repo repository.CommissionRepository,
	serviceRepo repository.ServiceRepository,
	recordRepo repository.ServiceRecordRepository,
) CommissionService {
	return &commissionService{repo: repo, serviceRepo: serviceRepo, recordRepo: recordRepo}
}

// ── Resolver ──────────────────────────────────────────────────────────────────

func (s *commissionService) ResolveRule(ctx context.Context, tx *gorm.DB, barberID, serviceID uuid.UUID) (*model.CommissionRule, error) {
	rule, err := s.repo.FindActiveRule(ctx, tx, barberID, serviceID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, nil
	}
	if rule.BarberID != barberID || rule.ServiceID != serviceID {
		return nil, apperror.InvalidState("Regra de comissão não corresponde ao barbeiro e serviço informados.")
	}
	return rule, nil
}

// ── Calculator ────────────────────────────────────────────────────────────────

func (s *commissionService) Compute(ctx context.Context, tx *gorm.DB, barberID uuid.UUID, svc *model.Service, price decimal.Decimal) (decimal.Decimal, error) {
	rule, err := s.ResolveRule(ctx, tx, barberID, svc.ID)
	if err != nil {
		return decimal.Zero, err
	}
	amount, _, err := commissionFor(rule, svc.DefaultCommissionPercent, price)
	return amount, err
}

// commissionFor applies the precedence fixed amount > rule percent > service
// default. Percent results are rounded to cents, half away from zero.
func commissionFor(rule *model.CommissionRule, defaultPercent, price decimal.Decimal) (decimal.Decimal, string, error) {
	if price.IsNegative() {
		return decimal.Zero, "", apperror.Validation("O valor cobrado não pode ser negativo.")
	}
	if rule != nil && rule.FixedAmount != nil {
		if rule.FixedAmount.IsNegative() {
			return decimal.Zero, "", apperror.Validation("Comissão fixa não pode ser negativa.")
		}
		return *rule.FixedAmount, SourceFixed, nil
	}
	percent, source := defaultPercent, SourceServiceDefault
	if rule != nil && rule.Percent != nil {
		percent, source = *rule.Percent, SourceRulePercent
	}
	if err := validatePercent(percent); err != nil {
		return decimal.Zero, "", err
	}
	return price.Mul(percent).Div(hundred).Round(2), source, nil
}

func validatePercent(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return apperror.Validation("Percentual de comissão deve estar entre 0 e 100.")
	}
	return nil
}

func (s *commissionService) ComputeForPair(ctx context.Context, req dto.CommissionPreviewRequest) (*dto.CommissionPreviewResponse, error) {
	barberID, err := uuid.Parse(req.BarberID)
	if err != nil {
		return nil, apperror.Validation("barber inválido")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperror.Validation("service inválido")
	}
	svc, err := s.serviceRepo.FindByID(ctx, nil, serviceID)
	if err != nil {
		return nil, notFound("Serviço", err)
	}
	rule, err := s.ResolveRule(ctx, nil, barberID, serviceID)
	if err != nil {
		return nil, err
	}
	amount, source, err := commissionFor(rule, svc.DefaultCommissionPercent, req.Price)
	if err != nil {
		return nil, err
	}
	return &dto.CommissionPreviewResponse{Amount: amount, Source: source}, nil
}

// ── Upsert / Recalculate ──────────────────────────────────────────────────────

func (s *commissionService) UpsertForRecord(ctx context.Context, tx *gorm.DB, rec *model.ServiceRecord) (*model.Commission, error) {
	svc := rec.Service
	if svc == nil || svc.ID != rec.ServiceID {
		var err error
		if svc, err = s.serviceRepo.FindByID(ctx, tx, rec.ServiceID); err != nil {
			return nil, err
		}
	}
	amount, err := s.Compute(ctx, tx, rec.BarberID, svc, rec.PriceCharged)
	if err != nil {
		return nil, err
	}
	c := &model.Commission{
		ServiceRecordID:  rec.ID,
		BarberID:         rec.BarberID,
		BaseAmount:       rec.PriceCharged,
		CommissionAmount: amount,
	}
	if err := s.repo.Upsert(ctx, tx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commissionService) Recalculate(ctx context.Context, recordID uuid.UUID) (*dto.CommissionResponse, error) {
	rec, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, notFound("Atendimento", err)
	}

	var c *model.Commission
	txErr := runTx(ctx, s.recordRepo.DB(), func(tx *gorm.DB) error {
		var err error
		c, err = s.UpsertForRecord(ctx, tx, rec)
		return err
	})
	if txErr != nil {
		return nil, classify(txErr)
	}

	log.Info().
		Str("service_record_id", rec.ID.String()).
		Str("commission_amount", c.CommissionAmount.StringFixed(2)).
		Msg("commission recalculated")

	c.Barber = rec.Barber
	resp := commissionToResponse(c)
	return &resp, nil
}

func (s *commissionService) List(ctx context.Context, actor Actor, filter dto.CommissionFilter) (*dto.CommissionListResponse, error) {
	if scope := actor.scope(); scope != nil {
		filter.BarberID = scope.String()
	}
	if err := validateIDs(filter.BarberID); err != nil {
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
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.CommissionListResponse{Data: make([]dto.CommissionResponse, 0, len(rows)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range rows {
		out.Data = append(out.Data, commissionToResponse(&rows[i]))
	}
	return out, nil
}

// ── Rules ─────────────────────────────────────────────────────────────────────

func (s *commissionService) SaveRule(ctx context.Context, req dto.CommissionRuleRequest) (*dto.CommissionRuleResponse, error) {
	barberID, serviceID, err := s.parseRulePair(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := validateRuleValues(req.Percent, req.FixedAmount); err != nil {
		return nil, err
	}
	rule := &model.CommissionRule{
		BarberID:    barberID,
		ServiceID:   serviceID,
		Percent:     req.Percent,
		FixedAmount: req.FixedAmount,
		Active:      req.Active == nil || *req.Active,
	}
	if err := s.repo.SaveRule(ctx, rule); err != nil {
		return nil, err
	}
	resp := ruleToResponse(rule)
	return &resp, nil
}

func (s *commissionService) UpdateRule(ctx context.Context, id uuid.UUID, req dto.CommissionRuleRequest) (*dto.CommissionRuleResponse, error) {
	rule, err := s.repo.FindRuleByID(ctx, id)
	if err != nil {
		return nil, notFound("Regra de comissão", err)
	}
	barberID, serviceID, err := s.parseRulePair(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := validateRuleValues(req.Percent, req.FixedAmount); err != nil {
		return nil, err
	}
	rule.BarberID = barberID
	rule.ServiceID = serviceID
	rule.Percent = req.Percent
	rule.FixedAmount = req.FixedAmount
	if req.Active != nil {
		rule.Active = *req.Active
	}
	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	resp := ruleToResponse(rule)
	return &resp, nil
}

func (s *commissionService) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	rule, err := s.repo.FindRuleByID(ctx, id)
	if err != nil {
		return notFound("Regra de comissão", err)
	}
	rule.Active = false
	return s.repo.UpdateRule(ctx, rule)
}

func (s *commissionService) ListRules(ctx context.Context, barberID *uuid.UUID) ([]dto.CommissionRuleResponse, error) {
	rules, err := s.repo.ListRules(ctx, barberID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommissionRuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, ruleToResponse(&rules[i]))
	}
	return out, nil
}

func (s *commissionService) parseRulePair(ctx context.Context, req dto.CommissionRuleRequest) (uuid.UUID, uuid.UUID, error) {
	barberID, err := uuid.Parse(req.BarberID)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.Validation("barber inválido")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.Validation("service inválido")
	}
	if _, err := s.serviceRepo.FindByID(ctx, nil, serviceID); err != nil {
		return uuid.Nil, uuid.Nil, notFound("Serviço", err)
	}
	return barberID, serviceID, nil
}

func validateRuleValues(percent, fixed *decimal.Decimal) error {
	if percent == nil && fixed == nil {
		return apperror.Validation("Informe percentual ou valor fixo.")
	}
	if percent != nil {
		if err := validatePercent(*percent); err != nil {
			return err
		}
	}
	if fixed != nil && fixed.IsNegative() {
		return apperror.Validation("Comissão fixa não pode ser negativa.")
	}
	return nil
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func ruleToResponse(r *model.CommissionRule) dto.CommissionRuleResponse {
	return dto.CommissionRuleResponse{
		ID:          r.ID.String(),
		BarberID:    r.BarberID.String(),
		ServiceID:   r.ServiceID.String(),
		Percent:     r.Percent,
		FixedAmount: r.FixedAmount,
		Active:      r.Active,
	}
}

func commissionToResponse(c *model.Commission) dto.CommissionResponse {
	resp := dto.CommissionResponse{
		ID:               c.ID.String(),
		ServiceRecordID:  c.ServiceRecordID.String(),
		BarberID:         c.BarberID.String(),
		BaseAmount:       c.BaseAmount,
		CommissionAmount: c.CommissionAmount,
		CreatedAt:        dto.FormatTime(c.CreatedAt),
		UpdatedAt:        dto.FormatTime(c.UpdatedAt),
	}
	if c.Barber != nil {
		resp.BarberUsername = c.Barber.Username
	}
	return resp
}
