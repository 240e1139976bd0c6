package repository

import (
	"context"
	"errors"
	"time"

	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommissionRepository interface {
	// FindActiveRule returns nil when no active rule exists for the pair.
	FindActiveRule(ctx context.Context, tx *gorm.DB, barberID, serviceID uuid.UUID) (*model.CommissionRule, error)
	FindRuleByID(ctx context.Context, id uuid.UUID) (*model.CommissionRule, error)
	ListRules(ctx context.Context, barberID *uuid.UUID) ([]model.CommissionRule, error)
	// SaveRule inserts the rule or replaces the existing one for the same pair.
	SaveRule(ctx context.Context, rule *model.CommissionRule) error
	UpdateRule(ctx context.Context, rule *model.CommissionRule) error

	// Upsert keys on service_record_id: a second call for the same record
	// replaces barber, base and amount.
	Upsert(ctx context.Context, tx *gorm.DB, c *model.Commission) error
	FindByServiceRecord(ctx context.Context, recordID uuid.UUID) (*model.Commission, error)
	List(ctx context.Context, filter dto.CommissionFilter) ([]model.Commission, int64, error)
	SumSince(ctx context.Context, since time.Time, barberID *uuid.UUID) (decimal.Decimal, error)
}

type commissionRepo struct{ db *gorm.DB }

func NewCommissionRepository(db *gorm.DB) CommissionRepository { return &commissionRepo{db: db} }

func (r *commissionRepo) FindActiveRule(ctx context.Context, tx *gorm.DB, barberID, serviceID uuid.UUID) (*model.CommissionRule, error) {
	var rule model.CommissionRule
	err := use(ctx, r.db, tx).
		Where("barber_id = ? AND service_id = ? AND active = true", barberID, serviceID).
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *commissionRepo) FindRuleByID(ctx context.Context, id uuid.UUID) (*model.CommissionRule, error) {
	var rule model.CommissionRule
	err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error
	return &rule, err
}

func (r *commissionRepo) ListRules(ctx context.Context, barberID *uuid.UUID) ([]model.CommissionRule, error) {
	var rules []model.CommissionRule
	q := r.db.WithContext(ctx)
	if barberID != nil {
		q = q.Where("barber_id = ?", *barberID)
	}
	err := q.Order("created_at DESC").Find(&rules).Error
	return rules, err
}

func (r *commissionRepo) SaveRule(ctx context.Context, rule *model.CommissionRule) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "barber_id"}, {Name: "service_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"percent", "fixed_amount", "active", "updated_at"}),
	}).Create(rule).Error
}

func (r *commissionRepo) UpdateRule(ctx context.Context, rule *model.CommissionRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *commissionRepo) Upsert(ctx context.Context, tx *gorm.DB, c *model.Commission) error {
	return use(ctx, r.db, tx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "service_record_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"barber_id", "base_amount", "commission_amount", "updated_at"}),
	}).Create(c).Error
}

func (r *commissionRepo) FindByServiceRecord(ctx context.Context, recordID uuid.UUID) (*model.Commission, error) {
	var c model.Commission
	err := r.db.WithContext(ctx).Where("service_record_id = ?", recordID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commissionRepo) List(ctx context.Context, filter dto.CommissionFilter) ([]model.Commission, int64, error) {
	var commissions []model.Commission
	var total int64
	offset, size := paginate(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.Commission{})
	if filter.BarberID != "" {
		q = q.Where("barber_id = ?", filter.BarberID)
	}
	if filter.From != "" {
		q = q.Where("DATE(created_at) >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("DATE(created_at) <= ?", filter.To)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Barber").Order("created_at DESC").Offset(offset).Limit(size).Find(&commissions).Error
	return commissions, total, err
}

func (r *commissionRepo) SumSince(ctx context.Context, since time.Time, barberID *uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := r.db.WithContext(ctx).Model(&model.Commission{}).Where("created_at >= ?", since)
	if barberID != nil {
		q = q.Where("barber_id = ?", *barberID)
	}
	err := q.Select("COALESCE(SUM(commission_amount), 0)").Row().Scan(&total)
	return total, err
}
