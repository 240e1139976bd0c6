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
)

// MethodSum is one row of a GROUP BY method aggregate.
type MethodSum struct {
	Method model.PaymentMethod
	Total  decimal.Decimal
}

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	// FindByServiceRecord returns nil when the record has no payment.
	FindByServiceRecord(ctx context.Context, recordID uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error)
	// SumByMethod aggregates payments created at or after since, optionally
	// restricted to one barber's records.
	SumByMethod(ctx context.Context, since time.Time, barberID *uuid.UUID) ([]MethodSum, error)
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	return use(ctx, r.db, tx).Create(p).Error
}

func (r *paymentRepo) FindByServiceRecord(ctx context.Context, recordID uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).Where("service_record_id = ?", recordID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) List(ctx context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64
	offset, size := paginate(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.Payment{})
	if filter.CashSessionID != "" {
		q = q.Where("cash_session_id = ?", filter.CashSessionID)
	}
	if filter.Method != "" {
		q = q.Where("method = ?", filter.Method)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(size).Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepo) SumByMethod(ctx context.Context, since time.Time, barberID *uuid.UUID) ([]MethodSum, error) {
	var rows []MethodSum
	q := r.db.WithContext(ctx).Table("payments").
		Select("payments.method AS method, COALESCE(SUM(payments.amount), 0) AS total").
		Where("payments.created_at >= ?", since)
	if barberID != nil {
		q = q.Joins("JOIN service_records ON service_records.id = payments.service_record_id").
			Where("service_records.barber_id = ?", *barberID)
	}
	err := q.Group("payments.method").Order("payments.method").Scan(&rows).Error
	return rows, err
}
