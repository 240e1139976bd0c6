package repository

import (
	"context"
	"time"

	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceRecordRepository interface {
	Create(ctx context.Context, tx *gorm.DB, rec *model.ServiceRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRecord, error)
	List(ctx context.Context, filter dto.ServiceRecordFilter) ([]model.ServiceRecord, int64, error)
	// Totals sums price_charged and counts records performed at or after since.
	Totals(ctx context.Context, since time.Time, barberID *uuid.UUID) (decimal.Decimal, int64, error)
	ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error)
	// DailySeries and MonthlySeries bucket revenue by local day (YYYY-MM-DD)
	// or month (YYYY-MM) in the tz IANA zone, oldest first.
	DailySeries(ctx context.Context, since time.Time, barberID *uuid.UUID, tz string) ([]PeriodTotal, error)
	MonthlySeries(ctx context.Context, since time.Time, barberID *uuid.UUID, tz string) ([]PeriodTotal, error)
	BarberRanking(ctx context.Context, since time.Time) ([]BarberTotal, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type PeriodTotal struct {
	Period string
	Total  decimal.Decimal
}

type BarberTotal struct {
	BarberID uuid.UUID
	Username string
	Total    decimal.Decimal
}

type recordRepo struct{ db *gorm.DB }

func NewServiceRecordRepository(db *gorm.DB) ServiceRecordRepository { return &recordRepo{db: db} }

func (r *recordRepo) DB() *gorm.DB { return r.db }

func (r *recordRepo) Create(ctx context.Context, tx *gorm.DB, rec *model.ServiceRecord) error {
	return use(ctx, r.db, tx).Omit(clause.Associations).Create(rec).Error
}

func (r *recordRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRecord, error) {
	var rec model.ServiceRecord
	err := r.db.WithContext(ctx).
		Preload("Barber").Preload("Service").Preload("Customer").
		Preload("Payment").Preload("Commission").
		First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *recordRepo) List(ctx context.Context, filter dto.ServiceRecordFilter) ([]model.ServiceRecord, int64, error) {
	var records []model.ServiceRecord
	var total int64
	offset, size := paginate(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.ServiceRecord{})
	if filter.BarberID != "" {
		q = q.Where("barber_id = ?", filter.BarberID)
	}
	if filter.ServiceID != "" {
		q = q.Where("service_id = ?", filter.ServiceID)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.From != "" {
		q = q.Where("DATE(performed_at) >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("DATE(performed_at) <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Barber").Preload("Service").Preload("Customer").
		Preload("Payment").Preload("Commission").
		Order("performed_at DESC").
		Offset(offset).Limit(size).
		Find(&records).Error

	return records, total, err
}

func (r *recordRepo) Totals(ctx context.Context, since time.Time, barberID *uuid.UUID) (decimal.Decimal, int64, error) {
	var sum decimal.Decimal
	var count int64
	q := r.db.WithContext(ctx).Model(&model.ServiceRecord{}).Where("performed_at >= ?", since)
	if barberID != nil {
		q = q.Where("barber_id = ?", *barberID)
	}
	err := q.Select("COALESCE(SUM(price_charged), 0), COUNT(*)").Row().Scan(&sum, &count)
	return sum, count, err
}

func (r *recordRepo) ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ServiceRecord{}).
		Where("appointment_id = ?", appointmentID).
		Count(&count).Error
	return count > 0, err
}

func (r *recordRepo) DailySeries(ctx context.Context, since time.Time, barberID *uuid.UUID, tz string) ([]PeriodTotal, error) {
	return r.series(ctx, "TO_CHAR(DATE(performed_at AT TIME ZONE ?), 'YYYY-MM-DD')", since, barberID, tz)
}

func (r *recordRepo) MonthlySeries(ctx context.Context, since time.Time, barberID *uuid.UUID, tz string) ([]PeriodTotal, error) {
	return r.series(ctx, "TO_CHAR(DATE_TRUNC('month', performed_at AT TIME ZONE ?), 'YYYY-MM')", since, barberID, tz)
}

func (r *recordRepo) series(ctx context.Context, bucket string, since time.Time, barberID *uuid.UUID, tz string) ([]PeriodTotal, error) {
	var rows []PeriodTotal
	q := r.db.WithContext(ctx).Model(&model.ServiceRecord{}).
		Select(bucket+" AS period, COALESCE(SUM(price_charged), 0) AS total", tz).
		Where("performed_at >= ?", since)
	if barberID != nil {
		q = q.Where("barber_id = ?", *barberID)
	}
	err := q.Group("period").Order("period").Scan(&rows).Error
	return rows, err
}

func (r *recordRepo) BarberRanking(ctx context.Context, since time.Time) ([]BarberTotal, error) {
	var rows []BarberTotal
	err := r.db.WithContext(ctx).Table("service_records sr").
		Joins("JOIN users u ON u.id = sr.barber_id").
		Select("sr.barber_id, u.username, COALESCE(SUM(sr.price_charged), 0) AS total").
		Where("sr.performed_at >= ?", since).
		Group("sr.barber_id, u.username").
		Order("total DESC, u.username").
		Scan(&rows).Error
	return rows, err
}
