package repository

import (
	"context"
	"errors"

	"github.com/psholiveira/barber-system/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CashRepository interface {
	CreateSession(ctx context.Context, s *model.CashSession) error
	// FindOpenSession returns the newest open session, or nil when none is open.
	FindOpenSession(ctx context.Context, tx *gorm.DB) (*model.CashSession, error)
	// FindOpenSessionForUpdate is FindOpenSession with SELECT ... FOR UPDATE.
	FindOpenSessionForUpdate(ctx context.Context, tx *gorm.DB) (*model.CashSession, error)
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	FindSessionByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error)
	UpdateSession(ctx context.Context, tx *gorm.DB, s *model.CashSession) error
	ListSessions(ctx context.Context, page, limit int) ([]model.CashSession, int64, error)
	CreateEntry(ctx context.Context, tx *gorm.DB, e *model.CashEntry) error
	ListEntries(ctx context.Context, sessionID uuid.UUID) ([]model.CashEntry, error)
	SumEntries(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, t model.CashEntryType) (decimal.Decimal, error)
	SumPayments(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error)
	DB() *gorm.DB
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

func (r *cashRepo) DB() *gorm.DB { return r.db }

func (r *cashRepo) CreateSession(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashRepo) FindOpenSession(ctx context.Context, tx *gorm.DB) (*model.CashSession, error) {
	return r.findOpen(use(ctx, r.db, tx))
}

func (r *cashRepo) FindOpenSessionForUpdate(ctx context.Context, tx *gorm.DB) (*model.CashSession, error) {
	return r.findOpen(use(ctx, r.db, tx).Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r *cashRepo) findOpen(q *gorm.DB) (*model.CashSession, error) {
	var s model.CashSession
	err := q.Where("closed_at IS NULL").Order("opened_at DESC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *cashRepo) FindSessionByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := use(ctx, r.db, tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *cashRepo) UpdateSession(ctx context.Context, tx *gorm.DB, s *model.CashSession) error {
	return use(ctx, r.db, tx).Omit(clause.Associations).Save(s).Error
}

func (r *cashRepo) ListSessions(ctx context.Context, page, limit int) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64
	offset, size := paginate(page, limit)

	q := r.db.WithContext(ctx).Model(&model.CashSession{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("opened_at DESC").Offset(offset).Limit(size).Find(&sessions).Error
	return sessions, total, err
}

func (r *cashRepo) CreateEntry(ctx context.Context, tx *gorm.DB, e *model.CashEntry) error {
	return use(ctx, r.db, tx).Create(e).Error
}

func (r *cashRepo) ListEntries(ctx context.Context, sessionID uuid.UUID) ([]model.CashEntry, error) {
	var entries []model.CashEntry
	err := r.db.WithContext(ctx).Where("cash_session_id = ?", sessionID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}

func (r *cashRepo) SumEntries(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, t model.CashEntryType) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := use(ctx, r.db, tx).Model(&model.CashEntry{}).
		Where("cash_session_id = ? AND type = ?", sessionID, t).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&total)
	return total, err
}

func (r *cashRepo) SumPayments(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := use(ctx, r.db, tx).Model(&model.Payment{}).
		Where("cash_session_id = ?", sessionID).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&total)
	return total, err
}
