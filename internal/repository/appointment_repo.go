package repository

import (
	"context"
	"time"

	"github.com/psholiveira/barber-system/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppointmentQuery narrows List. Zero values mean "any".
type AppointmentQuery struct {
	From     time.Time
	To       time.Time
	BarberID *uuid.UUID
	Status   model.AppointmentStatus
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, q AppointmentQuery) ([]model.Appointment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status model.AppointmentStatus) error
}

type appointmentRepo struct{ db *gorm.DB }

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository { return &appointmentRepo{db: db} }

func (r *appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

func (r *appointmentRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	err := use(ctx, r.db, tx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *appointmentRepo) List(ctx context.Context, aq AppointmentQuery) ([]model.Appointment, error) {
	var appts []model.Appointment
	q := r.db.WithContext(ctx)
	if !aq.From.IsZero() {
		q = q.Where("start_at >= ?", aq.From)
	}
	if !aq.To.IsZero() {
		q = q.Where("start_at < ?", aq.To)
	}
	if aq.BarberID != nil {
		q = q.Where("barber_id = ?", *aq.BarberID)
	}
	if aq.Status != "" {
		q = q.Where("status = ?", aq.Status)
	}
	err := q.Preload("Barber").Preload("Customer").Preload("Service").
		Order("start_at ASC").Find(&appts).Error
	return appts, err
}

// UpdateStatus is a plain UPDATE: setting the current status again is a no-op.
func (r *appointmentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status model.AppointmentStatus) error {
	return use(ctx, r.db, tx).Model(&model.Appointment{}).Where("id = ?", id).Update("status", status).Error
}
