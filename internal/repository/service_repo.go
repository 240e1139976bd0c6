package repository

import (
	"context"

	"github.com/psholiveira/barber-system/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRepository persists the service catalog.
type ServiceRepository interface {
	Create(ctx context.Context, s *model.Service) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Service, error)
	List(ctx context.Context, onlyActive bool) ([]model.Service, error)
	Update(ctx context.Context, s *model.Service) error
}

type serviceRepo struct{ db *gorm.DB }

func NewServiceRepository(db *gorm.DB) ServiceRepository { return &serviceRepo{db: db} }

func (r *serviceRepo) Create(ctx context.Context, s *model.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *serviceRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Service, error) {
	var s model.Service
	err := use(ctx, r.db, tx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *serviceRepo) List(ctx context.Context, onlyActive bool) ([]model.Service, error) {
	var services []model.Service
	q := r.db.WithContext(ctx)
	if onlyActive {
		q = q.Where("active = true")
	}
	err := q.Order("name ASC").Find(&services).Error
	return services, err
}

func (r *serviceRepo) Update(ctx context.Context, s *model.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}
