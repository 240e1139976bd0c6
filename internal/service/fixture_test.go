package service_test

import (
	"time"

	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fixture struct {
	store       *memStore
	cashRepo    *stubCashRepo
	paymentRepo *stubPaymentRepo
	commRepo    *stubCommissionRepo
	serviceRepo *stubServiceRepo
	recordRepo  *stubRecordRepo
	apptRepo    *stubAppointmentRepo
	userRepo    *stubUserRepo

	commissions service.CommissionService
	cash        service.CashService
	sales       service.SaleService
	records     service.RecordService
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:       store,
		cashRepo:    &stubCashRepo{store: store},
		paymentRepo: &stubPaymentRepo{store: store},
		commRepo:    &stubCommissionRepo{store: store},
		serviceRepo: &stubServiceRepo{store: store},
		recordRepo:  &stubRecordRepo{store: store},
		apptRepo:    &stubAppointmentRepo{store: store},
		userRepo:    &stubUserRepo{store: store},
	}
	f.commissions = service.NewCommissionService(f.commRepo, f.serviceRepo, f.recordRepo)
	f.cash = service.NewCashService(f.cashRepo, nil)
	f.sales = service.NewSaleService(f.cashRepo, f.paymentRepo, f.apptRepo, f.commissions, nil)
	f.records = service.NewRecordService(f.recordRepo, f.serviceRepo, f.apptRepo, f.userRepo, f.sales, nil, 5*time.Minute, time.UTC)
	return f
}

// persistRecord stores a ServiceRecord the way RecordService would before
// settling it.
func (f *fixture) persistRecord(barberID uuid.UUID, svc *model.Service, price string) *model.ServiceRecord {
	rec := &model.ServiceRecord{
		ID:           uuid.New(),
		BarberID:     barberID,
		ServiceID:    svc.ID,
		PriceCharged: decimal.RequireFromString(price),
		PerformedAt:  time.Now(),
	}
	cp := *rec
	f.store.records[rec.ID] = &cp
	return rec
}

// addUser registers an active user so barber lookups and rankings resolve.
func (f *fixture) addUser(username string, role model.Role) uuid.UUID {
	u := &model.User{ID: uuid.New(), Username: username, Role: role, Active: true}
	f.store.users[u.ID] = u
	return u.ID
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
