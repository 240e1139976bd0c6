package service_test

import (
	"context"
	"sort"
	"time"

	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store shared by every stub repository ──────────────────────────
// Repositories return nil from DB(), so runTx calls fn(nil) directly.

type memStore struct {
	sessions     map[uuid.UUID]*model.CashSession
	entries      []model.CashEntry
	payments     []model.Payment
	rules        map[uuid.UUID]*model.CommissionRule
	commissions  map[uuid.UUID]*model.Commission // keyed by service record
	services     map[uuid.UUID]*model.Service
	records      map[uuid.UUID]*model.ServiceRecord
	appointments map[uuid.UUID]*model.Appointment
	customers    map[uuid.UUID]*model.Customer
	users        map[uuid.UUID]*model.User
}

func newMemStore() *memStore {
	return &memStore{
		sessions:     make(map[uuid.UUID]*model.CashSession),
		rules:        make(map[uuid.UUID]*model.CommissionRule),
		commissions:  make(map[uuid.UUID]*model.Commission),
		services:     make(map[uuid.UUID]*model.Service),
		records:      make(map[uuid.UUID]*model.ServiceRecord),
		appointments: make(map[uuid.UUID]*model.Appointment),
		customers:    make(map[uuid.UUID]*model.Customer),
		users:        make(map[uuid.UUID]*model.User),
	}
}

func (m *memStore) addService(name string, price, percent string) *model.Service {
	s := &model.Service{
		ID:                       uuid.New(),
		Name:                     name,
		DefaultPrice:             decimal.RequireFromString(price),
		DefaultCommissionPercent: decimal.RequireFromString(percent),
		Active:                   true,
	}
	m.services[s.ID] = s
	return s
}

func (m *memStore) openSession(initial string) *model.CashSession {
	s := &model.CashSession{
		ID:            uuid.New(),
		OpenedBy:      uuid.New(),
		OpenedAt:      time.Now(),
		InitialAmount: decimal.RequireFromString(initial),
	}
	m.sessions[s.ID] = s
	return s
}

func (m *memStore) paymentsFor(recordID uuid.UUID) []model.Payment {
	var out []model.Payment
	for _, p := range m.payments {
		if p.ServiceRecordID == recordID {
			out = append(out, p)
		}
	}
	return out
}

// ── CashRepository ────────────────────────────────────────────────────────────

type stubCashRepo struct {
	store     *memStore
	createErr error
	locks     int
}

func (r *stubCashRepo) DB() *gorm.DB { return nil }

func (r *stubCashRepo) CreateSession(_ context.Context, s *model.CashSession) error {
	if r.createErr != nil {
		return r.createErr
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.store.sessions[s.ID] = s
	return nil
}

func (r *stubCashRepo) FindOpenSession(_ context.Context, _ *gorm.DB) (*model.CashSession, error) {
	var newest *model.CashSession
	for _, s := range r.store.sessions {
		if s.IsOpen() && (newest == nil || s.OpenedAt.After(newest.OpenedAt)) {
			newest = s
		}
	}
	return newest, nil
}

func (r *stubCashRepo) FindOpenSessionForUpdate(ctx context.Context, tx *gorm.DB) (*model.CashSession, error) {
	r.locks++
	return r.FindOpenSession(ctx, tx)
}

func (r *stubCashRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.store.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubCashRepo) FindSessionByIDForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	r.locks++
	return r.FindSessionByID(ctx, id)
}

func (r *stubCashRepo) UpdateSession(_ context.Context, _ *gorm.DB, s *model.CashSession) error {
	cp := *s
	r.store.sessions[s.ID] = &cp
	return nil
}

func (r *stubCashRepo) ListSessions(_ context.Context, page, limit int) ([]model.CashSession, int64, error) {
	all := make([]model.CashSession, 0, len(r.store.sessions))
	for _, s := range r.store.sessions {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OpenedAt.After(all[j].OpenedAt) })
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *stubCashRepo) CreateEntry(_ context.Context, _ *gorm.DB, e *model.CashEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.store.entries = append(r.store.entries, *e)
	return nil
}

func (r *stubCashRepo) ListEntries(_ context.Context, sessionID uuid.UUID) ([]model.CashEntry, error) {
	var out []model.CashEntry
	for _, e := range r.store.entries {
		if e.CashSessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubCashRepo) SumEntries(_ context.Context, _ *gorm.DB, sessionID uuid.UUID, t model.CashEntryType) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.store.entries {
		if e.CashSessionID == sessionID && e.Type == t {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (r *stubCashRepo) SumPayments(_ context.Context, _ *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.store.payments {
		if p.CashSessionID != nil && *p.CashSessionID == sessionID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

var _ repository.CashRepository = (*stubCashRepo)(nil)

// ── PaymentRepository ─────────────────────────────────────────────────────────

type stubPaymentRepo struct{ store *memStore }

// Create mimics the UNIQUE(service_record_id) constraint.
func (r *stubPaymentRepo) Create(_ context.Context, _ *gorm.DB, p *model.Payment) error {
	if len(r.store.paymentsFor(p.ServiceRecordID)) > 0 {
		return gorm.ErrDuplicatedKey
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.store.payments = append(r.store.payments, *p)
	return nil
}

func (r *stubPaymentRepo) FindByServiceRecord(_ context.Context, recordID uuid.UUID) (*model.Payment, error) {
	ps := r.store.paymentsFor(recordID)
	if len(ps) == 0 {
		return nil, nil
	}
	return &ps[0], nil
}

func (r *stubPaymentRepo) List(_ context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error) {
	var out []model.Payment
	for _, p := range r.store.payments {
		if filter.CashSessionID != "" && (p.CashSessionID == nil || p.CashSessionID.String() != filter.CashSessionID) {
			continue
		}
		if filter.Method != "" && string(p.Method) != filter.Method {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPaymentRepo) SumByMethod(_ context.Context, since time.Time, barberID *uuid.UUID) ([]repository.MethodSum, error) {
	sums := map[model.PaymentMethod]decimal.Decimal{}
	for _, p := range r.store.payments {
		if p.CreatedAt.Before(since) {
			continue
		}
		if barberID != nil {
			rec, ok := r.store.records[p.ServiceRecordID]
			if !ok || rec.BarberID != *barberID {
				continue
			}
		}
		sums[p.Method] = sums[p.Method].Add(p.Amount)
	}
	out := make([]repository.MethodSum, 0, len(sums))
	for m, t := range sums {
		out = append(out, repository.MethodSum{Method: m, Total: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out, nil
}

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

// ── CommissionRepository ──────────────────────────────────────────────────────

type stubCommissionRepo struct {
	store *memStore
	// ruleOverride, when set, is returned by FindActiveRule verbatim.
	ruleOverride *model.CommissionRule
}

func (r *stubCommissionRepo) FindActiveRule(_ context.Context, _ *gorm.DB, barberID, serviceID uuid.UUID) (*model.CommissionRule, error) {
	if r.ruleOverride != nil {
		return r.ruleOverride, nil
	}
	for _, rule := range r.store.rules {
		if rule.Active && rule.BarberID == barberID && rule.ServiceID == serviceID {
			cp := *rule
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubCommissionRepo) FindRuleByID(_ context.Context, id uuid.UUID) (*model.CommissionRule, error) {
	rule, ok := r.store.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rule
	return &cp, nil
}

func (r *stubCommissionRepo) ListRules(_ context.Context, barberID *uuid.UUID) ([]model.CommissionRule, error) {
	var out []model.CommissionRule
	for _, rule := range r.store.rules {
		if barberID == nil || rule.BarberID == *barberID {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *stubCommissionRepo) SaveRule(_ context.Context, rule *model.CommissionRule) error {
	for _, existing := range r.store.rules {
		if existing.BarberID == rule.BarberID && existing.ServiceID == rule.ServiceID {
			rule.ID = existing.ID
			break
		}
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	cp := *rule
	r.store.rules[rule.ID] = &cp
	return nil
}

func (r *stubCommissionRepo) UpdateRule(_ context.Context, rule *model.CommissionRule) error {
	cp := *rule
	r.store.rules[rule.ID] = &cp
	return nil
}

// Upsert mimics ON CONFLICT (service_record_id) DO UPDATE.
func (r *stubCommissionRepo) Upsert(_ context.Context, _ *gorm.DB, c *model.Commission) error {
	now := time.Now()
	if existing, ok := r.store.commissions[c.ServiceRecordID]; ok {
		existing.BarberID = c.BarberID
		existing.BaseAmount = c.BaseAmount
		existing.CommissionAmount = c.CommissionAmount
		existing.UpdatedAt = now
		*c = *existing
		return nil
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	r.store.commissions[c.ServiceRecordID] = &cp
	return nil
}

func (r *stubCommissionRepo) FindByServiceRecord(_ context.Context, recordID uuid.UUID) (*model.Commission, error) {
	c, ok := r.store.commissions[recordID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *stubCommissionRepo) List(_ context.Context, filter dto.CommissionFilter) ([]model.Commission, int64, error) {
	var out []model.Commission
	for _, c := range r.store.commissions {
		if filter.BarberID != "" && c.BarberID.String() != filter.BarberID {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCommissionRepo) SumSince(_ context.Context, since time.Time, barberID *uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range r.store.commissions {
		if c.CreatedAt.Before(since) || (barberID != nil && c.BarberID != *barberID) {
			continue
		}
		total = total.Add(c.CommissionAmount)
	}
	return total, nil
}

var _ repository.CommissionRepository = (*stubCommissionRepo)(nil)

// ── ServiceRepository ─────────────────────────────────────────────────────────

type stubServiceRepo struct {
	store *memStore
	lists int
}

func (r *stubServiceRepo) Create(_ context.Context, s *model.Service) error {
	for _, existing := range r.store.services {
		if existing.Name == s.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.store.services[s.ID] = &cp
	return nil
}

func (r *stubServiceRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Service, error) {
	s, ok := r.store.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubServiceRepo) List(_ context.Context, onlyActive bool) ([]model.Service, error) {
	r.lists++
	var out []model.Service
	for _, s := range r.store.services {
		if onlyActive && !s.Active {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubServiceRepo) Update(_ context.Context, s *model.Service) error {
	cp := *s
	r.store.services[s.ID] = &cp
	return nil
}

var _ repository.ServiceRepository = (*stubServiceRepo)(nil)

// ── ServiceRecordRepository ───────────────────────────────────────────────────

type stubRecordRepo struct{ store *memStore }

func (r *stubRecordRepo) DB() *gorm.DB { return nil }

func (r *stubRecordRepo) Create(_ context.Context, _ *gorm.DB, rec *model.ServiceRecord) error {
	if rec.AppointmentID != nil {
		for _, existing := range r.store.records {
			if existing.AppointmentID != nil && *existing.AppointmentID == *rec.AppointmentID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	cp := *rec
	r.store.records[rec.ID] = &cp
	return nil
}

// FindByID mimics the preloads of the real repository.
func (r *stubRecordRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ServiceRecord, error) {
	rec, ok := r.store.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	cp.Service = r.store.services[rec.ServiceID]
	cp.Barber = r.store.users[rec.BarberID]
	if ps := r.store.paymentsFor(id); len(ps) > 0 {
		cp.Payment = &ps[0]
	}
	cp.Commission = r.store.commissions[id]
	return &cp, nil
}

func (r *stubRecordRepo) List(_ context.Context, filter dto.ServiceRecordFilter) ([]model.ServiceRecord, int64, error) {
	var out []model.ServiceRecord
	for _, rec := range r.store.records {
		if filter.BarberID != "" && rec.BarberID.String() != filter.BarberID {
			continue
		}
		out = append(out, *rec)
	}
	return out, int64(len(out)), nil
}

func (r *stubRecordRepo) Totals(_ context.Context, since time.Time, barberID *uuid.UUID) (decimal.Decimal, int64, error) {
	total, count := decimal.Zero, int64(0)
	for _, rec := range r.store.records {
		if rec.PerformedAt.Before(since) || (barberID != nil && rec.BarberID != *barberID) {
			continue
		}
		total = total.Add(rec.PriceCharged)
		count++
	}
	return total, count, nil
}

func (r *stubRecordRepo) ExistsForAppointment(_ context.Context, appointmentID uuid.UUID) (bool, error) {
	for _, rec := range r.store.records {
		if rec.AppointmentID != nil && *rec.AppointmentID == appointmentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRecordRepo) DailySeries(_ context.Context, since time.Time, barberID *uuid.UUID, tz string) ([]repository.PeriodTotal, error) {
	return r.series(since, barberID, tz, "2006-01-02")
}

func (r *stubRecordRepo) MonthlySeries(_ context.Context, since time.Time, barberID *uuid.UUID, tz string) ([]repository.PeriodTotal, error) {
	return r.series(since, barberID, tz, "2006-01")
}

func (r *stubRecordRepo) series(since time.Time, barberID *uuid.UUID, tz, layout string) ([]repository.PeriodTotal, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	sums := map[string]decimal.Decimal{}
	for _, rec := range r.store.records {
		if rec.PerformedAt.Before(since) || (barberID != nil && rec.BarberID != *barberID) {
			continue
		}
		key := rec.PerformedAt.In(loc).Format(layout)
		sums[key] = sums[key].Add(rec.PriceCharged)
	}
	out := make([]repository.PeriodTotal, 0, len(sums))
	for period, total := range sums {
		out = append(out, repository.PeriodTotal{Period: period, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

// BarberRanking inner-joins users like the SQL version: records whose barber
// is missing from the store are dropped.
func (r *stubRecordRepo) BarberRanking(_ context.Context, since time.Time) ([]repository.BarberTotal, error) {
	sums := map[uuid.UUID]decimal.Decimal{}
	for _, rec := range r.store.records {
		if rec.PerformedAt.Before(since) {
			continue
		}
		sums[rec.BarberID] = sums[rec.BarberID].Add(rec.PriceCharged)
	}
	var out []repository.BarberTotal
	for id, total := range sums {
		u, ok := r.store.users[id]
		if !ok {
			continue
		}
		out = append(out, repository.BarberTotal{BarberID: id, Username: u.Username, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

var _ repository.ServiceRecordRepository = (*stubRecordRepo)(nil)

// ── AppointmentRepository ─────────────────────────────────────────────────────

type stubAppointmentRepo struct{ store *memStore }

func (r *stubAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	cp := *a
	r.store.appointments[a.ID] = &cp
	return nil
}

func (r *stubAppointmentRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Appointment, error) {
	a, ok := r.store.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubAppointmentRepo) List(_ context.Context, q repository.AppointmentQuery) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range r.store.appointments {
		if !q.From.IsZero() && a.StartAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !a.StartAt.Before(q.To) {
			continue
		}
		if q.BarberID != nil && a.BarberID != *q.BarberID {
			continue
		}
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *stubAppointmentRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status model.AppointmentStatus) error {
	if a, ok := r.store.appointments[id]; ok {
		a.Status = status
	}
	return nil
}

var _ repository.AppointmentRepository = (*stubAppointmentRepo)(nil)

// ── CustomerRepository ────────────────────────────────────────────────────────

type stubCustomerRepo struct{ store *memStore }

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	cp := *c
	r.store.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.store.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) Search(_ context.Context, query string, _ int) ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range r.store.customers {
		if query == "" || c.Name == query || c.Phone == query {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	cp := *c
	r.store.customers[c.ID] = &cp
	return nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

// ── UserRepository ────────────────────────────────────────────────────────────

type stubUserRepo struct{ store *memStore }

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.store.users {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.store.users {
		if u.Username == username && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.store.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)
