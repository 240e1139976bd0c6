package service_test

import (
	"context"
	"testing"

	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func addPayment(f *fixture, sessionID uuid.UUID, amount string) {
	f.store.payments = append(f.store.payments, model.Payment{
		ID:              uuid.New(),
		ServiceRecordID: uuid.New(),
		Method:          model.PaymentCash,
		Amount:          dec(amount),
		CashSessionID:   &sessionID,
	})
}

func addEntry(t *testing.T, f *fixture, sessionID uuid.UUID, typ, amount string) {
	t.Helper()
	_, err := f.cash.RecordEntry(context.Background(), uuid.New(), dto.CashEntryRequest{
		CashSessionID: sessionID.String(),
		Type:          typ,
		Amount:        dec(amount),
		Description:   "ajuste manual",
	})
	require.NoError(t, err)
}

// ── Open ──────────────────────────────────────────────────────────────────────

func TestOpen_Success(t *testing.T) {
	f := newFixture()
	openedBy := uuid.New()

	resp, err := f.cash.Open(context.Background(), openedBy, dto.OpenCashRequest{InitialAmount: dec("100.00")})
	require.NoError(t, err)
	assert.True(t, resp.Open)
	assert.Equal(t, openedBy.String(), resp.OpenedBy)
	assert.Equal(t, "100.00", resp.ExpectedAmount.StringFixed(2))
	assert.Len(t, f.store.sessions, 1)
}

func TestOpen_SecondOpenRejected(t *testing.T) {
	f := newFixture()
	f.store.openSession("50.00")

	_, err := f.cash.Open(context.Background(), uuid.New(), dto.OpenCashRequest{InitialAmount: dec("10.00")})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Len(t, f.store.sessions, 1)
}

func TestOpen_RaceLostOnUniqueIndex(t *testing.T) {
	f := newFixture()
	f.cashRepo.createErr = gorm.ErrDuplicatedKey

	_, err := f.cash.Open(context.Background(), uuid.New(), dto.OpenCashRequest{})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestOpen_NegativeInitialAmount(t *testing.T) {
	f := newFixture()
	_, err := f.cash.Open(context.Background(), uuid.New(), dto.OpenCashRequest{InitialAmount: dec("-1")})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestOpen_AllowedAfterPreviousClosed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first, err := f.cash.Open(ctx, uuid.New(), dto.OpenCashRequest{})
	require.NoError(t, err)
	_, err = f.cash.Close(ctx, uuid.MustParse(first.ID), uuid.New(), dto.CloseCashRequest{ClosingAmount: decPtr("0")})
	require.NoError(t, err)

	_, err = f.cash.Open(ctx, uuid.New(), dto.OpenCashRequest{InitialAmount: dec("20")})
	require.NoError(t, err)
	assert.Len(t, f.store.sessions, 2)
}

// ── Balance ───────────────────────────────────────────────────────────────────

func TestExpectedBalance(t *testing.T) {
	f := newFixture()
	session := f.store.openSession("100.00")
	addPayment(f, session.ID, "50.00")
	addEntry(t, f, session.ID, "IN", "20.00")
	addEntry(t, f, session.ID, "OUT", "10.00")

	got, err := f.cash.ExpectedBalance(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "160.00", got.StringFixed(2))
}

func TestExpectedBalance_IgnoresOtherSessions(t *testing.T) {
	f := newFixture()
	session := f.store.openSession("0")
	addPayment(f, uuid.New(), "999.00")

	got, err := f.cash.ExpectedBalance(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestExpectedBalance_UnknownSession(t *testing.T) {
	f := newFixture()
	_, err := f.cash.ExpectedBalance(context.Background(), uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestOpenSummary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	none, err := f.cash.OpenSummary(ctx)
	require.NoError(t, err)
	assert.False(t, none.Open)
	assert.Nil(t, none.CashSessionID)

	session := f.store.openSession("30.00")
	addPayment(f, session.ID, "35.00")
	got, err := f.cash.OpenSummary(ctx)
	require.NoError(t, err)
	require.True(t, got.Open)
	assert.Equal(t, session.ID.String(), *got.CashSessionID)
	assert.Equal(t, "65.00", got.ExpectedAmount.StringFixed(2))
}

// ── Close ─────────────────────────────────────────────────────────────────────

func TestClose_FreezesExpectedAndDifference(t *testing.T) {
	f := newFixture()
	session := f.store.openSession("100.00")
	addPayment(f, session.ID, "50.00")
	addEntry(t, f, session.ID, "OUT", "10.00")
	closedBy := uuid.New()
	locksBefore := f.cashRepo.locks

	resp, err := f.cash.Close(context.Background(), session.ID, closedBy, dto.CloseCashRequest{ClosingAmount: decPtr("135.00")})
	require.NoError(t, err)
	assert.False(t, resp.Open)
	assert.Equal(t, "140.00", resp.ExpectedAmount.StringFixed(2))
	require.NotNil(t, resp.Difference)
	assert.Equal(t, "-5.00", resp.Difference.StringFixed(2))
	require.NotNil(t, resp.ClosedBy)
	assert.Equal(t, closedBy.String(), *resp.ClosedBy)

	stored := f.store.sessions[session.ID]
	require.NotNil(t, stored.ClosedAt)
	assert.Equal(t, "140.00", stored.ExpectedAmount.StringFixed(2))
	assert.Equal(t, locksBefore+1, f.cashRepo.locks, "close takes exactly one session lock")
}

func TestClose_SecondCloseRejectedAndUnchanged(t *testing.T) {
	f := newFixture()
	session := f.store.openSession("10.00")
	ctx := context.Background()

	_, err := f.cash.Close(ctx, session.ID, uuid.New(), dto.CloseCashRequest{ClosingAmount: decPtr("10.00")})
	require.NoError(t, err)
	before := *f.store.sessions[session.ID]

	_, err = f.cash.Close(ctx, session.ID, uuid.New(), dto.CloseCashRequest{ClosingAmount: decPtr("99.00")})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	after := f.store.sessions[session.ID]
	assert.Equal(t, *before.ClosedBy, *after.ClosedBy)
	assert.True(t, before.ClosingAmount.Equal(*after.ClosingAmount))
	assert.True(t, before.Difference.Equal(*after.Difference))
}

func TestClose_Validation(t *testing.T) {
	f := newFixture()
	session := f.store.openSession("10.00")
	ctx := context.Background()

	_, err := f.cash.Close(ctx, session.ID, uuid.New(), dto.CloseCashRequest{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.cash.Close(ctx, session.ID, uuid.New(), dto.CloseCashRequest{ClosingAmount: decPtr("-0.01")})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.True(t, f.store.sessions[session.ID].IsOpen())
}

func TestClose_UnknownSession(t *testing.T) {
	f := newFixture()
	_, err := f.cash.Close(context.Background(), uuid.New(), uuid.New(), dto.CloseCashRequest{ClosingAmount: decPtr("0")})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

// ── Entries ───────────────────────────────────────────────────────────────────

func TestRecordEntry_ClosedSessionRejected(t *testing.T) {
	f := newFixture()
	session := f.store.openSession("10.00")
	ctx := context.Background()
	_, err := f.cash.Close(ctx, session.ID, uuid.New(), dto.CloseCashRequest{ClosingAmount: decPtr("10.00")})
	require.NoError(t, err)

	_, err = f.cash.RecordEntry(ctx, uuid.New(), dto.CashEntryRequest{
		CashSessionID: session.ID.String(), Type: "IN", Amount: dec("5.00"), Description: "troco",
	})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Empty(t, f.store.entries)
}

func TestRecordEntry_Validation(t *testing.T) {
	f := newFixture()
	session := f.store.openSession("10.00")
	ctx := context.Background()

	cases := []dto.CashEntryRequest{
		{CashSessionID: "nope", Type: "IN", Amount: dec("1"), Description: "abc"},
		{CashSessionID: session.ID.String(), Type: "SIDEWAYS", Amount: dec("1"), Description: "abc"},
		{CashSessionID: session.ID.String(), Type: "OUT", Amount: dec("0"), Description: "abc"},
	}
	for _, req := range cases {
		_, err := f.cash.RecordEntry(ctx, uuid.New(), req)
		assert.True(t, apperror.Is(err, apperror.KindValidation), "%+v", req)
	}
	assert.Empty(t, f.store.entries)
}

func TestListEntries(t *testing.T) {
	f := newFixture()
	session := f.store.openSession("0")
	addEntry(t, f, session.ID, "IN", "5.00")
	addEntry(t, f, session.ID, "OUT", "2.00")

	entries, err := f.cash.ListEntries(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestReport_ClosedSessionKeepsFrozenDifference(t *testing.T) {
	f := newFixture()
	session := f.store.openSession("20.00")
	ctx := context.Background()
	_, err := f.cash.Close(ctx, session.ID, uuid.New(), dto.CloseCashRequest{ClosingAmount: decPtr("25.00")})
	require.NoError(t, err)

	report, err := f.cash.Report(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, report.Open)
	assert.Equal(t, "5.00", report.Difference.StringFixed(2))
}
