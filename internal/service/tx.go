package service

import (
	"context"
	"errors"
	"time"

	"github.com/psholiveira/barber-system/internal/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is who is calling a service. Privileged callers may act on data of
// other barbers; everyone else is scoped to UserID.
type Actor struct {
	UserID     uuid.UUID
	Privileged bool
}

// scope returns the barber filter for a read: nil for privileged actors.
func (a Actor) scope() *uuid.UUID {
	if a.Privileged {
		return nil
	}
	id := a.UserID
	return &id
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// classify leaves application errors alone and turns anything the storage
// layer raised into an IntegrityFault.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Integrity(err)
}

// notFound maps gorm.ErrRecordNotFound to a NotFound error for resource.
func notFound(resource string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource, err)
	}
	return err
}

// validateIDs rejects non-empty filter values that are not UUIDs.
func validateIDs(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return apperror.Validationf("identificador inválido: %q", id)
		}
	}
	return nil
}

// validateDates rejects non-empty values not in YYYY-MM-DD form.
func validateDates(dates ...string) error {
	for _, d := range dates {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return apperror.Validationf("data inválida: %q (use YYYY-MM-DD)", d)
		}
	}
	return nil
}
