package service

import (
	"errors"

	"storefront/internal/apperr"
	"storefront/internal/store"
)

// storeError translates persistence failures into application errors.
// conflict names the unique field and ref the field holding a foreign key.
func storeError(err error, conflict, ref string) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflict(conflict+" already exists", err)
	case errors.Is(err, store.ErrInvalidReference):
		return apperr.Invalid(ref, ref+" refers to a record that does not exist")
	case errors.Is(err, store.ErrInvalidStatus):
		return apperr.Invalid("status", "status must be one of: pending, confirmed, delivered, cancelled")
	default:
		return apperr.Internal(err)
	}
}
