package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgExclusionViolation = "23P01"
	pgLockNotAvailable   = "55P03"
)

// IsExclusionConflict reports whether err is the bookings exclusion
// constraint firing, i.e. a commit lost the overlap race at the database
// even though the in-transaction pre-check passed.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}

// IsLockTimeout reports whether err is a lock_timeout expiry, raised when
// the per-barber advisory lock could not be acquired within budget.
func IsLockTimeout(err error) bool {
	if IsBusiness(err, "lock_timeout") {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable
}
