package shared

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation, e.g. a duplicate role name.
	ErrConflict = errors.New("already exists")
	// ErrValidation indicates malformed input, e.g. a permission id outside the catalog.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure. The same error is returned for
	// unknown email and wrong password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive indicates a valid credential pair on a deactivated account.
	ErrAccountInactive = errors.New("account inactive")
	// ErrUnauthenticated indicates there is no valid session for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates a valid session lacking the required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
