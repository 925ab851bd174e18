package httpx

import (
	"errors"
	"net/http"

	"github.com/pelita-edu/pelita/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unauthenticated and Forbidden stay distinct so clients can tell
// "sign in" apart from "you lack access".
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrAccountInactive):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "Email atau password tidak valid")
	case errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "silakan masuk terlebih dahulu")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "anda tidak memiliki akses ke sumber daya ini")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
