package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/speechlab/dubkit/internal/dubbing"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps the dubbing error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var (
		authErr      *dubbing.AuthError
		validErr     *dubbing.ValidationError
		notFoundErr  *dubbing.NotFoundError
		stateErr     *dubbing.InvalidStateError
		timeoutErr   *dubbing.TimeoutError
		transientErr *dubbing.TransientNetworkError
		serverErr    *dubbing.ServerError
	)
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &validErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &stateErr):
		return http.StatusConflict
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &transientErr), errors.As(err, &serverErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
