package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"strategy-gate/internal/dataset"
	"strategy-gate/internal/hcope"
	"strategy-gate/internal/orchestrator"
	"strategy-gate/internal/storage"
	"strategy-gate/internal/tca"
	"strategy-gate/internal/validation"
)

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

var badRequestErrors = []error{
	errBadRequest,
	validation.ErrInvalidConfig,
	validation.ErrInvalidInput,
	hcope.ErrInvalidConfig,
	hcope.ErrInvalidInput,
	tca.ErrInvalidConfig,
	tca.ErrInvalidLeg,
	tca.ErrInvalidLog,
	dataset.ErrInvalidInput,
	dataset.ErrUnsorted,
	orchestrator.ErrInvalidRequest,
}

var notFoundErrors = []error{
	storage.ErrNotFound,
	tca.ErrLogNotFound,
}

// statusFor maps an error to its HTTP status.
// Config and input errors are 400, not-found is 404, the rest 500.
func statusFor(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	if errors.Is(err, storage.ErrDuplicateKey) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// validationError flattens validator errors into one bad-request error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", errBadRequest, strings.Join(msgs, "; "))
}
