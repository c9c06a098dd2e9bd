package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/copperline/accounts-service/internal/domain"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// writeMappedError translates a service error into the JSON envelope. Field
// validation errors carry the per-field map alongside the generic code.
func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	var fieldErrs domain.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeFieldErrors(w, fieldErrs)
		return
	}
	status, code, msg := mapDomainError(err)
	logHTTPOperationError(ctx, operation, status, code, msg, err)
	writeError(w, status, code, msg)
}

func writeBadJSON(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
}
