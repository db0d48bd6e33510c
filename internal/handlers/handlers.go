// Package handlers adapts the engine to its HTTP surface: decode, call,
// encode. All policy lives in the service layer; handlers only translate.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/we-ne/sentinel/internal/httputil"
	"github.com/we-ne/sentinel/internal/logging"
	"github.com/we-ne/sentinel/internal/service"
)

const maxBodyBytes = 1 << 20

// decodeBody decodes a JSON request body into dst. An empty body is allowed;
// the engine validates required fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		httputil.WriteError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return false
	}
	return true
}

// writeEngineError renders a typed engine error, merging any Details into
// the body next to the stable code. Unexpected error types become opaque
// 500s.
func writeEngineError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logger.Error("unhandled engine error", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	if len(svcErr.Details) == 0 {
		httputil.WriteError(w, svcErr.Status, svcErr.Code, svcErr.Message)
		return
	}
	body := map[string]any{
		"error": svcErr.Message,
		"code":  svcErr.Code,
	}
	for k, v := range svcErr.Details {
		body[k] = v
	}
	httputil.WriteJSON(w, svcErr.Status, body)
}
