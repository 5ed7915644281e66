package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

type errorDetail struct {
	Code    qerrors.Code `json:"code"`
	Message string       `json:"message"`
}

// errorBody is the JSON error envelope. Result carries a partial outcome
// where one exists: the overshooting reduction or the disagreeing
// cross-check report.
type errorBody struct {
	Error  errorDetail `json:"error"`
	Result any         `json:"result,omitempty"`
}

func errorOf(err error) errorDetail {
	code := qerrors.GetCode(err)
	if code == "" {
		code = qerrors.ErrCodeInternal
	}
	return errorDetail{Code: code, Message: qerrors.UserMessage(err)}
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch qerrors.GetCode(err) {
	case qerrors.ErrCodeInvalidInput,
		qerrors.ErrCodeInvalidMethod,
		qerrors.ErrCodeInvalidHeuristic,
		qerrors.ErrCodeInvalidAssignment,
		qerrors.ErrCodeInvalidFormat,
		qerrors.ErrCodeInvalidPath,
		qerrors.ErrCodeMalformedCircuit:
		return http.StatusBadRequest
	case qerrors.ErrCodeInfeasibleAtTarget, qerrors.ErrCodeStructurallyInfeasible:
		return http.StatusUnprocessableEntity
	case qerrors.ErrCodeBudgetExceeded:
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
	} else {
		s.log.Debug("request rejected", "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorOf(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
