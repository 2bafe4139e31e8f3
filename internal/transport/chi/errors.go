package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lucasveenman/trace/internal/domain"
	"github.com/lucasveenman/trace/internal/logger"
)

// errorCode is the machine-readable code of an error response.
type errorCode string

const (
	codeBadRequest           errorCode = "bad_request"
	codeAuthRequired         errorCode = "authentication_required"
	codeNotFound             errorCode = "not_found"
	codeEntityNotFound       errorCode = "entity_not_found"
	codeBackendError         errorCode = "backend_error"
	codeBackendNotConfigured errorCode = "backend_not_configured"
	codeInternalError        errorCode = "internal_error"
)

// errorResponse is the JSON body of every error.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`

	// UpstreamStatus is the backend status for backend_error responses.
	UpstreamStatus int `json:"upstream_status,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers is the sentinel table. Order matters: specific
// sentinels come before the ones they might also match.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrAuthRequired, http.StatusUnauthorized, codeAuthRequired),
		sentinelHandler(domain.ErrEntityNotFound, http.StatusNotFound, codeEntityNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		backendErrorHandler,
		sentinelHandler(domain.ErrBackendNotConfigured, http.StatusServiceUnavailable, codeBackendNotConfigured),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The sentinel text is the client message so internals never leak.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// backendErrorHandler maps upstream failures to 502 and reports the upstream status.
func backendErrorHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrBackend) {
		return false
	}
	resp := errorResponse{Code: codeBackendError, Message: domain.ErrBackend.Error()}
	var be *domain.BackendError
	if errors.As(err, &be) {
		resp.UpstreamStatus = be.StatusCode
	}
	writeJSON(w, http.StatusBadGateway, resp)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
