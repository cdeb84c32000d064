// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and renders the matching
// user-facing page in one call, so handlers stay a single line per error.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get("X-Request-ID")),
	}
}

// LogServerError logs at Error and renders a 500 page with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// HTMXLogServerError is LogServerError for endpoints that htmx may call.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	HTMXError(w, r, http.StatusInternalServerError, userMsg, func() {
		RenderServerError(w, r, userMsg, backURL)
	})
}

// LogBadRequest logs at Warn and renders a 400 page with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogUpstreamError logs a failed contacts-service call at Warn and renders
// the upstream status and message.
func (e *ErrorLogger) LogUpstreamError(w http.ResponseWriter, r *http.Request, logMsg string, err error, status int, userMsg, backURL string) {
	e.Log.Warn(logMsg, append(e.fields(r, err), zap.Int("upstream_status", status))...)
	HTMXError(w, r, upstreamStatus(status), userMsg, func() {
		RenderUpstreamError(w, r, status, userMsg, backURL)
	})
}

func upstreamStatus(status int) int {
	if status < 400 {
		return http.StatusBadGateway
	}
	return status
}
