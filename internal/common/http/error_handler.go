package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AlibekovAA/authd/internal/common/constants"
	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
	"github.com/AlibekovAA/authd/internal/common/httpmetrics"
	"github.com/AlibekovAA/authd/internal/common/logger"
	"github.com/AlibekovAA/authd/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		h.handleDomainError(w, r, domainErr, traceID)
		return
	}

	h.log.WithFields(ctx, logger.Fields{
		"action": "unhandled_error",
		"path":   r.URL.Path,
	}).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, http.StatusInternalServerError, commonerrors.ErrInternalError.Code(), commonerrors.ErrInternalError.Message(), nil, traceID)
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError, traceID string) {
	ctx := r.Context()
	status := err.HTTPStatus()

	fields := logger.Fields{
		"error_code": err.Code(),
		"category":   string(err.Category()),
		"status":     status,
		"action":     "domain_error",
	}

	// Internal and external failures carry causes the client never sees.
	switch err.Category() {
	case commonerrors.CategoryInternal, commonerrors.CategoryExternal:
		h.log.WithFields(ctx, fields).Errorf("domain error: %s", err.Error())
	default:
		if h.log.ShouldLog(logger.DEBUG) {
			h.log.WithFields(ctx, fields).Debugf("domain error: %s", err.Error())
		}
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(err.Category()),
		err.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, status, err.Code(), err.Message(), nil, traceID)
}

func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	NewErrorHandler(log).HandleError(w, r, err)
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}
