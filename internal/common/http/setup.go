package http

import (
	"net/http"

	"github.com/AlibekovAA/authd/internal/common/constants"
	"github.com/AlibekovAA/authd/internal/common/httpmetrics"
	"github.com/AlibekovAA/authd/internal/common/logger"
)

// BuildBaseHandler wraps handler, outermost first, with security headers,
// trace ids, panic recovery, the body size limit and request metrics.
func BuildBaseHandler(appName string, log *logger.Logger, handler http.Handler) http.Handler {
	chain := httpmetrics.New(appName).Wrap(handler)
	chain = MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)(chain)
	chain = RecoveryMiddleware(log)(chain)
	chain = TraceIDMiddleware(chain)
	return SecurityHeadersMiddleware(chain)
}
