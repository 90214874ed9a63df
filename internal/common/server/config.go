package server

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/AlibekovAA/authd/internal/common/constants"
)

type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// DefaultServerConfig listens on all interfaces when port is a bare port
// number; a host:port value is used as is.
func DefaultServerConfig(port string) ServerConfig {
	return ServerConfig{
		Addr:              listenAddr(port),
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      constants.ServerWriteTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
	}
}

// WithRequestTimeout widens the write timeout so a handler that uses its
// whole request budget can still write its response.
func (c ServerConfig) WithRequestTimeout(timeout time.Duration) ServerConfig {
	if min := timeout + constants.ServerWriteMargin; c.WriteTimeout < min {
		c.WriteTimeout = min
	}
	return c
}

func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

func listenAddr(port string) string {
	if _, _, err := net.SplitHostPort(port); err == nil {
		return port
	}
	return ":" + strings.TrimPrefix(port, ":")
}
