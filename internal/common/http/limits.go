package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/AlibekovAA/authd/internal/common/constants"
)

const (
	DefaultMaxRequestSize = constants.DefaultMaxRequestSize
)

var errBodyTooLarge = errors.New("request body too large")

type maxBytesReader struct {
	reader io.ReadCloser
	limit  int64
	read   int64
}

func (r *maxBytesReader) Read(p []byte) (n int, err error) {
	if r.read > r.limit {
		return 0, errBodyTooLarge
	}

	remaining := r.limit - r.read
	if int64(len(p)) > remaining+1 {
		p = p[:remaining+1]
	}
	n, err = r.reader.Read(p)
	if int64(n) <= remaining {
		r.read += int64(n)
		return n, err
	}

	// bytes past the limit are dropped so decoders never see a full body
	r.read = r.limit + 1
	return int(remaining), errBodyTooLarge
}

func (r *maxBytesReader) Close() error {
	return r.reader.Close()
}

func MaxRequestSizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, CodeRequestTooLarge, "request body too large", nil, TraceIDFromContext(r.Context()))
				return
			}

			r.Body = &maxBytesReader{
				reader: r.Body,
				limit:  maxBytes,
			}

			next.ServeHTTP(w, r)
		})
	}
}
