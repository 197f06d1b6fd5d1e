package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"campusexplorer/errs"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON request body into dst. Domain errors raised while
// decoding (such as half-specified coordinates) pass through unchanged.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var de *errs.Error
		if errors.As(err, &de) {
			return de
		}
		if errors.Is(err, io.EOF) {
			return errs.Validation("body", "request body is empty")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return errs.Validation(typeErr.Field, "has the wrong type")
		}
		return errs.Validation("body", "Invalid request payload")
	}
	return nil
}

// IntParam parses a path or query value as an int, naming field on failure.
func IntParam(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errs.Validation(field, "must be an integer")
	}
	return n, nil
}

// ClientIP returns the caller's address for rate limiting, preferring the
// first X-Forwarded-For hop.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		host = host[:i]
	}
	return host
}
