package acl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jsamuelsen/quote-manager/internal/adapters/clients"
	"github.com/jsamuelsen/quote-manager/internal/domain"
)

const (
	// maxErrorBody bounds how much of an error response is read for its message.
	maxErrorBody = 4 << 10

	maxReasonLen = 200
)

// remoteError covers the error bodies seen from JSON backends:
// {"error":{"message":...}}, {"error":"..."} and {"message":"..."}.
type remoteError struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

func (e remoteError) reason() string {
	if len(e.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(e.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}

		var flat string
		if json.Unmarshal(e.Error, &flat) == nil && flat != "" {
			return flat
		}
	}

	return e.Message
}

// ErrorReason extracts a short human-readable reason from an error body.
// JSON bodies yield their message; a plain-text body yields its first line;
// HTML and empty bodies yield "".
func ErrorReason(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '<' {
		return ""
	}

	if data[0] == '{' {
		var e remoteError
		if json.Unmarshal(data, &e) != nil {
			return ""
		}

		return truncate(e.reason())
	}

	line, _, _ := strings.Cut(string(data), "\n")

	return truncate(strings.TrimSpace(line))
}

func truncate(s string) string {
	if len(s) <= maxReasonLen {
		return s
	}

	cut := maxReasonLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + "..."
}

// MapHTTPError maps a failed exchange with the remote to a domain.NetworkError.
//
// clientErr takes precedence; otherwise resp must be a non-2xx response, whose
// body, if any, supplies the reason. A 2xx response maps to nil.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewNetworkError(serviceName, operation, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	return &domain.NetworkError{
		Service:    serviceName,
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Reason:     ErrorReason(resp.Body),
	}
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewNetworkError(serviceName, operation, "circuit breaker open")

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return &domain.NetworkError{
			Service:    serviceName,
			Operation:  operation,
			StatusCode: clients.StatusCode(err),
			Reason:     "max retries exceeded",
		}

	default:
		return domain.NewNetworkError(serviceName, operation, fmt.Sprintf("%v", err))
	}
}
