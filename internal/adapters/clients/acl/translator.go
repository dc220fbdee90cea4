package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-manager/internal/adapters/clients"
)

// maxResponseBody bounds a decoded response body.
const maxResponseBody = 16 << 20

// BaseAdapter wraps a clients.Client and maps every failure to a domain error.
// Embed it in service-specific adapters.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a new base adapter with the given client and service name.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
	}
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName returns the name of the external service.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get performs a GET request. On success the caller owns the returned body.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)

	return a.checkResponse(resp, err, operation)
}

// Post sends body as JSON. On success the caller owns the returned body.
func (a *BaseAdapter) Post(ctx context.Context, path string, body []byte, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Post(ctx, path, body)

	return a.checkResponse(resp, err, operation)
}

func (a *BaseAdapter) checkResponse(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation)
	}

	return resp.Body, nil
}

// DecodeResponse reads and decodes a JSON response body into the target type.
// Closes the body after reading.
func DecodeResponse[T any](body io.ReadCloser) (T, error) {
	var result T

	if body == nil {
		return result, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(io.LimitReader(body, maxResponseBody)).Decode(&result); err != nil {
		return result, fmt.Errorf("decoding response: %w", err)
	}

	return result, nil
}

// Translator converts one external DTO into a domain value.
type Translator[External any, Domain any] func(ext *External) Domain

// TranslateSlice applies translate to at most limit items; limit <= 0 means all.
func TranslateSlice[E any, D any](items []E, limit int, translate Translator[E, D]) []D {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	result := make([]D, 0, len(items))
	for i := range items {
		result = append(result, translate(&items[i]))
	}

	return result
}
