package requests

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ExternalAPIService performs GET requests against third-party JSON APIs.
type ExternalAPIService struct {
	client    *http.Client
	userAgent string
}

func NewExternalAPIService(timeout time.Duration) *ExternalAPIService {
	return &ExternalAPIService{
		client:    &http.Client{Timeout: timeout},
		userAgent: "stockbot/1.0",
	}
}

// Get returns the response body of a 2xx answer and an error otherwise.
func (s *ExternalAPIService) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if params != nil {
		endpoint = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, URL: endpoint}
	}
	return body, nil
}

type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}
