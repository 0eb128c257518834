package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "bovespacli/internal/errors"
	"bovespacli/pkg/contracts/domain"
)

// HTTPSource fetches "<base>/issuers/<code>/events" as JSON EventRows.
// Calls are rate limited and each one carries its own timeout.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTPSource creates an HTTP source
func NewHTTPSource(baseURL string, timeout time.Duration, rps float64, burst int, logger *slog.Logger) *HTTPSource {
	if logger == nil {
		logger = slog.Default()
	}
	if burst < 1 {
		burst = 1
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch returns the issuer's rows. Any failure is a NetworkFetch error; callers
// proceed as if the issuer had no events. A 404 is an issuer without events.
func (s *HTTPSource) Fetch(ctx context.Context, issuer string) (domain.EventRows, error) {
	code := NormalizeCode(issuer)
	endpoint := s.baseURL + "/issuers/" + url.PathEscape(code) + "/events"

	if err := s.limiter.Wait(ctx); err != nil {
		return domain.EventRows{}, apperrors.NewNetworkFetchError(code, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.EventRows{}, apperrors.NewNetworkFetchError(code, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return domain.EventRows{}, apperrors.NewNetworkFetchError(code, err)
	}
	defer resp.Body.Close()

	s.logger.DebugContext(ctx, "event fetch",
		slog.String("issuer", code),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.EventRows{}, nil
	case resp.StatusCode != http.StatusOK:
		return domain.EventRows{}, apperrors.NewNetworkFetchError(code, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var rows domain.EventRows
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return domain.EventRows{}, apperrors.NewNetworkFetchError(code, fmt.Errorf("invalid response body: %w", err))
	}
	return rows, nil
}
