package upstream

//go:generate go run go.uber.org/mock/mockgen -source=./client.go -destination=./mocks/client_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"suitesync/config"
	"suitesync/infras/otel"
	"suitesync/shared/constant"
)

// Client talks to the boarding provider API. FetchReservations covers a single
// date chunk; chunking across the full sync window is the caller's job since
// the provider caps the range per call.
type Client interface {
	FetchReservations(ctx context.Context, from, to time.Time) ([]ReservationRecord, error)
	FetchOwners(ctx context.Context) ([]OwnerRecord, error)
	FetchAnimals(ctx context.Context) ([]AnimalRecord, error)
	FetchReservationTypes(ctx context.Context) ([]ReservationTypeRecord, error)
}

type clientImpl struct {
	config     *config.Config
	httpClient *http.Client
	otel       otel.Otel
}

func New(cfg *config.Config, otl otel.Otel) Client {
	timeout := time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second

	return &clientImpl{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		otel:       otl,
	}
}

func (c *clientImpl) FetchReservations(ctx context.Context, from, to time.Time) ([]ReservationRecord, error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".FetchReservations")
	defer scope.End()

	query := url.Values{}
	query.Set("start_date", from.Format(constant.DateOnly))
	query.Set("end_date", to.Format(constant.DateOnly))

	var envelope reservationsEnvelope
	if err := c.getJSON(ctx, "/v1/reservations", query, &envelope); err != nil {
		scope.TraceError(err)

		return nil, err
	}

	return envelope.Data, nil
}

func (c *clientImpl) FetchOwners(ctx context.Context) ([]OwnerRecord, error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".FetchOwners")
	defer scope.End()

	var envelope ownersEnvelope
	if err := c.getJSON(ctx, "/v1/owners", nil, &envelope); err != nil {
		scope.TraceError(err)

		return nil, err
	}

	return envelope.Data, nil
}

func (c *clientImpl) FetchAnimals(ctx context.Context) ([]AnimalRecord, error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".FetchAnimals")
	defer scope.End()

	var envelope animalsEnvelope
	if err := c.getJSON(ctx, "/v1/animals", nil, &envelope); err != nil {
		scope.TraceError(err)

		return nil, err
	}

	return envelope.Data, nil
}

func (c *clientImpl) FetchReservationTypes(ctx context.Context) ([]ReservationTypeRecord, error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".FetchReservationTypes")
	defer scope.End()

	var envelope reservationTypesEnvelope
	if err := c.getJSON(ctx, "/v1/reservation-types", nil, &envelope); err != nil {
		scope.TraceError(err)

		return nil, err
	}

	return envelope.Data, nil
}

// getJSON performs a GET with bounded retries and exponential backoff. Server
// and transport errors are retried; any 4xx is treated as permanent.
func (c *clientImpl) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	maxRetry := max(c.config.Upstream.MaxRetry, 1)
	backoff := time.Duration(c.config.Upstream.BackoffSeconds) * time.Second

	var lastErr error

	for attempt := range maxRetry {
		if attempt > 0 {
			log.Warn().
				Str("path", path).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Msg("Retrying upstream request")

			select {
			case <-ctx.Done():
				return fmt.Errorf("upstream request cancelled: %w", ctx.Err())
			case <-time.After(backoff):
			}

			backoff *= 2
		}

		err := c.doRequest(ctx, path, query, target)
		if err == nil {
			return nil
		}

		var permanent *permanentError
		if errors.As(err, &permanent) {
			return permanent.err
		}

		lastErr = err
	}

	return fmt.Errorf("upstream request to %s failed after %d attempts: %w", path, maxRetry, lastErr)
}

func (c *clientImpl) doRequest(ctx context.Context, path string, query url.Values, target any) error {
	endpoint := c.config.Upstream.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &permanentError{err: fmt.Errorf("failed to build upstream request: %w", err)}
	}

	req.Header.Set(constant.RequestHeaderAPIKey, c.config.Upstream.APIKey)
	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return &permanentError{err: fmt.Errorf("upstream returned status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &permanentError{err: fmt.Errorf("failed to decode upstream response: %w", err)}
	}

	return nil
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}
