// Package predict talks to the remote pricing backend. A prediction attempt
// is terminal: failures surface to the caller, who substitutes the local
// heuristic. The only retry loop lives in Ping, the one-shot startup probe.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/estateluxe/estateluxe/internal/httputil"
	"github.com/estateluxe/estateluxe/internal/metrics"
	"github.com/estateluxe/estateluxe/internal/models"
)

type Client struct {
	baseURL string
	client  *http.Client
	report  *http.Client

	// gen numbers prediction requests so a late response from an older
	// request can be recognized and dropped instead of overwriting a
	// newer one.
	gen atomic.Uint64
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httputil.NewClient(),
		report:  httputil.NewClientTimeout(2 * time.Minute),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type Prediction struct {
	PriceUSD float64 `json:"price_usd"`
	PriceINR float64 `json:"price_inr"`
	Currency string  `json:"currency"`
	Source   string  `json:"source"`

	// Seq is the request generation this prediction answers, stamped even
	// when the request fails. Compare it against the generation of whatever
	// shared state it would replace before applying the result.
	Seq uint64 `json:"-"`
}

type predictRequest struct {
	FeaturesByName models.PredictionFeatures `json:"features_by_name"`
}

// Predict posts the feature row to {base}/predict. No retries: a failure is
// terminal for this attempt and the caller falls back to the heuristic. The
// returned prediction carries its request generation even on error, so a
// caller can arbitrate late responses on the fallback path too.
func (c *Client) Predict(ctx context.Context, features models.PredictionFeatures) (Prediction, error) {
	p := Prediction{Seq: c.gen.Add(1)}
	url := c.baseURL + "/predict"

	body, err := json.Marshal(predictRequest{FeaturesByName: features})
	if err != nil {
		return p, fmt.Errorf("marshal features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return p, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.BackendLatency.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendCallsTotal.WithLabelValues("predict", "unreachable").Inc()
		return p, fmt.Errorf("failed to reach backend at %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		metrics.BackendCallsTotal.WithLabelValues("predict", fmt.Sprint(resp.StatusCode)).Inc()
		return p, fmt.Errorf("API %d: %s", resp.StatusCode, string(b))
	}
	metrics.BackendCallsTotal.WithLabelValues("predict", "200").Inc()

	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return p, fmt.Errorf("decode prediction: %w", err)
	}
	return p, nil
}

// Stale reports whether a prediction from the given generation has been
// superseded by a newer request.
func (c *Client) Stale(seq uint64) bool {
	return seq < c.gen.Load()
}

// Healthy issues a single probe of {base}/health with no retry. Serving
// health checks must stay cheap when the backend is down, so unlike Ping
// this never backs off.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe backend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe backend: status %d", resp.StatusCode)
	}
	return nil
}

// Ping probes {base}/health with exponential backoff until the backend
// answers or the budget runs out. Used once at startup; the service runs
// fine without the backend, it just falls back to heuristic valuations.
func (c *Client) Ping(ctx context.Context) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("probe backend: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("probe backend: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("probe backend: status %d: %s", resp.StatusCode, string(b)))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}
