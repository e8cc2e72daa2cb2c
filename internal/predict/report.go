package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/estateluxe/estateluxe/internal/metrics"
	"github.com/estateluxe/estateluxe/internal/models"
)

type ReportValuation struct {
	Current    int64              `json:"current"`
	Low        int64              `json:"low"`
	High       int64              `json:"high"`
	Confidence int                `json:"confidence"`
	Currency   models.CountryCode `json:"currency"`
}

type ReportPayload struct {
	Title     string          `json:"title"`
	Valuation ReportValuation `json:"valuation"`
	Features  map[string]any  `json:"features"`
	Notes     string          `json:"notes"`
}

// GenerateReport posts the payload to {base}/report and returns the PDF
// bytes. Network-shaped failures are rewritten into a message that tells the
// user where the backend was expected, since "connection refused" on its own
// sends people in the wrong direction.
func (c *Client) GenerateReport(ctx context.Context, payload ReportPayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal report payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/report", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.report.Do(req)
	metrics.BackendLatency.WithLabelValues("report").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendCallsTotal.WithLabelValues("report", "unreachable").Inc()
		return nil, fmt.Errorf("failed to reach backend at %s: is the backend running and port %s reachable?",
			c.baseURL, backendPort(c.baseURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		metrics.BackendCallsTotal.WithLabelValues("report", fmt.Sprint(resp.StatusCode)).Inc()
		if len(b) == 0 {
			return nil, fmt.Errorf("report generation failed: HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("report generation failed: %s", string(b))
	}
	metrics.BackendCallsTotal.WithLabelValues("report", "200").Inc()

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read report body: %w", err)
	}
	return pdf, nil
}

func backendPort(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return "8000"
	}
	if p := u.Port(); p != "" {
		return p
	}
	if u.Scheme == "https" {
		return "443"
	}
	return "80"
}
