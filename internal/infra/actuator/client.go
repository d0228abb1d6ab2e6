package actuator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/pipeline"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

const (
	defaultTimeout  = 3 * time.Second
	defaultAttempts = 2
	baseBackoff     = 200 * time.Millisecond
)

// Client sends angle commands to the panel controller over its HTTP command
// endpoint. Sends are best-effort: the pipeline logs failures and moves on.
// Transport errors and 5xx responses are retried once with backoff since the
// controller drops requests while it is repositioning.
type Client struct {
	commandURL  string
	httpClient  *http.Client
	maxAttempts int
}

// NewClient builds the actuator client. timeout zero means the default ~3s.
func NewClient(commandURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		commandURL:  strings.TrimSpace(commandURL),
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: defaultAttempts,
	}
}

type command struct {
	RecommendedAngle float64 `json:"recommended_angle"`
	Confidence       float64 `json:"confidence"`
}

// SendAngle posts the recommended tilt to the device.
func (c *Client) SendAngle(ctx context.Context, deviceID string, angle, confidence float64) error {
	if c.commandURL == "" {
		return apperrors.Wrap(apperrors.CodeActuatorUnreachable, "actuator url not configured", nil)
	}
	payload, err := json.Marshal(command{RecommendedAngle: angle, Confidence: confidence})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := baseBackoff * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		retryable, err := c.post(ctx, deviceID, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, deviceID string, payload []byte) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.commandURL, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("build actuator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, apperrors.Wrap(apperrors.CodeActuatorUnreachable,
			fmt.Sprintf("send angle to %s", deviceID), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return resp.StatusCode >= http.StatusInternalServerError, apperrors.Wrap(apperrors.CodeActuatorUnreachable,
			fmt.Sprintf("actuator rejected command: status=%d body=%s", resp.StatusCode, string(body)), nil)
	}
	return false, nil
}

var _ pipeline.AngleCommander = (*Client)(nil)
