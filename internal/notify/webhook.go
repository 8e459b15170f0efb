package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

// DefaultWebhookTimeout bounds a single delivery attempt.
const DefaultWebhookTimeout = 5 * time.Second

// WebhookNotifier POSTs winner events as JSON to a fixed URL. Each delivery
// runs in its own goroutine and is attempted once.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
	wg         sync.WaitGroup
}

func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// webhookPayload is the JSON body sent to the webhook.
type webhookPayload struct {
	Text           string    `json:"text"`
	ExperimentID   string    `json:"experiment_id"`
	ExperimentName string    `json:"experiment_name"`
	WinnerID       string    `json:"winner_id"`
	WinnerName     string    `json:"winner_name"`
	WinnerValue    string    `json:"winner_value,omitempty"`
	Confidence     *float64  `json:"confidence"`
	CompletedAt    time.Time `json:"completed_at"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev experiment.WinnerEvent) {
	payload := webhookPayload{
		Text:           FormatWinner(ev),
		ExperimentID:   ev.ExperimentID,
		ExperimentName: ev.ExperimentName,
		WinnerID:       ev.Winner.ID,
		WinnerName:     ev.Winner.Name,
		WinnerValue:    ev.Winner.Value,
		CompletedAt:    ev.At,
	}
	if !math.IsNaN(ev.Confidence) && !math.IsInf(ev.Confidence, 0) {
		c := ev.Confidence
		payload.Confidence = &c
	}

	// The request must outlive the recording call that triggered it.
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.send(ctx, payload); err != nil {
			n.logger.Warn("winner webhook failed",
				zap.String("experiment", ev.ExperimentID),
				zap.Error(err))
			return
		}
		n.logger.Debug("winner webhook delivered", zap.String("experiment", ev.ExperimentID))
	}()
}

func (n *WebhookNotifier) send(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until every delivery started so far has finished.
func (n *WebhookNotifier) Wait() {
	n.wg.Wait()
}
