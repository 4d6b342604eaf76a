// Package hfclass adapts a hosted text-classification endpoint (Hugging Face
// inference API shape) to the sentiment classifier contract.
package hfclass

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/helpdeskhq/support-triage/internal/ai"
	"github.com/helpdeskhq/support-triage/internal/metrics"
)

// DefaultURL is the hosted sentiment model used when Config.URL is empty.
const DefaultURL = "https://api-inference.huggingface.co/models/cardiffnlp/twitter-xlm-roberta-base-sentiment"

type Config struct {
	Token string
	URL   string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Classifier calls a hosted classification model over HTTP. It implements
// ai.SentimentClassifier.
type Classifier struct {
	token  string
	url    string
	client *http.Client
}

func New(cfg Config) (*Classifier, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("classifier token is required")
	}
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = DefaultURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Classifier{token: strings.TrimSpace(cfg.Token), url: url, client: client}, nil
}

func (c *Classifier) Classify(ctx context.Context, text string) ([]ai.Prediction, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("hfclass: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("hfclass: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ObserveGeneratorCall("classifier", err, time.Since(start))
	if err != nil {
		return nil, classifyErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("hfclass: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &ai.LimitedTransientError{
			Err:          fmt.Errorf("hfclass: status %d", resp.StatusCode),
			ExtraRetries: 1,
		}
	case resp.StatusCode >= 500:
		return nil, &ai.TransientError{Err: fmt.Errorf("hfclass: status %d", resp.StatusCode)}
	default:
		return nil, fmt.Errorf("hfclass: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parsePredictions(body)
}

type rawPrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// parsePredictions accepts both response shapes the API produces: a flat
// prediction list, or a list of lists with one entry per input.
func parsePredictions(body []byte) ([]ai.Prediction, error) {
	var nested [][]rawPrediction
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		return convert(nested[0])
	}

	var flat []rawPrediction
	if err := json.Unmarshal(body, &flat); err == nil {
		return convert(flat)
	}

	return nil, errors.New("hfclass: malformed prediction payload")
}

func convert(raw []rawPrediction) ([]ai.Prediction, error) {
	if len(raw) == 0 {
		return nil, errors.New("hfclass: empty prediction list")
	}
	out := make([]ai.Prediction, len(raw))
	for i, p := range raw {
		out[i] = ai.Prediction{Label: p.Label, Score: p.Score}
	}
	return out, nil
}

func classifyErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && (ne.Timeout() || ne.Temporary()) {
		return &ai.TransientError{Err: err}
	}
	return err
}
