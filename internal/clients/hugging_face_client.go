package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const HF_INFERENCE_ENDPOINT = "https://router.huggingface.co/hf-inference/models/"

type HuggingFaceConfig struct {
	Endpoint string
	Model    string
	Token    string
	Timeout  time.Duration
}

// HuggingFaceClient calls a hosted text classification model through the
// Hugging Face Inference API.
type HuggingFaceClient struct {
	Client     *http.Client
	url        string
	token      string
	maxRetries int
	backoff    time.Duration
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

// Truncation lets the endpoint cut inputs longer than the model's window
// instead of rejecting them.
type hfParameters struct {
	Truncation bool `json:"truncation"`
}

type hfClassification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func NewHuggingFaceClient(cfg HuggingFaceConfig) *HuggingFaceClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = HF_INFERENCE_ENDPOINT
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.Duration("timeout", cfg.Timeout),
		slog.String("model", cfg.Model))

	return &HuggingFaceClient{
		Client:     &http.Client{Timeout: cfg.Timeout},
		url:        strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Model,
		token:      cfg.Token,
		maxRetries: MAX_RETRIES,
		backoff:    INITIAL_BACKOFF,
	}
}

// DoWithRetry retries transport errors and 5xx responses with exponential
// backoff. The request body is rewound from GetBody on every attempt.
func (h *HuggingFaceClient) DoWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.backoff

	for attempt := 0; attempt < h.maxRetries; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", bodyErr)
			}
			req.Body = body
		}

		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if attempt < h.maxRetries-1 {
			time.Sleep(backoff)
			backoff = min(backoff*2, MAX_BACKOFF)
		}
	}

	if err == nil {
		err = fmt.Errorf("status code %d", resp.StatusCode)
	}
	return nil, err
}

// Predict returns the highest scoring label for text.
func (h *HuggingFaceClient) Predict(ctx context.Context, text string) (string, float64, error) {
	var raw json.RawMessage
	start := time.Now()

	payload := hfRequest{Inputs: text, Parameters: hfParameters{Truncation: true}}
	err := h.postJSON(ctx, payload, &raw)
	if err != nil {
		slog.Error("[HuggingFaceClient] Classification request failed",
			slog.Duration("elapsed", time.Since(start)))
		return "", 0, err
	}

	candidates, err := decodeClassifications(raw)
	if err != nil {
		return "", 0, err
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	slog.Debug("[HuggingFaceClient] Classification request successful",
		slog.String("label", best.Label),
		slog.Duration("elapsed", time.Since(start)))
	return best.Label, best.Score, nil
}

// The API answers with [[{label, score}...]] for a single input, some
// deployments drop the outer list.
func decodeClassifications(raw json.RawMessage) ([]hfClassification, error) {
	var nested [][]hfClassification
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	var flat []hfClassification
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	return nil, errors.New("no classification in response")
}

// helper function for posting data to the inference endpoint
func (h *HuggingFaceClient) postJSON(ctx context.Context, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.DoWithRetry(req)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", h.url),
			slog.String("error", err.Error()))
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("[HuggingFaceClient] Unexpected status",
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
