package tokenize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spacesedan/ideiamap/internal/utils"
)

const (
	HUB_ENDPOINT = "https://huggingface.co"
	// A failed download is retried at most this often.
	HUB_RETRY_AFTER = time.Minute
)

type HubConfig struct {
	Endpoint   string
	ModelName  string
	Dir        string
	Token      string
	Timeout    time.Duration
	RetryAfter time.Duration
}

// HubTokenizer counts subword units with the tokenizer.json of a hosted
// model, fetched into Dir on first use. Until the file loads, words are
// counted instead.
type HubTokenizer struct {
	tokenizer *utils.Lazy[*WordPiece]
}

func NewHubTokenizer(cfg HubConfig) *HubTokenizer {
	if cfg.Endpoint == "" {
		cfg.Endpoint = HUB_ENDPOINT
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryAfter == 0 {
		cfg.RetryAfter = HUB_RETRY_AFTER
	}

	client := &http.Client{Timeout: cfg.Timeout}
	load := func() (*WordPiece, error) {
		path, err := DownloadTokenizerIfMissing(context.Background(), client, cfg)
		if err != nil {
			slog.Warn("[Tokenizer] Tokenizer unavailable, counting words instead",
				slog.String("model", cfg.ModelName),
				slog.String("error", err.Error()))
			return nil, err
		}
		return LoadWordPiece(path)
	}

	return &HubTokenizer{tokenizer: utils.NewLazy(load, cfg.RetryAfter)}
}

func (h *HubTokenizer) Truncate(text string, maxTokens int) (string, int, error) {
	tk, err := h.tokenizer.Get()
	if err != nil {
		return Whitespace{}.Truncate(text, maxTokens)
	}
	return tk.Truncate(text, maxTokens)
}

// Reload lets a failed download try again on the next call.
func (h *HubTokenizer) Reload() {
	h.tokenizer.Forget()
}

// TokenizerPath is where the tokenizer.json of modelName lives under dir,
// next to the ONNX export when one was downloaded.
func TokenizerPath(dir, modelName string) string {
	return filepath.Join(dir, strings.ReplaceAll(modelName, "/", "_"), "tokenizer.json")
}

// DownloadTokenizerIfMissing returns the local tokenizer.json of
// cfg.ModelName, fetching it from the hub when absent.
func DownloadTokenizerIfMissing(ctx context.Context, client *http.Client, cfg HubConfig) (string, error) {
	path := TokenizerPath(cfg.Dir, cfg.ModelName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat tokenizer path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create tokenizer directory: %w", err)
	}

	url := strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.ModelName + "/resolve/main/tokenizer.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	slog.Info("[Tokenizer] Tokenizer not found, downloading...", slog.String("model", cfg.ModelName))
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download tokenizer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download tokenizer: status code %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "tokenizer-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create tokenizer file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write tokenizer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write tokenizer: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store tokenizer: %w", err)
	}

	slog.Info("[Tokenizer] Tokenizer downloaded successfully", slog.String("path", path))
	return path, nil
}
