package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const DEFAULT_MODEL = "nlptown/bert-base-multilingual-uncased-sentiment"

// HugotModel runs a text classification pipeline locally on ONNX Runtime.
type HugotModel struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	path     string
}

// DownloadModelIfMissing returns the local directory of modelName under
// modelDir, fetching it from the Hugging Face hub on first use.
func DownloadModelIfMissing(modelName, modelDir string) (string, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		slog.Info("[HugotModel] Using existing model", slog.String("path", modelPath))
		return modelPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat model path: %w", err)
	}

	slog.Info("[HugotModel] Model not found, downloading...", slog.String("model", modelName))
	downloaded, err := hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", modelName, err)
	}
	slog.Info("[HugotModel] Model downloaded successfully", slog.String("path", downloaded))
	return downloaded, nil
}

func LoadHugotModel(modelPath string) (*HugotModel, error) {
	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "ideaSentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("failed to initialize text classification pipeline: %w", err)
	}

	return &HugotModel{session: session, pipeline: pipeline, path: modelPath}, nil
}

// TokenizerPath is the tokenizer.json shipped next to the ONNX weights.
func (h *HugotModel) TokenizerPath() string {
	return filepath.Join(h.path, "tokenizer.json")
}

func (h *HugotModel) Predict(_ context.Context, text string) (string, float64, error) {
	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return "", 0, fmt.Errorf("pipeline run failed: %w", err)
	}
	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return "", 0, errors.New("pipeline returned no classification")
	}

	best := output.ClassificationOutputs[0][0]
	for _, candidate := range output.ClassificationOutputs[0][1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}
	return best.Label, float64(best.Score), nil
}

func (h *HugotModel) Close() error {
	if h.session == nil {
		return nil
	}
	return h.session.Destroy()
}
