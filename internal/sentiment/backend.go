package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/ideiamap/internal/clients"
	"github.com/spacesedan/ideiamap/internal/tokenize"
	"github.com/spacesedan/ideiamap/internal/utils"
)

const (
	BackendHugot       = "hugot"
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendVader       = "vader"

	// A failed model load is retried at most this often, or right away
	// after Reload.
	MODEL_RETRY_AFTER = 30 * time.Second
)

type BackendOptions struct {
	Backend   string
	ModelName string
	ModelDir  string
	// HubToken authorizes tokenizer downloads for gated models.
	HubToken    string
	HuggingFace *clients.HuggingFaceClient
	OpenAI      *clients.OpenAIClient
}

// IsRemote reports whether a backend bills a network call per prediction.
func IsRemote(backend string) bool {
	return backend == BackendHuggingFace || backend == BackendOpenAI
}

// NewClassifierForBackend wires the configured rating model behind a
// Classifier. Local models and hub tokenizers load lazily on first use.
func NewClassifierForBackend(opts BackendOptions) (*Classifier, error) {
	if opts.ModelName == "" {
		opts.ModelName = DEFAULT_MODEL
	}

	switch opts.Backend {
	case BackendHugot, "":
		backend := newHugotBackend(opts.ModelName, opts.ModelDir)
		return NewClassifier(backend, backend), nil
	case BackendHuggingFace:
		if opts.HuggingFace == nil {
			return nil, fmt.Errorf("backend %q requires a Hugging Face client", opts.Backend)
		}
		return NewClassifier(opts.HuggingFace, newHubTokenizer(opts)), nil
	case BackendOpenAI:
		if opts.OpenAI == nil {
			return nil, fmt.Errorf("backend %q requires an OpenAI client", opts.Backend)
		}
		return NewClassifier(opts.OpenAI, newHubTokenizer(opts)), nil
	case BackendVader:
		return NewClassifier(NewVaderModel(), tokenize.Whitespace{}), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", opts.Backend)
	}
}

// newHubTokenizer counts with the rating model's own tokenizer so token
// counts mean the same on every backend.
func newHubTokenizer(opts BackendOptions) *tokenize.HubTokenizer {
	return tokenize.NewHubTokenizer(tokenize.HubConfig{
		ModelName: opts.ModelName,
		Dir:       opts.ModelDir,
		Token:     opts.HubToken,
	})
}

type loadedModel struct {
	model     *HugotModel
	tokenizer Tokenizer
}

// hugotBackend loads the ONNX model and its tokenizer on first use and keeps
// them for the lifetime of the process.
type hugotBackend struct {
	loaded *utils.Lazy[loadedModel]
}

func newHugotBackend(modelName, modelDir string) *hugotBackend {
	return &hugotBackend{loaded: utils.NewLazy(func() (loadedModel, error) {
		return loadHugot(modelName, modelDir)
	}, MODEL_RETRY_AFTER)}
}

func loadHugot(modelName, modelDir string) (loadedModel, error) {
	start := time.Now()
	path, err := DownloadModelIfMissing(modelName, modelDir)
	if err != nil {
		return loadedModel{}, err
	}

	model, err := LoadHugotModel(path)
	if err != nil {
		return loadedModel{}, err
	}

	var tk Tokenizer
	wp, err := tokenize.LoadWordPiece(model.TokenizerPath())
	if err != nil {
		slog.Warn("[HugotModel] Tokenizer unavailable, counting words instead",
			slog.String("error", err.Error()))
		tk = tokenize.Whitespace{}
	} else {
		tk = wp
	}

	slog.Info("[HugotModel] Model ready",
		slog.String("model", modelName),
		slog.Duration("elapsed", time.Since(start)))
	return loadedModel{model: model, tokenizer: tk}, nil
}

func (b *hugotBackend) load() (loadedModel, error) {
	loaded, err := b.loaded.Get()
	if err != nil {
		return loadedModel{}, fmt.Errorf("model unavailable: %w", err)
	}
	return loaded, nil
}

func (b *hugotBackend) Truncate(text string, maxTokens int) (string, int, error) {
	loaded, err := b.load()
	if err != nil {
		return "", 0, err
	}
	return loaded.tokenizer.Truncate(text, maxTokens)
}

func (b *hugotBackend) Predict(ctx context.Context, text string) (string, float64, error) {
	loaded, err := b.load()
	if err != nil {
		return "", 0, err
	}
	return loaded.model.Predict(ctx, text)
}

func (b *hugotBackend) Reload() {
	b.loaded.Forget()
}

func (b *hugotBackend) Close() error {
	loaded, ok := b.loaded.Peek()
	if !ok {
		return nil
	}
	return loaded.model.Close()
}
