package embedding

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider names.
const (
	ProviderHash   = "hash"
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
)

// Options selects and configures an embedding provider.
type Options struct {
	Provider   string
	ModelPath  string
	Dimensions int
	MaxTokens  int
	CacheSize  int
	OpenAI     OpenAIConfig
	Logger     *zap.Logger
}

// New builds the configured provider wrapped in an LRU cache.
// An empty provider selects the hash embedder.
func New(opts Options) (Embedder, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var inner Embedder
	switch opts.Provider {
	case ProviderHash, "":
		inner = NewHashEmbedder(opts.Dimensions)
	case ProviderONNX:
		e, err := NewONNXEmbedder(&ONNXConfig{
			ModelPath:  opts.ModelPath,
			Dimensions: opts.Dimensions,
			MaxTokens:  opts.MaxTokens,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("onnx embedder: %w", err)
		}
		inner = e
	case ProviderOpenAI:
		cfg := opts.OpenAI
		if cfg.Dimensions == 0 {
			cfg.Dimensions = opts.Dimensions
		}
		cfg.Logger = logger
		e, err := NewOpenAIEmbedder(&cfg)
		if err != nil {
			return nil, err
		}
		inner = e
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: hash, onnx, openai)", opts.Provider)
	}
	logger.Info("embedding provider ready",
		zap.String("provider", providerName(opts.Provider)),
		zap.Int("dimensions", inner.Dimensions()),
		zap.Int("cache_size", opts.CacheSize),
	)
	return NewCachedEmbedder(inner, opts.CacheSize), nil
}

func providerName(p string) string {
	if p == "" {
		return ProviderHash
	}
	return p
}
