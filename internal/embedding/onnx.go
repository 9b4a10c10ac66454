//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/hyperjump/kujo/internal/metrics"
	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/pkg/utils"
)

const defaultMaxTokens = 256

var (
	onnxInputs  = []string{"input_ids", "attention_mask", "token_type_ids"}
	onnxOutputs = []string{"output"}
)

// ONNXConfig locates a sentence-embedding model exported to ONNX.
type ONNXConfig struct {
	ModelPath  string
	Dimensions int
	MaxTokens  int
	Logger     *zap.Logger
}

// ONNXEmbedder runs a sentence-embedding model (all-MiniLM-L6-v2 by default)
// through ONNX Runtime. It requires CGO and the onnxruntime shared library.
// Wrap it with NewCachedEmbedder for repeated texts.
type ONNXEmbedder struct {
	mu         sync.Mutex
	session    *ort.AdvancedSession
	tokenizer  Tokenizer
	dimensions int
	maxTokens  int
	logger     *zap.Logger

	// Bound to the session; Embed overwrites the inputs in place.
	inputs []*ort.Tensor[int64]
	output *ort.Tensor[float32]
}

// NewONNXEmbedder loads the model and binds fixed-shape tensors to a session.
func NewONNXEmbedder(cfg *ONNXConfig) (*ONNXEmbedder, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("onnx embedder requires a model path")
	}
	e := &ONNXEmbedder{
		tokenizer:  &SimpleTokenizer{},
		dimensions: cfg.Dimensions,
		maxTokens:  cfg.MaxTokens,
		logger:     cfg.Logger,
	}
	if e.dimensions <= 0 {
		e.dimensions = DefaultDimensions
	}
	if e.maxTokens <= 0 {
		e.maxTokens = defaultMaxTokens
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	ids, mask, types := e.tokenizer.Tokenize("", e.maxTokens)
	shape := ort.NewShape(1, int64(e.maxTokens))
	for i, data := range [][]int64{ids, mask, types} {
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			e.destroyTensors()
			return nil, fmt.Errorf("create %s tensor: %w", onnxInputs[i], err)
		}
		e.inputs = append(e.inputs, t)
	}
	out, err := ort.NewTensor(ort.NewShape(1, int64(e.dimensions)), make([]float32, e.dimensions))
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	e.output = out

	bound := make([]ort.ArbitraryTensor, len(e.inputs))
	for i, t := range e.inputs {
		bound[i] = t
	}
	session, err := ort.NewAdvancedSession(cfg.ModelPath, onnxInputs, onnxOutputs,
		bound, []ort.ArbitraryTensor{e.output}, nil)
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("create onnx session for %s: %w", cfg.ModelPath, err)
	}
	e.session = session
	e.logger.Info("onnx model loaded",
		zap.String("model", cfg.ModelPath),
		zap.Int("dimensions", e.dimensions),
		zap.Int("max_tokens", e.maxTokens),
	)
	return e, nil
}

// Embed runs one inference and returns the L2-normalized output.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, fmt.Errorf("onnx embedder is closed: %w", models.ErrEmbeddingFailure)
	}

	start := time.Now()
	ids, mask, types := e.tokenizer.Tokenize(text, e.maxTokens)
	for i, data := range [][]int64{ids, mask, types} {
		copy(e.inputs[i].GetData(), data)
	}
	if err := e.session.Run(); err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderONNX, "error").Inc()
		return nil, fmt.Errorf("onnx inference: %v: %w", err, models.ErrEmbeddingFailure)
	}

	vec := make([]float32, e.dimensions)
	copy(vec, e.output.GetData())
	utils.NormalizeL2(vec)
	metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderONNX, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(ProviderONNX).Observe(time.Since(start).Seconds())
	return vec, nil
}

// EmbedBatch embeds texts one at a time; the session has a batch size of 1.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int { return e.dimensions }

// Close destroys the session and its tensors.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	e.destroyTensors()
	return err
}

func (e *ONNXEmbedder) destroyTensors() {
	for _, t := range e.inputs {
		_ = t.Destroy()
	}
	e.inputs = nil
	if e.output != nil {
		_ = e.output.Destroy()
		e.output = nil
	}
}
