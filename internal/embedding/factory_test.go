package embedding

import (
	"context"
	"testing"
)

func TestNew(t *testing.T) {
	e, err := New(Options{Dimensions: 32, CacheSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("expected cached embedder, got %T", e)
	}
	v, err := e.Embed(context.Background(), "hidden fees")
	if err != nil || len(v) != 32 {
		t.Errorf("Embed = %d dims, %v", len(v), err)
	}

	if _, err := New(Options{Provider: "word2vec"}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := New(Options{Provider: ProviderOpenAI, Dimensions: 8}); err == nil {
		t.Error("expected error for openai without key")
	}
}
