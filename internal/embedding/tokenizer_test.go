package embedding

import (
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, _ := tok.Tokenize("hello world", 10)
	if len(ids) != 10 {
		t.Errorf("len(ids)=%d", len(ids))
	}
	if ids[0] != 101 {
		t.Errorf("expected CLS 101, got %d", ids[0])
	}
	if ids[3] != 102 {
		t.Errorf("expected SEP at 3, got %d", ids[3])
	}
	if attn[0] != 1 || attn[4] != 0 {
		t.Errorf("attention mask = %v", attn)
	}
	for _, id := range ids[1:3] {
		if id < 1000 || id >= vocabSize {
			t.Errorf("token id %d out of range", id)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Credit-card  charges: $500, UNAUTHORIZED!")
	want := []string{"credit", "card", "charges", "500", "unauthorized"}
	if len(got) != len(want) {
		t.Fatalf("Tokens = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
	if len(Tokens("  ...  ")) != 0 {
		t.Error("punctuation-only text should have no tokens")
	}
}

func TestTokenHash(t *testing.T) {
	if TokenHash("abc") != TokenHash("abc") {
		t.Error("hash should be deterministic")
	}
	if TokenHash("abc") == TokenHash("abd") {
		t.Error("distinct tokens should hash differently")
	}
}
