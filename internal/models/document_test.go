package models

import (
	"errors"
	"math"
	"testing"
)

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"valid", Record{ID: "a", Text: "late fee", Metadata: Metadata{"product": "Credit card", "chunk_index": 0}}, false},
		{"empty id", Record{ID: "", Text: "x"}, true},
		{"empty text", Record{ID: "a", Text: "  "}, true},
		{"nested metadata", Record{ID: "a", Text: "x", Metadata: Metadata{"tags": []string{"a"}}}, true},
		{"map metadata", Record{ID: "a", Text: "x", Metadata: Metadata{"m": map[string]interface{}{}}}, true},
		{"nan metadata", Record{ID: "a", Text: "x", Metadata: Metadata{"score": math.NaN()}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrSchemaViolation) {
				t.Errorf("expected ErrSchemaViolation, got %v", err)
			}
		})
	}
}

func TestMetadata_EncodeDecodeKeepsIntegers(t *testing.T) {
	in := Metadata{"product": "Mortgage", "chunk_index": 2, "score": 0.5, "active": true}
	data, err := EncodeMetadata(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeMetadata(data)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := out["chunk_index"].(int64); !ok || v != 2 {
		t.Errorf("chunk_index = %#v, want int64(2)", out["chunk_index"])
	}
	if v, ok := out["score"].(float64); !ok || v != 0.5 {
		t.Errorf("score = %#v", out["score"])
	}
	if out["active"] != true {
		t.Errorf("active = %#v", out["active"])
	}
	if out.String("product") != "Mortgage" {
		t.Errorf("product = %q", out.String("product"))
	}
}

func TestMetadata_String(t *testing.T) {
	m := Metadata{"i": int64(7), "f": 3.0, "g": 2.5, "s": "CA", "n": nil}
	cases := map[string]string{"i": "7", "f": "3", "g": "2.5", "s": "CA", "n": "", "missing": ""}
	for k, want := range cases {
		if got := m.String(k); got != want {
			t.Errorf("String(%q) = %q, want %q", k, got, want)
		}
	}
}
