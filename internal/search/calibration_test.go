package search

import (
	"math"
	"testing"

	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/internal/vector"
)

func TestCosineRelevance(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 100},
		{0.25, 75},
		{1, 0},
		{1.8, 0},
		{-0.1, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := CosineRelevance(tt.distance); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CosineRelevance(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestL2Relevance(t *testing.T) {
	if got := L2Relevance(0); got != 100 {
		t.Errorf("L2Relevance(0) = %v", got)
	}
	if got := L2Relevance(1); got != 50 {
		t.Errorf("L2Relevance(1) = %v", got)
	}
	if got := L2Relevance(1e9); got <= 0 || got > 1 {
		t.Errorf("L2Relevance(1e9) = %v", got)
	}
}

func TestCalibratorFor(t *testing.T) {
	if got := CalibratorFor(vector.MetricCosine).Relevance(0.5); got != 50 {
		t.Errorf("cosine = %v", got)
	}
	if got := CalibratorFor(vector.MetricL2).Relevance(3); got != 25 {
		t.Errorf("l2 = %v", got)
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		relevance float64
		want      string
	}{
		{100, models.ConfidenceHigh},
		{70.01, models.ConfidenceHigh},
		{70, models.ConfidenceMedium},
		{40.5, models.ConfidenceMedium},
		{40, models.ConfidenceLow},
		{0, models.ConfidenceLow},
	}
	for _, tt := range tests {
		if got := Confidence(tt.relevance); got != tt.want {
			t.Errorf("Confidence(%v) = %s, want %s", tt.relevance, got, tt.want)
		}
	}
}
