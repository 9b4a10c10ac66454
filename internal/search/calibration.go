package search

import (
	"math"

	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/internal/vector"
)

// Calibrator maps a raw distance to a relevance percentage in [0, 100].
type Calibrator interface {
	Relevance(distance float64) float64
}

// CalibratorFunc adapts a function to Calibrator.
type CalibratorFunc func(distance float64) float64

// Relevance calls f.
func (f CalibratorFunc) Relevance(distance float64) float64 { return f(distance) }

// CosineRelevance is 100 - 100*distance, clamped to [0, 100].
func CosineRelevance(distance float64) float64 {
	return clampPercent(100 - distance*100)
}

// L2Relevance is 100 / (1 + distance).
func L2Relevance(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return clampPercent(100 / (1 + distance))
}

// CalibratorFor returns the calibration strategy of a metric.
func CalibratorFor(m vector.Metric) Calibrator {
	if m == vector.MetricL2 {
		return CalibratorFunc(L2Relevance)
	}
	return CalibratorFunc(CosineRelevance)
}

// Confidence bands a relevance: high above 70, medium above 40, low otherwise.
func Confidence(relevance float64) string {
	switch {
	case relevance > 70:
		return models.ConfidenceHigh
	case relevance > 40:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
