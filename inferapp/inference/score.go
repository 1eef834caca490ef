package inference

import "math"

// Severity 신뢰도에 따른 진단 확실성 구간
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

const (
	highThreshold   = 0.8
	mediumThreshold = 0.5

	minQuality = 10.0
	maxQuality = 95.0
)

// Score 질병명과 신뢰도로 severity와 quality index 계산
func Score(disease string, confidence float64) (Severity, float64) {
	return severityOf(confidence), qualityOf(disease, confidence)
}

func severityOf(confidence float64) Severity {
	switch {
	case confidence >= highThreshold:
		return SeverityHigh
	case confidence >= mediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func qualityOf(disease string, confidence float64) float64 {
	if IsHealthy(disease) {
		return math.Min(maxQuality, confidence*100)
	}

	return clampQuality((1 - confidence) * 100)
}

func clampQuality(q float64) float64 {
	return math.Max(minQuality, math.Min(maxQuality, q))
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
