package inference

import (
	"math/rand"
	"sync"
	"time"
)

type fallbackEntry struct {
	species    string
	disease    string
	confidence float64
}

var fallbackTable = []fallbackEntry{
	{"Tomato", "Early Blight", 0.85},
	{"Tomato", "Late Blight", 0.78},
	{"Potato", "Early Blight", 0.82},
	{"Apple", "Apple Scab", 0.75},
	{"Corn", "Common Rust", 0.88},
}

const fallbackNoise = 5.0

// Fallback 모델이 없을 때 사용하는 합성 추론
type Fallback struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewFallback src가 nil이면 현재 시각을 seed로 사용
func NewFallback(src rand.Source) *Fallback {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &Fallback{rnd: rand.New(src)}
}

// Predict 고정 목록에서 임의로 선택한 결과 반환
func (f *Fallback) Predict() Record {
	f.mu.Lock()
	e := fallbackTable[f.rnd.Intn(len(fallbackTable))]
	noise := (f.rnd.Float64()*2 - 1) * fallbackNoise
	f.mu.Unlock()

	quality := clampQuality((1-e.confidence)*100 + noise)

	return newRecord(e.species, e.disease, e.confidence, fallbackSeverity(e.confidence), quality)
}

// fallbackSeverity 기준값 초과(>)로 판단, Score와 다름
func fallbackSeverity(confidence float64) Severity {
	switch {
	case confidence > 0.8:
		return SeverityHigh
	case confidence > 0.6:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
