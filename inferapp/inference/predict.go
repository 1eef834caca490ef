package inference

import (
	"context"
	"errors"
	"fmt"
)

// Record 추론 결과
type Record struct {
	Species      string   `json:"species"`
	Disease      string   `json:"disease"`
	Confidence   float64  `json:"confidence"`
	Severity     Severity `json:"severity"`
	QualityIndex float64  `json:"quality_index"`
}

func newRecord(species, disease string, confidence float64, severity Severity, quality float64) Record {
	return Record{
		Species:      species,
		Disease:      disease,
		Confidence:   round(confidence, 4),
		Severity:     severity,
		QualityIndex: round(quality, 2),
	}
}

// Predictor 이미지 정규화, 모델 추론, 레이블 해석, 점수 계산을 수행
type Predictor struct {
	handle     Handle
	classNames ClassNames
}

// NewPredictor 새로운 Predictor 생성
func NewPredictor(h Handle, cn ClassNames) *Predictor {
	return &Predictor{
		handle:     h,
		classNames: cn,
	}
}

// Predict 이미지 추론
func (p *Predictor) Predict(ctx context.Context, image []byte) (*Record, error) {
	m, ok := p.handle.Model()
	if !ok {
		return nil, ErrModelNotLoaded
	}

	t, err := Normalize(image)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores, err := m.Predict(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("Fail to run model: %w", err)
	}

	idx, err := argmax(scores)
	if err != nil {
		return nil, err
	}
	confidence := float64(scores[idx])

	species, disease := ParseLabel(p.classNames.Label(idx))
	severity, quality := Score(disease, confidence)
	record := newRecord(species, disease, confidence, severity, quality)

	return &record, nil
}

// argmax 최대 점수의 인덱스, 동점이면 낮은 인덱스
func argmax(scores []float32) (int, error) {
	if len(scores) == 0 {
		return 0, errors.New("Empty model output")
	}

	maxIdx := 0
	maxVal := scores[0]
	for i, val := range scores[1:] {
		if val > maxVal {
			maxVal = val
			maxIdx = i + 1
		}
	}

	return maxIdx, nil
}
