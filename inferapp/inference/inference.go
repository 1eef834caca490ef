package inference

import (
	"context"
	"log"
	"math/rand"
)

// Config 추론 런타임 생성 설정정보
type Config struct {
	Model          ModelConfig
	ClassNamesPath string

	// Fallback 난수 source, nil이면 시각 기반
	RandSource rand.Source
}

// Inference 프로세스 전역의 추론 런타임, 생성 후에는 읽기 전용
type Inference struct {
	handle     Handle
	classNames ClassNames
	predictor  *Predictor
	fallback   *Fallback
}

// New 레이블과 모델을 로드하여 추론 런타임 생성
func New(c Config) (*Inference, error) {
	cn, err := LoadClassNames(c.ClassNamesPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d class names (%s)", cn.Len(), cn.Source)

	mcfg := c.Model
	if mcfg.NumClasses == 0 {
		mcfg.NumClasses = cn.Len()
	}
	h := LoadModel(mcfg)

	return NewWithHandle(h, cn, c.RandSource), nil
}

// NewWithHandle 이미 준비된 모델 handle과 레이블로 추론 런타임 생성
func NewWithHandle(h Handle, cn ClassNames, src rand.Source) *Inference {
	return &Inference{
		handle:     h,
		classNames: cn,
		predictor:  NewPredictor(h, cn),
		fallback:   NewFallback(src),
	}
}

// Infer 모델이 있으면 추론하고, 없으면 합성 결과 반환
func (i *Inference) Infer(ctx context.Context, image []byte) (rec Record, degraded bool, err error) {
	if !i.handle.IsLoaded() {
		return i.fallback.Predict(), true, nil
	}

	r, err := i.predictor.Predict(ctx, image)
	if err != nil {
		return Record{}, false, err
	}

	return *r, false, nil
}

// ModelLoaded 모델 로드 여부
func (i *Inference) ModelLoaded() bool {
	return i.handle.IsLoaded()
}

// Backend 모델 런타임 이름
func (i *Inference) Backend() string {
	return i.handle.Backend()
}

// ClassNames 로드 된 레이블 목록
func (i *Inference) ClassNames() ClassNames {
	return i.classNames
}

// Destroy 모델 해제
func (i *Inference) Destroy() {
	if err := i.handle.close(); err != nil {
		log.Printf("Model close failed: %s", err)
	} else if i.handle.IsLoaded() {
		log.Print("Model successfully closed")
	}
}
