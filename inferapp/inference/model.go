package inference

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
)

var (
	// ErrModelNotLoaded 모델 없이 추론을 요청
	ErrModelNotLoaded = errors.New("Model not loaded")
	// ErrBackendUnavailable 빌드에 포함되지 않은 모델 런타임
	ErrBackendUnavailable = errors.New("Model backend is not compiled in")
)

// Model 추론 모델 런타임
type Model interface {
	// Predict 입력 텐서에 대한 클래스별 점수 반환
	Predict(ctx context.Context, t *Tensor) ([]float32, error)
	Close() error
}

// ModelConfig 모델 로드 설정정보
type ModelConfig struct {
	Path    string
	Backend string

	// ONNX 입출력 이름 및 런타임 라이브러리
	InputName   string
	OutputName  string
	LibraryPath string

	// NumClasses 모델 출력 차원을 알 수 없을 때 사용
	NumClasses int
}

// Handle 로드 된 모델 또는 모델 없음
type Handle struct {
	model   Model
	backend string
}

// Loaded 로드 된 모델의 handle
func Loaded(m Model, backend string) Handle {
	if m == nil {
		return NotLoaded()
	}

	return Handle{model: m, backend: backend}
}

// NotLoaded 모델 없음
func NotLoaded() Handle {
	return Handle{}
}

// IsLoaded 모델 로드 여부
func (h Handle) IsLoaded() bool {
	return h.model != nil
}

// Model 로드 된 모델 반환
func (h Handle) Model() (Model, bool) {
	return h.model, h.model != nil
}

// Backend 모델 런타임 이름, 모델이 없으면 빈 문자열
func (h Handle) Backend() string {
	return h.backend
}

func (h Handle) close() error {
	if h.model == nil {
		return nil
	}

	return h.model.Close()
}

// LoadModel 설정에 따라 모델을 로드, 실패하면 NotLoaded 반환
func LoadModel(cfg ModelConfig) Handle {
	if cfg.Path == "" {
		log.Print("Model path is not configured, using fallback")
		return NotLoaded()
	}

	if _, err := os.Stat(cfg.Path); err != nil {
		log.Printf("Model file not found at %s, using fallback", cfg.Path)
		return NotLoaded()
	}

	backend := resolveBackend(cfg)

	var (
		m   Model
		err error
	)
	switch backend {
	case constants.BackendTensorflow:
		m, err = loadTFModel(cfg)
	case constants.BackendONNX:
		m, err = loadONNXModel(cfg)
	default:
		err = fmt.Errorf("Unknown model backend: %s", backend)
	}

	if err != nil {
		log.Printf("Fail to load model(%s): %s", cfg.Path, err)
		return NotLoaded()
	}

	log.Printf("Model loaded from %s (%s)", cfg.Path, backend)

	return Loaded(m, backend)
}

func resolveBackend(cfg ModelConfig) string {
	if cfg.Backend != "" {
		return cfg.Backend
	}

	if strings.HasSuffix(strings.ToLower(cfg.Path), ".onnx") {
		return constants.BackendONNX
	}

	return constants.BackendTensorflow
}

// ioName 설정된 이름이 모델에 있는지 확인, 비어 있으면 첫 번째 이름 사용
func ioName(want string, names []string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("Model has no input or output")
	}
	if want == "" {
		return names[0], nil
	}
	for _, n := range names {
		if n == want {
			return want, nil
		}
	}

	return "", fmt.Errorf("%s not found in model (%s)", want, strings.Join(names, ", "))
}

// outputClasses 출력 shape의 마지막 차원, 동적 차원이면 fallback 사용
func outputClasses(dims []int64, fallback int) (int, error) {
	if len(dims) > 0 && dims[len(dims)-1] > 0 {
		return int(dims[len(dims)-1]), nil
	}
	if fallback > 0 {
		return fallback, nil
	}

	return 0, errors.New("Number of classes is unknown")
}
