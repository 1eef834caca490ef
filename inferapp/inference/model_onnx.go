//go:build onnx
// +build onnx

package inference

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
	ort "github.com/yalue/onnxruntime_go"
)

// onnxModel 입출력 텐서가 세션에 묶여 있어 동시에 하나의 추론만 수행
type onnxModel struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func loadONNXModel(cfg ModelConfig) (Model, error) {
	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("Fail to initialize ONNX environment: %w", err)
	}

	inputName, outputName, numClasses, err := onnxIO(cfg)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, err
	}

	size := int64(constants.ImageSize)
	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, size, size, channels))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("Fail to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(numClasses)))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("Fail to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.Path,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("Fail to create ONNX session: %w", err)
	}

	return &onnxModel{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// onnxIO 모델에 선언된 입출력 이름과 클래스 수 확인
func onnxIO(cfg ModelConfig) (string, string, int, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.Path)
	if err != nil {
		return "", "", 0, fmt.Errorf("Fail to read ONNX model io: %w", err)
	}

	inputName, err := ioName(cfg.InputName, infoNames(inputs))
	if err != nil {
		return "", "", 0, err
	}
	outputName, err := ioName(cfg.OutputName, infoNames(outputs))
	if err != nil {
		return "", "", 0, err
	}

	var dims []int64
	for _, o := range outputs {
		if o.Name == outputName {
			dims = o.Dimensions
		}
	}
	numClasses, err := outputClasses(dims, cfg.NumClasses)
	if err != nil {
		return "", "", 0, err
	}
	if cfg.NumClasses > 0 && numClasses != cfg.NumClasses {
		log.Printf("Model has %d outputs, %d class names loaded", numClasses, cfg.NumClasses)
	}

	return inputName, outputName, numClasses, nil
}

func infoNames(infos []ort.InputOutputInfo) []string {
	names := make([]string, 0, len(infos))
	for _, i := range infos {
		names = append(names, i.Name)
	}

	return names
}

func (m *onnxModel) Predict(ctx context.Context, t *Tensor) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	copy(m.inputTensor.GetData(), t.Data)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("Inference failed: %w", err)
	}

	out := m.outputTensor.GetData()
	scores := make([]float32, len(out))
	copy(scores, out)

	return scores, nil
}

func (m *onnxModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputTensor.Destroy()
	m.outputTensor.Destroy()
	err := m.session.Destroy()
	ort.DestroyEnvironment()

	return err
}
