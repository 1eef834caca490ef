//go:build !onnx
// +build !onnx

package inference

import (
	"fmt"

	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
)

// loadONNXModel onnx 빌드 태그 없이 빌드 된 경우
func loadONNXModel(cfg ModelConfig) (Model, error) {
	return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, constants.BackendONNX)
}
