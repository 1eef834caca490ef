//go:build !tensorflow
// +build !tensorflow

package inference

import (
	"fmt"

	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
)

// loadTFModel tensorflow 빌드 태그 없이 빌드 된 경우
func loadTFModel(cfg ModelConfig) (Model, error) {
	return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, constants.BackendTensorflow)
}
