//go:build tensorflow
// +build tensorflow

package inference

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path"

	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	"gopkg.in/yaml.v2"
)

const (
	defaultTFInput  = "serving_default_input_1"
	defaultTFOutput = "StatefulPartitionedCall"
)

// SavedModel 디렉토리의 config.yaml
type tfModelConfig struct {
	Tags                []string `yaml:"tags"`
	InputOperationName  string   `yaml:"inputOperationName"`
	OutputOperationName string   `yaml:"outputOperationName"`
}

type tfModel struct {
	savedModel *tf.SavedModel
	input      tf.Output
	output     tf.Output
}

func loadTFModel(cfg ModelConfig) (Model, error) {
	var (
		mcfg       tfModelConfig
		savedModel *tf.SavedModel
		err        error
	)

	mcfg, err = readTFModelConfig(cfg)
	if err != nil {
		return nil, err
	}

	if savedModel, err = tf.LoadSavedModel(cfg.Path, mcfg.Tags, nil); err != nil {
		return nil, fmt.Errorf("Fail to load saved model: %w", err)
	}

	inputOp := savedModel.Graph.Operation(mcfg.InputOperationName)
	outputOp := savedModel.Graph.Operation(mcfg.OutputOperationName)
	if inputOp == nil || outputOp == nil {
		savedModel.Session.Close()
		return nil, fmt.Errorf("Cannot find operation: input(%s) output(%s)",
			mcfg.InputOperationName, mcfg.OutputOperationName)
	}

	return &tfModel{
		savedModel: savedModel,
		input:      inputOp.Output(0),
		output:     outputOp.Output(0),
	}, nil
}

func readTFModelConfig(cfg ModelConfig) (tfModelConfig, error) {
	mcfg := tfModelConfig{
		Tags:                []string{"serve"},
		InputOperationName:  cfg.InputName,
		OutputOperationName: cfg.OutputName,
	}
	if mcfg.InputOperationName == "" {
		mcfg.InputOperationName = defaultTFInput
	}
	if mcfg.OutputOperationName == "" {
		mcfg.OutputOperationName = defaultTFOutput
	}

	cfgBytes, err := ioutil.ReadFile(path.Join(cfg.Path, "config.yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return mcfg, nil
	} else if err != nil {
		return mcfg, err
	}

	if err := yaml.Unmarshal(cfgBytes, &mcfg); err != nil {
		return mcfg, fmt.Errorf("Fail to parse model config: %w", err)
	}

	return mcfg, nil
}

func (m *tfModel) Predict(ctx context.Context, t *Tensor) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input, err := tf.NewTensor(nestTensor(t))
	if err != nil {
		return nil, err
	}

	results, err := m.savedModel.Session.Run(
		map[tf.Output]*tf.Tensor{
			m.input: input,
		},
		[]tf.Output{
			m.output,
		},
		nil,
	)
	if err != nil {
		return nil, err
	}

	probabilities, ok := results[0].Value().([][]float32)
	if !ok || len(probabilities) == 0 {
		return nil, fmt.Errorf("Unexpected output shape: %v", results[0].Shape())
	}

	return probabilities[0], nil
}

func (m *tfModel) Close() error {
	return m.savedModel.Session.Close()
}

// nestTensor tf.NewTensor 입력을 위해 [1][h][w][c] 형태로 변환
func nestTensor(t *Tensor) [][][][]float32 {
	size := constants.ImageSize
	batch := make([][][][]float32, 1)
	batch[0] = make([][][]float32, size)
	for y := 0; y < size; y++ {
		row := make([][]float32, size)
		for x := 0; x < size; x++ {
			i := (y*size + x) * channels
			row[x] = t.Data[i : i+channels]
		}
		batch[0][y] = row
	}

	return batch
}
