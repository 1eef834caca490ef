package main

import (
	"os"

	"github.com/harrison-roh/plant-disease-inference/inferapp/config"
	"github.com/harrison-roh/plant-disease-inference/inferapp/inference"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// 설정 파일보다 우선하는 command line 옵션
type overrides struct {
	port           string
	modelPath      string
	modelBackend   string
	classNamesPath string
}

func (o *overrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.modelPath, "model", "", "Path for inference model")
	cmd.Flags().StringVar(&o.modelBackend, "backend", "", "Model backend (tensorflow|onnx)")
	cmd.Flags().StringVar(&o.classNamesPath, "class-names", "", "Path for class names file")
}

func (o *overrides) apply(cfg *config.Config) {
	if o.port != "" {
		cfg.Port = o.port
	}
	if o.modelPath != "" {
		cfg.Model.Path = o.modelPath
	}
	if o.modelBackend != "" {
		cfg.Model.Backend = o.modelBackend
	}
	if o.classNamesPath != "" {
		cfg.ClassNamesPath = o.classNamesPath
	}
}

func loadConfig(path string, o *overrides) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newInference(cfg *config.Config) (*inference.Inference, error) {
	return inference.New(inference.Config{
		Model: inference.ModelConfig{
			Path:        cfg.Model.Path,
			Backend:     cfg.Model.Backend,
			InputName:   cfg.Model.InputName,
			OutputName:  cfg.Model.OutputName,
			LibraryPath: cfg.Model.LibraryPath,
		},
		ClassNamesPath: cfg.ClassNamesPath,
	})
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "inferapp",
		Short:        "Plant leaf disease inference service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path for service config (yaml)")

	root.AddCommand(
		newServeCmd(&configPath),
		newPredictCmd(&configPath),
		newLabelsCmd(&configPath),
	)

	return root
}
