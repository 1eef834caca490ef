package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harrison-roh/plant-disease-inference/inferapp/inference"
	"github.com/spf13/cobra"
)

type predictOutput struct {
	File     string           `json:"file"`
	Degraded bool             `json:"degraded"`
	Result   inference.Record `json:"result"`
}

func newPredictCmd(configPath *string) *cobra.Command {
	o := &overrides{}

	cmd := &cobra.Command{
		Use:   "predict FILE...",
		Short: "Run inference on local image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, o)
			if err != nil {
				return err
			}

			i, err := newInference(cfg)
			if err != nil {
				return err
			}
			defer i.Destroy()

			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for _, file := range args {
				out, err := predictFile(cmd.Context(), i, file, cfg.InferTimeout)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", file, err)
					failed++
					continue
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	o.register(cmd)

	return cmd
}

func predictFile(ctx context.Context, i *inference.Inference, file string, timeout time.Duration) (*predictOutput, error) {
	image, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	record, degraded, err := i.Infer(ctx, image)
	if err != nil {
		return nil, err
	}

	return &predictOutput{
		File:     filepath.Base(file),
		Degraded: degraded,
		Result:   record,
	}, nil
}
