package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/harrison-roh/plant-disease-inference/inferapp/inference"
	"github.com/spf13/cobra"
)

const (
	classNamesTxt  = "class_names.txt"
	classNamesJSON = "class_names.json"
)

func newLabelsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Inspect and export class names",
	}
	cmd.AddCommand(newLabelsListCmd(configPath), newLabelsExportCmd(configPath))

	return cmd
}

func loadClassNames(configPath string, o *overrides) (inference.ClassNames, error) {
	cfg, err := loadConfig(configPath, o)
	if err != nil {
		return inference.ClassNames{}, err
	}

	return inference.LoadClassNames(cfg.ClassNamesPath)
}

func newLabelsListCmd(configPath *string) *cobra.Command {
	o := &overrides{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print class names with decoded species and disease",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cn, err := loadClassNames(*configPath, o)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "# %d class names (%s)\n", cn.Len(), cn.Source)
			fmt.Fprintln(w, "INDEX\tLABEL\tSPECIES\tDISEASE")
			for idx, label := range cn.Labels() {
				species, disease := inference.ParseLabel(label)
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", idx, label, species, disease)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&o.classNamesPath, "class-names", "", "Path for class names file")

	return cmd
}

func newLabelsExportCmd(configPath *string) *cobra.Command {
	o := &overrides{}
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write class_names.txt and class_names.json for the inference service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cn, err := loadClassNames(*configPath, o)
			if err != nil {
				return err
			}

			txtPath, jsonPath, err := exportClassNames(outDir, cn)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d class names (%s):\n  - %s\n  - %s\n",
				cn.Len(), cn.Source, txtPath, jsonPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.classNamesPath, "class-names", "", "Path for class names file")
	cmd.Flags().StringVar(&outDir, "out", "./models", "Output directory")

	return cmd
}

// exportClassNames 모델 출력 순서대로 레이블을 txt, json으로 저장
func exportClassNames(dir string, cn inference.ClassNames) (string, string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", "", err
	}

	labels := cn.Labels()

	txtPath := filepath.Join(dir, classNamesTxt)
	txt := strings.Join(labels, "\n")
	if len(labels) > 0 {
		txt += "\n"
	}
	if err := ioutil.WriteFile(txtPath, []byte(txt), 0644); err != nil {
		return "", "", err
	}

	j, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		return "", "", err
	}
	jsonPath := filepath.Join(dir, classNamesJSON)
	if err := ioutil.WriteFile(jsonPath, j, 0644); err != nil {
		return "", "", err
	}

	return txtPath, jsonPath, nil
}
