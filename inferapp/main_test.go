package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison-roh/plant-disease-inference/inferapp/config"
	"github.com/harrison-roh/plant-disease-inference/inferapp/inference"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir string) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 12, 12))))

	path := filepath.Join(dir, "leaf.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestPredictCommandDegraded(t *testing.T) {
	dir := t.TempDir()
	file := writePNG(t, dir)

	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"predict", file,
		"--model", filepath.Join(dir, "missing-model"),
		"--class-names", filepath.Join(dir, "missing.txt")})
	require.NoError(t, root.Execute())

	var out predictOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Equal(t, "leaf.png", out.File)
	require.True(t, out.Degraded)
	require.NotEmpty(t, out.Result.Species)
}

func TestPredictCommandMissingFile(t *testing.T) {
	dir := t.TempDir()

	var stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&stderr)
	root.SetArgs([]string{"predict", filepath.Join(dir, "nope.png"), "--model", filepath.Join(dir, "missing")})
	require.Error(t, root.Execute())
	require.Contains(t, stderr.String(), "nope.png")
}

func TestLabelsExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	cn := inference.NewClassNames(inference.DefaultClassNames, inference.SourceBuiltin)

	txtPath, jsonPath, err := exportClassNames(dir, cn)
	require.NoError(t, err)

	loaded, err := inference.LoadClassNames(txtPath)
	require.NoError(t, err)
	require.Equal(t, inference.SourceFile, loaded.Source)
	require.Equal(t, inference.DefaultClassNames, loaded.Labels())

	b, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var labels []string
	require.NoError(t, json.Unmarshal(b, &labels))
	require.Equal(t, inference.DefaultClassNames, labels)
}

func TestLabelsListCommand(t *testing.T) {
	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"labels", "list", "--class-names", filepath.Join(t.TempDir(), "missing.txt")})
	require.NoError(t, root.Execute())

	out := stdout.String()
	require.True(t, strings.HasPrefix(out, "# 38 class names (builtin)"))
	require.Contains(t, out, "Corn (maize)")
	require.Contains(t, out, "Common rust")
}

func TestOverrides(t *testing.T) {
	cfg := config.Default()
	o := &overrides{port: "8081", modelPath: "/m.onnx", modelBackend: "onnx", classNamesPath: "/n.txt"}
	o.apply(cfg)

	require.Equal(t, "8081", cfg.Port)
	require.Equal(t, "/m.onnx", cfg.Model.Path)
	require.Equal(t, "onnx", cfg.Model.Backend)
	require.Equal(t, "/n.txt", cfg.ClassNamesPath)
	require.NoError(t, cfg.Validate())
}
