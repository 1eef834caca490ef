package inference

import (
	"testing"

	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	h := NotLoaded()
	require.False(t, h.IsLoaded())
	m, ok := h.Model()
	require.Nil(t, m)
	require.False(t, ok)
	require.Empty(t, h.Backend())
	require.NoError(t, h.close())

	require.False(t, Loaded(nil, "fake").IsLoaded())

	fm := &fakeModel{}
	h = Loaded(fm, "fake")
	require.True(t, h.IsLoaded())
	require.Equal(t, "fake", h.Backend())
	require.NoError(t, h.close())
	require.True(t, fm.closed)
}

func TestLoadModelMissing(t *testing.T) {
	require.False(t, LoadModel(ModelConfig{}).IsLoaded())
	require.False(t, LoadModel(ModelConfig{Path: "/nonexistent/model.onnx"}).IsLoaded())
}

func TestLoadModelUnknownBackend(t *testing.T) {
	h := LoadModel(ModelConfig{Path: t.TempDir(), Backend: "caffe"})
	require.False(t, h.IsLoaded())
}

func TestResolveBackend(t *testing.T) {
	require.Equal(t, constants.BackendONNX, resolveBackend(ModelConfig{Path: "/models/leaf.ONNX"}))
	require.Equal(t, constants.BackendTensorflow, resolveBackend(ModelConfig{Path: "/models/saved_model"}))
	require.Equal(t, constants.BackendTensorflow, resolveBackend(ModelConfig{Path: "/models/leaf.onnx", Backend: constants.BackendTensorflow}))
}

func TestIOName(t *testing.T) {
	name, err := ioName("", []string{"input_1", "mask"})
	require.NoError(t, err)
	require.Equal(t, "input_1", name)

	name, err = ioName("mask", []string{"input_1", "mask"})
	require.NoError(t, err)
	require.Equal(t, "mask", name)

	_, err = ioName("images", []string{"input_1"})
	require.Error(t, err)
	_, err = ioName("", nil)
	require.Error(t, err)
}

func TestOutputClasses(t *testing.T) {
	n, err := outputClasses([]int64{-1, 40}, 38)
	require.NoError(t, err)
	require.Equal(t, 40, n)

	n, err = outputClasses([]int64{-1, -1}, 38)
	require.NoError(t, err)
	require.Equal(t, 38, n)

	_, err = outputClasses(nil, 0)
	require.Error(t, err)
}
