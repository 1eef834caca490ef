package inference

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithoutModel(t *testing.T) {
	i, err := New(Config{
		Model:      ModelConfig{Path: filepath.Join(t.TempDir(), "missing")},
		RandSource: rand.NewSource(1),
	})
	require.NoError(t, err)
	defer i.Destroy()

	require.False(t, i.ModelLoaded())
	require.Empty(t, i.Backend())
	require.Equal(t, SourceBuiltin, i.ClassNames().Source)
	require.Equal(t, len(DefaultClassNames), i.ClassNames().Len())
}

func TestNewClassNamesError(t *testing.T) {
	_, err := New(Config{ClassNamesPath: t.TempDir()})
	require.Error(t, err)
}

func TestInferDegraded(t *testing.T) {
	i := NewWithHandle(NotLoaded(), NewClassNames(DefaultClassNames, SourceBuiltin), rand.NewSource(7))

	// 모델이 없으면 이미지를 해석하지 않음
	rec, degraded, err := i.Infer(context.Background(), []byte("not an image"))
	require.NoError(t, err)
	require.True(t, degraded)
	require.NotEmpty(t, rec.Species)
	require.NotEmpty(t, rec.Disease)
}

func TestInferWithModel(t *testing.T) {
	m := &fakeModel{scores: []float32{0.05, 0.95}}
	i := NewWithHandle(Loaded(m, "fake"), NewClassNames([]string{"Potato___Early_blight", "Potato___Healthy"}, SourceFile), nil)

	rec, degraded, err := i.Infer(context.Background(), leafPNG(t))
	require.NoError(t, err)
	require.False(t, degraded)
	require.Equal(t, "Potato", rec.Species)
	require.Equal(t, "Healthy", rec.Disease)
	require.Equal(t, SeverityHigh, rec.Severity)
	require.Equal(t, 95.0, rec.QualityIndex)

	_, _, err = i.Infer(context.Background(), []byte{})
	var decodeErr *ImageDecodeError
	require.True(t, errors.As(err, &decodeErr))

	i.Destroy()
	require.True(t, m.closed)
}
