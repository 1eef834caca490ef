package inference

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	scores []float32
	err    error
	calls  int
	closed bool
}

func (m *fakeModel) Predict(ctx context.Context, t *Tensor) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	return m.scores, nil
}

func (m *fakeModel) Close() error {
	m.closed = true
	return nil
}

func leafPNG(t *testing.T) []byte {
	return encodePNG(t, solidNRGBA(40, 30, color.NRGBA{R: 30, G: 160, B: 40, A: 255}))
}

func TestPredict(t *testing.T) {
	scores := make([]float32, len(DefaultClassNames))
	scores[8] = 0.9 // Corn_(maize)___Common_rust
	m := &fakeModel{scores: scores}
	p := NewPredictor(Loaded(m, "fake"), NewClassNames(DefaultClassNames, SourceBuiltin))

	rec, err := p.Predict(context.Background(), leafPNG(t))
	require.NoError(t, err)
	require.Equal(t, 1, m.calls)
	require.Equal(t, Record{
		Species:      "Corn (maize)",
		Disease:      "Common rust",
		Confidence:   0.9,
		Severity:     SeverityHigh,
		QualityIndex: 10,
	}, *rec)
}

func TestPredictHealthy(t *testing.T) {
	scores := make([]float32, len(DefaultClassNames))
	scores[len(scores)-1] = 0.61234 // Tomato___Healthy
	p := NewPredictor(Loaded(&fakeModel{scores: scores}, "fake"), NewClassNames(DefaultClassNames, SourceBuiltin))

	rec, err := p.Predict(context.Background(), leafPNG(t))
	require.NoError(t, err)
	require.Equal(t, "Tomato", rec.Species)
	require.Equal(t, "Healthy", rec.Disease)
	require.Equal(t, 0.6123, rec.Confidence)
	require.Equal(t, SeverityMedium, rec.Severity)
	require.Equal(t, 61.23, rec.QualityIndex)
}

func TestPredictTieBreak(t *testing.T) {
	m := &fakeModel{scores: []float32{0.1, 0.4, 0.1, 0.4}}
	p := NewPredictor(Loaded(m, "fake"), NewClassNames([]string{"A___x", "B___y", "C___z", "D___w"}, SourceFile))

	rec, err := p.Predict(context.Background(), leafPNG(t))
	require.NoError(t, err)
	require.Equal(t, "B", rec.Species)
	require.Equal(t, SeverityLow, rec.Severity)
}

func TestPredictIndexOutOfRange(t *testing.T) {
	m := &fakeModel{scores: []float32{0.1, 0.2, 0.7}}
	p := NewPredictor(Loaded(m, "fake"), NewClassNames([]string{"A___x"}, SourceFile))

	rec, err := p.Predict(context.Background(), leafPNG(t))
	require.NoError(t, err)
	require.Equal(t, "Unknown", rec.Species)
	require.Equal(t, "Class 2", rec.Disease)
	require.Equal(t, SeverityMedium, rec.Severity)
}

func TestPredictModelNotLoaded(t *testing.T) {
	p := NewPredictor(NotLoaded(), NewClassNames(DefaultClassNames, SourceBuiltin))

	rec, err := p.Predict(context.Background(), leafPNG(t))
	require.Nil(t, rec)
	require.True(t, errors.Is(err, ErrModelNotLoaded))
}

func TestPredictErrors(t *testing.T) {
	cn := NewClassNames(DefaultClassNames, SourceBuiltin)

	m := &fakeModel{scores: []float32{1}}
	_, err := NewPredictor(Loaded(m, "fake"), cn).Predict(context.Background(), []byte("broken"))
	var decodeErr *ImageDecodeError
	require.True(t, errors.As(err, &decodeErr))
	require.Equal(t, 0, m.calls)

	runErr := errors.New("session exploded")
	_, err = NewPredictor(Loaded(&fakeModel{err: runErr}, "fake"), cn).Predict(context.Background(), leafPNG(t))
	require.True(t, errors.Is(err, runErr))

	_, err = NewPredictor(Loaded(&fakeModel{scores: []float32{}}, "fake"), cn).Predict(context.Background(), leafPNG(t))
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m = &fakeModel{scores: []float32{1}}
	_, err = NewPredictor(Loaded(m, "fake"), cn).Predict(ctx, leafPNG(t))
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, 0, m.calls)
}

func TestArgmax(t *testing.T) {
	idx, err := argmax([]float32{0.3})
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	idx, err = argmax([]float32{0.5, 0.5, 0.5})
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	idx, err = argmax([]float32{0.1, 0.2, 0.9, 0.9})
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	_, err = argmax(nil)
	require.Error(t, err)
}
