package generation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffusedbrush/internal/generation"
	"diffusedbrush/internal/logging"
	"diffusedbrush/internal/services"
)

type scriptedGenerator struct {
	results []error
	calls   int
}

func (g *scriptedGenerator) Generate(context.Context, string, generation.Params) (generation.Image, error) {
	err := g.results[g.calls]
	g.calls++
	if err != nil {
		return generation.Image{}, err
	}
	return generation.Image{Data: []byte("png"), ContentType: "image/png"}, nil
}

func TestGenerateWithRetryRetriesContentRejection(t *testing.T) {
	gen := &scriptedGenerator{results: []error{generation.ErrContentRejected, generation.ErrContentRejected, nil}}
	image, err := generation.GenerateWithRetry(context.Background(), gen, "a fox", generation.Params{}, 3, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), image.Data)
	assert.Equal(t, 3, gen.calls)
}

func TestGenerateWithRetryExhaustionIsTransient(t *testing.T) {
	gen := &scriptedGenerator{results: []error{generation.ErrContentRejected, generation.ErrContentRejected, generation.ErrContentRejected}}
	_, err := generation.GenerateWithRetry(context.Background(), gen, "a fox", generation.Params{}, 3, logging.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrTransient))
	assert.Equal(t, 3, gen.calls)
}

func TestGenerateWithRetryStopsOnOtherErrors(t *testing.T) {
	boom := services.Wrap(services.ErrTransient, "stability", "generate", "http 500", nil)
	gen := &scriptedGenerator{results: []error{boom, nil}}
	_, err := generation.GenerateWithRetry(context.Background(), gen, "a fox", generation.Params{}, 3, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, gen.calls)
}
