package testsupport

import (
	"context"
	"fmt"
	"sync"

	"diffusedbrush/internal/generation"
	"diffusedbrush/internal/hosting"
)

// FakeGenerator returns scripted results, then succeeds.
type FakeGenerator struct {
	mu      sync.Mutex
	Errors  []error
	Prompts []string
}

var _ generation.Generator = (*FakeGenerator)(nil)

// Generate implements generation.Generator.
func (g *FakeGenerator) Generate(_ context.Context, prompt string, _ generation.Params) (generation.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	if len(g.Errors) > 0 {
		err := g.Errors[0]
		g.Errors = g.Errors[1:]
		if err != nil {
			return generation.Image{}, err
		}
	}
	return generation.Image{Data: []byte("image:" + prompt), ContentType: "image/png", Seed: int64(len(g.Prompts))}, nil
}

// Calls returns the number of Generate calls.
func (g *FakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Prompts)
}

// FakeHost hands out sequential links.
type FakeHost struct {
	mu     sync.Mutex
	Err    error
	Titles []string
}

var _ hosting.Host = (*FakeHost)(nil)

// Upload implements hosting.Host.
func (h *FakeHost) Upload(_ context.Context, _ []byte, title string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return "", h.Err
	}
	h.Titles = append(h.Titles, title)
	return fmt.Sprintf("https://i.imgur.com/img%d.png", len(h.Titles)), nil
}

// Uploads returns the number of successful uploads.
func (h *FakeHost) Uploads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Titles)
}
