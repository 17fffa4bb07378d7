package prompt

import (
	"math/rand/v2"
	"strings"

	"diffusedbrush/internal/config"
)

// Prompt is a composed generation prompt.
type Prompt struct {
	Subject  string
	Keywords []string
	Text     string
}

// Composer draws keywords from a fixed pool.
type Composer struct {
	pool   []string
	min    int
	max    int
	suffix string
	intN   func(n int) int
}

// Option customizes a Composer.
type Option func(*Composer)

// WithRand replaces the random source; intN must return a value in [0, n).
func WithRand(intN func(n int) int) Option {
	return func(c *Composer) {
		if intN != nil {
			c.intN = intN
		}
	}
}

// NewComposer builds a composer over pool. The draw size is clamped to the
// pool size.
func NewComposer(pool []string, minKeywords, maxKeywords int, suffix string, opts ...Option) *Composer {
	pool = dedupe(pool)
	if minKeywords < 0 {
		minKeywords = 0
	}
	if maxKeywords < minKeywords {
		maxKeywords = minKeywords
	}
	c := &Composer{
		pool:   pool,
		min:    min(minKeywords, len(pool)),
		max:    min(maxKeywords, len(pool)),
		suffix: strings.TrimSpace(suffix),
		intN:   rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewComposerFromConfig resolves the keyword pool from config.
func NewComposerFromConfig(cfg *config.Config) (*Composer, error) {
	pool := cfg.Prompt.Keywords
	if path := strings.TrimSpace(cfg.Prompt.KeywordsFile); path != "" {
		loaded, err := LoadKeywordsFile(path)
		if err != nil {
			return nil, err
		}
		pool = loaded
	}
	if len(pool) == 0 {
		pool = DefaultKeywords
	}
	return NewComposer(pool, cfg.Prompt.MinKeywords, cfg.Prompt.MaxKeywords, cfg.Prompt.QualitySuffix), nil
}

// PoolSize reports the number of distinct keywords available.
func (c *Composer) PoolSize() int {
	return len(c.pool)
}

// Compose returns "subject, kw1, ..., suffix" with a fresh keyword draw.
func (c *Composer) Compose(subject string) Prompt {
	subject = strings.TrimSpace(subject)
	keywords := c.draw()
	parts := make([]string, 0, len(keywords)+2)
	parts = append(parts, subject)
	parts = append(parts, keywords...)
	if c.suffix != "" {
		parts = append(parts, c.suffix)
	}
	return Prompt{
		Subject:  subject,
		Keywords: keywords,
		Text:     strings.Join(parts, ", "),
	}
}

// draw is a partial Fisher-Yates shuffle over a copy of the pool.
func (c *Composer) draw() []string {
	count := c.min
	if span := c.max - c.min; span > 0 {
		count += c.intN(span + 1)
	}
	if count == 0 {
		return nil
	}
	scratch := append([]string(nil), c.pool...)
	for i := 0; i < count; i++ {
		j := i + c.intN(len(scratch)-i)
		scratch[i], scratch[j] = scratch[j], scratch[i]
	}
	return scratch[:count]
}
