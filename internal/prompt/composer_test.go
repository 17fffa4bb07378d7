package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffusedbrush/internal/config"
)

func TestComposeDrawsBoundedDistinctKeywords(t *testing.T) {
	composer := NewComposer(DefaultKeywords, 2, 4, "highly detailed")
	for i := 0; i < 200; i++ {
		p := composer.Compose("  a lighthouse in a storm ")
		require.GreaterOrEqual(t, len(p.Keywords), 2)
		require.LessOrEqual(t, len(p.Keywords), 4)

		seen := map[string]bool{}
		for _, kw := range p.Keywords {
			require.False(t, seen[kw], "keyword %q drawn twice", kw)
			seen[kw] = true
			require.Contains(t, DefaultKeywords, kw)
		}
		assert.Equal(t, "a lighthouse in a storm", p.Subject)
		assert.True(t, strings.HasPrefix(p.Text, "a lighthouse in a storm, "))
		assert.True(t, strings.HasSuffix(p.Text, ", highly detailed"))
	}
}

func TestComposeClampsToPoolSize(t *testing.T) {
	composer := NewComposer([]string{"watercolor", "Watercolor", "ink"}, 2, 4, "")
	require.Equal(t, 2, composer.PoolSize())

	p := composer.Compose("cat")
	assert.ElementsMatch(t, []string{"watercolor", "ink"}, p.Keywords)
	assert.Len(t, strings.Split(p.Text, ", "), 3)
}

func TestComposeDeterministicWithRand(t *testing.T) {
	composer := NewComposer([]string{"a", "b", "c", "d", "e"}, 2, 4, "sfx", WithRand(func(int) int { return 0 }))
	p := composer.Compose("subject")
	assert.Equal(t, []string{"a", "b"}, p.Keywords)
	assert.Equal(t, "subject, a, b, sfx", p.Text)
}

func TestComposeEmptyPool(t *testing.T) {
	p := NewComposer(nil, 2, 4, "sfx").Compose("subject")
	assert.Empty(t, p.Keywords)
	assert.Equal(t, "subject, sfx", p.Text)
}

func TestLoadKeywordsFileFormats(t *testing.T) {
	dir := t.TempDir()
	mapping := filepath.Join(dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(mapping, []byte("keywords:\n  - pastel\n  - noir\n  - pastel\n"), 0o644))
	seq := filepath.Join(dir, "seq.yaml")
	require.NoError(t, os.WriteFile(seq, []byte("- gothic\n- ' '\n- pop art\n"), 0o644))
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("keywords: []\n"), 0o644))

	got, err := LoadKeywordsFile(mapping)
	require.NoError(t, err)
	assert.Equal(t, []string{"pastel", "noir"}, got)

	got, err = LoadKeywordsFile(seq)
	require.NoError(t, err)
	assert.Equal(t, []string{"gothic", "pop art"}, got)

	_, err = LoadKeywordsFile(empty)
	require.Error(t, err)
}

func TestNewComposerFromConfigPrecedence(t *testing.T) {
	cfg := config.Default()
	composer, err := NewComposerFromConfig(&cfg)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultKeywords), composer.PoolSize())

	cfg.Prompt.Keywords = []string{"one", "two", "three"}
	composer, err = NewComposerFromConfig(&cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, composer.PoolSize())

	path := filepath.Join(t.TempDir(), "kw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- solo\n"), 0o644))
	cfg.Prompt.KeywordsFile = path
	composer, err = NewComposerFromConfig(&cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, composer.PoolSize())
}
