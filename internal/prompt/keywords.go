package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultKeywords is the built-in descriptor pool.
var DefaultKeywords = []string{
	"oil painting",
	"watercolor",
	"digital art",
	"concept art",
	"matte painting",
	"ink illustration",
	"charcoal sketch",
	"impressionism",
	"art nouveau",
	"surrealism",
	"cyberpunk",
	"steampunk",
	"vaporwave",
	"synthwave",
	"ukiyo-e",
	"baroque",
	"low poly",
	"isometric",
	"cinematic lighting",
	"golden hour",
	"volumetric lighting",
	"dramatic shadows",
	"soft focus",
	"octane render",
	"unreal engine",
	"studio ghibli",
	"fantasy",
	"dreamlike",
	"moody",
	"vibrant colors",
	"pastel colors",
	"monochrome",
	"ultra wide angle",
	"macro photography",
	"35mm film",
	"8k",
}

type keywordsFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywordsFile reads a YAML keyword pool. The document may be a bare
// sequence or a mapping with a top-level "keywords" sequence.
func LoadKeywordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse keywords file %s: %w", path, err)
	}
	var raw []string
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode keywords file %s: %w", path, err)
		}
	} else {
		var doc keywordsFile
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode keywords file %s: %w", path, err)
		}
		raw = doc.Keywords
	}
	keywords := dedupe(raw)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("keywords file %s contains no keywords", path)
	}
	return keywords, nil
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
