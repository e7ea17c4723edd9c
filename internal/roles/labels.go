package roles

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var vocabularyYAML []byte

type vocabulary struct {
	labels   map[language.Tag]map[Role]string
	synonyms map[string]Role
	matcher  language.Matcher
}

var supported = []language.Tag{language.Arabic, language.English}

var vocab = mustLoad(vocabularyYAML)

func mustLoad(data []byte) *vocabulary {
	v, err := load(data)
	if err != nil {
		panic(fmt.Sprintf("roles: %v", err))
	}
	return v
}

func load(data []byte) (*vocabulary, error) {
	var file struct {
		Labels   map[string]map[string]string `yaml:"labels"`
		Synonyms map[string]string            `yaml:"synonyms"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}

	known := make(map[Role]bool, len(all))
	for _, r := range all {
		known[r] = true
	}

	v := &vocabulary{
		labels:   map[language.Tag]map[Role]string{},
		synonyms: map[string]Role{},
		matcher:  language.NewMatcher(supported),
	}
	for _, tag := range supported {
		base, _ := tag.Base()
		table, ok := file.Labels[base.String()]
		if !ok {
			return nil, fmt.Errorf("locale %s has no labels", base)
		}
		out := make(map[Role]string, len(table))
		for code, label := range table {
			r := Role(code)
			if !known[r] {
				return nil, fmt.Errorf("locale %s labels unknown role %q", base, code)
			}
			if strings.TrimSpace(label) == "" {
				return nil, fmt.Errorf("locale %s has blank label for %q", base, code)
			}
			out[r] = label
		}
		for _, r := range all {
			if _, ok := out[r]; !ok {
				return nil, fmt.Errorf("locale %s is missing a label for %q", base, r)
			}
		}
		v.labels[tag] = out
	}
	for word, code := range file.Synonyms {
		r := Role(code)
		if !known[r] {
			return nil, fmt.Errorf("synonym %q points at unknown role %q", word, code)
		}
		v.synonyms[Normalize(word)] = r
	}
	return v, nil
}

// Label renders a role for display in the default (Arabic) locale.
func Label(raw, description string) string {
	return LabelIn(language.Arabic, raw, description)
}

// LabelIn renders a role in the closest supported locale. An "other" role
// with a description shows the description verbatim; unmapped roles show the
// raw string.
func LabelIn(tag language.Tag, raw, description string) string {
	r, err := Parse(raw)
	if err != nil {
		return raw
	}
	if r == Other && strings.TrimSpace(description) != "" {
		return description
	}
	_, idx, _ := vocab.matcher.Match(tag)
	return vocab.labels[supported[idx]][r]
}
