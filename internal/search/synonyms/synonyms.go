// Package synonyms expands query tokens through a hand-curated, two-tier
// dictionary. True synonyms (шаурма/шаверма) carry the same scoring weight as
// the original token; soft expansions (капучино→кофе) are category-level
// relations that the scorer consults only as a last resort and at a reduced
// weight. The dictionary is configuration data, shipped as YAML, never
// derived from the catalog.
//
// Soft alternatives must be words distinct from their own key. The scorer
// always tries the literal token before any expansion, so an alternative
// that equals its key (or a stem variant of it) would match at full weight
// in the literal pass and the soft discount would never apply.
package synonyms

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDictionary []byte

type dictionaryFile struct {
	True map[string][]string `yaml:"true"`
	Soft map[string][]string `yaml:"soft"`
}

// Dictionary holds the loaded synonym tables. Immutable after load.
type Dictionary struct {
	trueSynonyms   map[string][]string
	softExpansions map[string][]string
}

// Load reads a dictionary from a YAML file. An empty path loads the embedded
// default dictionary.
func Load(path string) (*Dictionary, error) {
	data := defaultDictionary
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading synonyms file %s: %w", path, err)
		}
		data = fileData
	}
	return Parse(data)
}

// Parse builds a Dictionary from YAML bytes, lowercasing all entries and
// making the true-synonym table symmetric: if a token is listed as someone's
// alternative, the canonical form is reachable from it too.
func Parse(data []byte) (*Dictionary, error) {
	var file dictionaryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing synonyms: %w", err)
	}

	d := &Dictionary{
		trueSynonyms:   make(map[string][]string, len(file.True)*2),
		softExpansions: make(map[string][]string, len(file.Soft)),
	}
	for token, alts := range file.True {
		token = strings.ToLower(token)
		for _, alt := range alts {
			alt = strings.ToLower(alt)
			d.addTrue(token, alt)
			d.addTrue(alt, token)
		}
	}
	for token, expansions := range file.Soft {
		token = strings.ToLower(token)
		for _, exp := range expansions {
			d.softExpansions[token] = append(d.softExpansions[token], strings.ToLower(exp))
		}
	}
	return d, nil
}

// Default returns the embedded dictionary. It panics only if the embedded
// data is malformed, which a package test guards against.
func Default() *Dictionary {
	d, err := Parse(defaultDictionary)
	if err != nil {
		panic(fmt.Sprintf("embedded synonym dictionary invalid: %v", err))
	}
	return d
}

// Expand returns all matching variants for a query token: the token itself,
// its true synonyms, and its soft expansions, deduplicated, original first.
func (d *Dictionary) Expand(token string) []string {
	token = strings.ToLower(token)
	out := []string{token}
	seen := map[string]struct{}{token: {}}
	for _, syn := range d.trueSynonyms[token] {
		if _, dup := seen[syn]; !dup {
			seen[syn] = struct{}{}
			out = append(out, syn)
		}
	}
	for _, exp := range d.softExpansions[token] {
		if _, dup := seen[exp]; !dup {
			seen[exp] = struct{}{}
			out = append(out, exp)
		}
	}
	return out
}

// IsSoft reports whether matched is a soft (category-level) expansion of the
// query token. True synonyms are never soft.
func (d *Dictionary) IsSoft(queryToken, matched string) bool {
	for _, exp := range d.softExpansions[strings.ToLower(queryToken)] {
		if exp == strings.ToLower(matched) {
			return true
		}
	}
	return false
}

func (d *Dictionary) addTrue(token, alt string) {
	if token == alt {
		return
	}
	for _, existing := range d.trueSynonyms[token] {
		if existing == alt {
			return
		}
	}
	d.trueSynonyms[token] = append(d.trueSynonyms[token], alt)
}
