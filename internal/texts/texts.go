// Package texts holds the user facing strings of the bot. Locales are
// embedded YAML files keyed by domain and key.
package texts

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackLanguage is consulted when the active language lacks a key.
const FallbackLanguage = "en"

//go:embed locales/*.yaml
var embedded embed.FS

type table map[string]map[string]string

// Catalog resolves (domain, key) pairs in one active language.
type Catalog struct {
	lang   string
	tables map[string]table
}

// Load parses every embedded locale and activates lang. An unknown lang
// falls back to English.
func Load(lang string) (*Catalog, error) {
	return load(embedded, lang)
}

func load(fsys fs.FS, lang string) (*Catalog, error) {
	files, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("texts: list locales: %w", err)
	}
	c := &Catalog{tables: make(map[string]table, len(files))}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("texts: read %s: %w", name, err)
		}
		var t table
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("texts: parse %s: %w", name, err)
		}
		c.tables[strings.TrimSuffix(path.Base(name), ".yaml")] = t
	}
	if _, ok := c.tables[FallbackLanguage]; !ok {
		return nil, fmt.Errorf("texts: missing %s locale", FallbackLanguage)
	}
	c.lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := c.tables[c.lang]; !ok {
		c.lang = FallbackLanguage
	}
	return c, nil
}

// Language returns the active language.
func (c *Catalog) Language() string { return c.lang }

// Languages lists the loaded locales.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.tables))
	for l := range c.tables {
		out = append(out, l)
	}
	return out
}

// Resolve returns the text of key in domain. Missing texts resolve to
// "domain.key" so a gap is visible but never fatal.
func (c *Catalog) Resolve(domain, key string) string {
	for _, l := range []string{c.lang, FallbackLanguage} {
		if s, ok := c.tables[l][domain][key]; ok && s != "" {
			return s
		}
	}
	return domain + "." + key
}

// Resolvef resolves a format string and applies args.
func (c *Catalog) Resolvef(domain, key string, args ...any) string {
	return fmt.Sprintf(c.Resolve(domain, key), args...)
}

// Missing lists the keys of lang that the fallback locale defines but
// lang does not, as "domain.key".
func (c *Catalog) Missing(lang string) []string {
	var out []string
	target := c.tables[lang]
	for domain, keys := range c.tables[FallbackLanguage] {
		for key := range keys {
			if target[domain][key] == "" {
				out = append(out, domain+"."+key)
			}
		}
	}
	return out
}
