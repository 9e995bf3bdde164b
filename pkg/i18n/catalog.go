// Package i18n loads YAML locale files and serves them as the translator
// used by translate comparisons.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uicheck/pkg/core"
)

// Catalog is the flattened key/value table of one locale. Nested mappings
// become dotted keys: {home: {title: Hi}} is "home.title".
type Catalog struct {
	tag     language.Tag
	entries map[string]string
}

// New wraps an already flat table.
func New(tag language.Tag, entries map[string]string) *Catalog {
	c := &Catalog{tag: tag, entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		c.entries[k] = v
	}
	return c
}

// Parse reads a locale document. A document whose only top-level key is
// the locale itself (en: {...}) is unwrapped.
func Parse(tag language.Tag, data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, core.ErrInvalidConfig.WithMessagef("locale %s: invalid yaml", tag).WithCause(err)
	}
	if len(raw) == 1 {
		for k, v := range raw {
			if nested, ok := v.(map[string]any); ok && strings.EqualFold(k, tag.String()) {
				raw = nested
			}
		}
	}

	c := &Catalog{tag: tag, entries: make(map[string]string)}
	if err := flatten("", raw, c.entries); err != nil {
		return nil, core.ErrInvalidConfig.WithMessagef("locale %s: %v", tag, err)
	}
	return c, nil
}

func flatten(prefix string, v any, out map[string]string) error {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch x := v.(type) {
	case map[string]any:
		for k, child := range x {
			if err := flatten(join(k), child, out); err != nil {
				return err
			}
		}
	case []any:
		for i, child := range x {
			if err := flatten(join(strconv.Itoa(i)), child, out); err != nil {
				return err
			}
		}
	case nil:
		out[prefix] = ""
	default:
		s, err := cast.ToStringE(x)
		if err != nil {
			return fmt.Errorf("key %q: %w", prefix, err)
		}
		out[prefix] = s
	}
	return nil
}

// Translate implements compare.Translator.
func (c *Catalog) Translate(key string) (string, bool) {
	s, ok := c.entries[key]
	return s, ok
}

// Tag returns the locale of the catalog.
func (c *Catalog) Tag() language.Tag {
	return c.tag
}

// Keys lists every key, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Available lists the locales present in dir as <tag>.yaml or <tag>.yml.
func Available(dir string) (map[language.Tag]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	found := make(map[language.Tag]string)
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(e.Name(), ext))
		if err != nil {
			continue
		}
		found[tag] = filepath.Join(dir, e.Name())
	}
	return found, nil
}

// Load picks the locale file in dir closest to locale (en-GB falls back to
// en) and parses it.
func Load(dir, locale string) (*Catalog, error) {
	want, err := language.Parse(locale)
	if err != nil {
		return nil, core.ErrInvalidConfig.WithMessagef("invalid locale %q", locale).WithCause(err)
	}
	files, err := Available(dir)
	if err != nil {
		return nil, err
	}

	tags := make([]language.Tag, 0, len(files))
	for t := range files {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].String() < tags[j].String() })
	if len(tags) == 0 {
		return nil, core.ErrInvalidConfig.WithMessagef("no locale files in %s", dir)
	}

	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return nil, core.ErrInvalidConfig.WithMessagef("no locale matching %q in %s", locale, dir)
	}
	tag := tags[idx]

	data, err := os.ReadFile(files[tag])
	if err != nil {
		return nil, fmt.Errorf("read locale: %w", err)
	}
	return Parse(tag, data)
}
