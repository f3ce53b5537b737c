// Package catalog holds the bot's reply content as data: the vocabulary,
// help and menu texts, media paths, draw exclusions, food pool and scripts.
//
// The default catalog is embedded in the binary. A YAML file with the same
// shape can replace it at startup.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	domerrors "github.com/garyellow/jojo-linebot-go/internal/errors"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// MediaKey names an image in the catalog, e.g. "歐拉歐拉".
type MediaKey string

// Catalog is the validated, read-only reply content.
type Catalog struct {
	// SenderIcon is the media key used as the reply sender's icon. Optional.
	SenderIcon MediaKey `yaml:"sender_icon"`

	Texts Texts `yaml:"texts"`

	// Media maps each key to a path relative to the media origin.
	Media map[MediaKey]string `yaml:"media"`

	// Phrases maps literal message text to an action reference.
	Phrases map[string]string `yaml:"phrases"`

	// FoldCase lists phrases that also match case-insensitively.
	FoldCase []string `yaml:"fold_case"`

	// Postbacks maps the "act" postback parameter to an action reference.
	Postbacks map[string]string `yaml:"postbacks"`

	// FollowAction is the action reference answered to add-friend events.
	// Empty means no greeting.
	FollowAction string `yaml:"follow_action"`

	Menu    []Choice          `yaml:"menu"`
	Draw    Draw              `yaml:"draw"`
	Food    Food              `yaml:"food"`
	Scripts map[string][]Step `yaml:"scripts"`
}

// Texts are the fixed strings of the bot.
type Texts struct {
	Help string `yaml:"help"`
	Menu string `yaml:"menu"`

	// MediaUnavailable is a format string taking the media key.
	MediaUnavailable string `yaml:"media_unavailable"`

	// NoMedia is sent when the draw pool is empty.
	NoMedia string `yaml:"no_media"`
}

// Choice is an inline option. Exactly one of Data (a postback payload) and
// Text (a message sent on the user's behalf) is set.
type Choice struct {
	Label string `yaml:"label" json:"label"`
	Data  string `yaml:"data,omitempty" json:"data,omitempty"`
	Text  string `yaml:"text,omitempty" json:"text,omitempty"`
}

// Draw configures the random image draw.
type Draw struct {
	// Exclude lists narrative-only keys that are never drawn.
	Exclude []MediaKey `yaml:"exclude"`
}

// Food configures the "what to eat" picker.
type Food struct {
	Template    string   `yaml:"template"`
	Trigger     string   `yaml:"trigger"`
	RedrawLabel string   `yaml:"redraw_label"`
	Pool        []string `yaml:"pool"`
}

// Step is one message of a script: either text (with optional choices) or
// an image named by media key.
type Step struct {
	Text    string   `yaml:"text,omitempty"`
	Image   MediaKey `yaml:"image,omitempty"`
	Choices []Choice `yaml:"choices,omitempty"`
}

// Stats summarises a catalog for readiness reporting.
type Stats struct {
	Phrases   int `json:"phrases"`
	Media     int `json:"media"`
	Postbacks int `json:"postbacks"`
	Scripts   int `json:"scripts"`
	DrawPool  int `json:"draw_pool"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load returns the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domerrors.Wrap("catalog", "load", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, domerrors.Wrap("catalog", "load", fmt.Errorf("%s: %w", path, err))
	}
	return c, nil
}

// Parse decodes YAML into a Catalog and validates it. Unknown fields and
// duplicate keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", domerrors.ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// MediaKeys returns every media key in sorted order.
func (c *Catalog) MediaKeys() []MediaKey {
	keys := make([]MediaKey, 0, len(c.Media))
	for k := range c.Media {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// HasMedia reports whether key names a catalog image.
func (c *Catalog) HasMedia(key MediaKey) bool {
	_, ok := c.Media[key]
	return ok
}

// DrawPool returns the sorted media keys minus the draw exclusions.
func (c *Catalog) DrawPool() []MediaKey {
	pool := c.MediaKeys()
	return slices.DeleteFunc(pool, func(k MediaKey) bool {
		return slices.Contains(c.Draw.Exclude, k)
	})
}

// Stats returns counts describing the catalog.
func (c *Catalog) Stats() Stats {
	return Stats{
		Phrases:   len(c.Phrases),
		Media:     len(c.Media),
		Postbacks: len(c.Postbacks),
		Scripts:   len(c.Scripts),
		DrawPool:  len(c.DrawPool()),
	}
}
