package reply

import (
	"fmt"
	"math/rand/v2"

	"github.com/garyellow/jojo-linebot-go/internal/catalog"
	"github.com/garyellow/jojo-linebot-go/internal/intent"
	"github.com/garyellow/jojo-linebot-go/internal/media"
)

// Composer builds reply sequences from catalog content. It is safe for
// concurrent use when its random source is.
type Composer struct {
	cat      *catalog.Catalog
	pool     []catalog.MediaKey
	maxUnits int
	intN     func(n int) int
}

// Option configures a Composer.
type Option func(*Composer)

// WithIntN replaces the random source. fn must return a value in [0, n).
func WithIntN(fn func(n int) int) Option {
	return func(c *Composer) {
		if fn != nil {
			c.intN = fn
		}
	}
}

// WithMaxUnits sets the per-reply cap. Values outside [1, DefaultMaxUnits]
// are ignored.
func WithMaxUnits(n int) Option {
	return func(c *Composer) {
		if n >= 1 && n <= DefaultMaxUnits {
			c.maxUnits = n
		}
	}
}

// NewComposer returns a Composer over cat.
func NewComposer(cat *catalog.Catalog, opts ...Option) *Composer {
	c := &Composer{
		cat:      cat,
		pool:     cat.DrawPool(),
		maxUnits: DefaultMaxUnits,
		intN:     rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxUnits returns the per-reply cap in effect.
func (c *Composer) MaxUnits() int {
	return c.maxUnits
}

// Compose returns the reply for a. The result always has between 1 and
// MaxUnits units; images that table cannot serve become text fallbacks in
// place.
func (c *Composer) Compose(a intent.Action, table media.Table) Sequence {
	var seq Sequence

	switch a.Kind {
	case intent.KindHelp:
		seq = Sequence{c.help()}
	case intent.KindMenu:
		seq = Sequence{textUnit(c.cat.Texts.Menu, c.cat.Menu...)}
	case intent.KindShowMedia:
		seq = Sequence{c.image(a.Key, table)}
	case intent.KindDraw:
		seq = Sequence{c.draw(table)}
	case intent.KindFood:
		seq = Sequence{c.food()}
	case intent.KindScript:
		seq = c.script(a.Script, table)
	default:
		seq = Sequence{c.help()}
	}

	if len(seq) == 0 {
		seq = Sequence{c.help()}
	}
	return fit(seq, c.maxUnits)
}

func (c *Composer) help() Unit {
	return textUnit(c.cat.Texts.Help)
}

// image returns an image unit, or the media-unavailable text when table has
// no servable URL for key.
func (c *Composer) image(key catalog.MediaKey, table media.Table) Unit {
	u, ok := table.Lookup(key)
	if !ok {
		fallback := textUnit(fmt.Sprintf(c.cat.Texts.MediaUnavailable, key))
		fallback.Fallback = key
		return fallback
	}
	return Unit{Kind: UnitImage, ImageURL: u, PreviewURL: u}
}

func (c *Composer) draw(table media.Table) Unit {
	if len(c.pool) == 0 {
		return textUnit(c.cat.Texts.NoMedia)
	}
	return c.image(c.pool[c.pick(len(c.pool))], table)
}

func (c *Composer) food() Unit {
	f := c.cat.Food
	if len(f.Pool) == 0 {
		return c.help()
	}
	dish := f.Pool[c.pick(len(f.Pool))]
	return textUnit(fmt.Sprintf(f.Template, dish), Choice{Label: f.RedrawLabel, Text: f.Trigger})
}

func (c *Composer) script(name string, table media.Table) Sequence {
	steps := c.cat.Scripts[name]
	seq := make(Sequence, 0, len(steps))
	for _, step := range steps {
		if step.Image != "" {
			seq = append(seq, c.image(step.Image, table))
			continue
		}
		seq = append(seq, textUnit(step.Text, step.Choices...))
	}
	return seq
}

// pick returns an index in [0, n), clamping a misbehaving random source.
func (c *Composer) pick(n int) int {
	i := c.intN(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}
