// Package reply composes the message sequence answered for a resolved
// action. Composition is pure: no I/O, no logging, no panics.
package reply

import (
	"fmt"

	"github.com/garyellow/jojo-linebot-go/internal/catalog"
)

// MaxChoices is the most inline choices a unit carries.
const MaxChoices = catalog.MaxChoices

// DefaultMaxUnits is the LINE per-reply message cap.
const DefaultMaxUnits = 5

// UnitKind distinguishes text and image units.
type UnitKind int

// Unit kinds.
const (
	UnitText UnitKind = iota + 1
	UnitImage
)

// String returns "text" or "image".
func (k UnitKind) String() string {
	switch k {
	case UnitText:
		return "text"
	case UnitImage:
		return "image"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k UnitKind) MarshalText() ([]byte, error) {
	if k != UnitText && k != UnitImage {
		return nil, fmt.Errorf("invalid unit kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *UnitKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "text":
		*k = UnitText
	case "image":
		*k = UnitImage
	default:
		return fmt.Errorf("invalid unit kind %q", text)
	}
	return nil
}

// Choice is an inline option attached to a text unit.
type Choice = catalog.Choice

// Unit is one outbound message.
type Unit struct {
	Kind UnitKind `json:"kind"`

	// Text units
	Text    string   `json:"text,omitempty"`
	Choices []Choice `json:"choices,omitempty"`

	// Image units
	ImageURL   string `json:"image_url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`

	// Fallback names the media key when this text unit replaces an image
	// that could not be served.
	Fallback catalog.MediaKey `json:"fallback,omitempty"`
}

// Sequence is the ordered reply to one event, sent in a single call.
type Sequence []Unit

// Fallbacks returns the media keys that were degraded to text, in order.
func (s Sequence) Fallbacks() []catalog.MediaKey {
	var keys []catalog.MediaKey
	for _, u := range s {
		if u.Fallback != "" {
			keys = append(keys, u.Fallback)
		}
	}
	return keys
}

func textUnit(text string, choices ...Choice) Unit {
	u := Unit{Kind: UnitText, Text: text}
	if len(choices) > 0 {
		u.Choices = append([]Choice(nil), choices[:min(len(choices), MaxChoices)]...)
	}
	return u
}

func (u Unit) mergeable() bool {
	return u.Kind == UnitText && len(u.Choices) == 0 && u.Fallback == ""
}

// fit enforces 1 <= len(seq) <= maxUnits. It first merges adjacent
// choice-less text units from the front, then truncates; when truncating,
// the last kept unit takes over the choices of the dropped final unit if
// it is a text unit without choices of its own.
func fit(seq Sequence, maxUnits int) Sequence {
	if len(seq) <= maxUnits {
		return seq
	}

	out := append(Sequence(nil), seq...)
	for i := 0; i+1 < len(out) && len(out) > maxUnits; {
		if out[i].mergeable() && out[i+1].mergeable() {
			out[i].Text += "\n\n" + out[i+1].Text
			out = append(out[:i+1], out[i+2:]...)
			continue
		}
		i++
	}
	if len(out) <= maxUnits {
		return out
	}

	final := out[len(out)-1]
	out = out[:maxUnits]
	last := &out[maxUnits-1]
	if len(final.Choices) > 0 && last.Kind == UnitText && len(last.Choices) == 0 {
		last.Choices = final.Choices
	}
	return out
}
