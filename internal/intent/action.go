// Package intent resolves inbound LINE events to bot actions.
package intent

import (
	"fmt"
	"strings"

	"github.com/garyellow/jojo-linebot-go/internal/catalog"
	domerrors "github.com/garyellow/jojo-linebot-go/internal/errors"
)

// Kind enumerates the actions the bot can answer with.
type Kind int

// Action kinds. The zero value is not a valid kind.
const (
	KindHelp Kind = iota + 1
	KindMenu
	KindShowMedia
	KindDraw
	KindFood
	KindScript
)

// String returns the metric label for k.
func (k Kind) String() string {
	switch k {
	case KindHelp:
		return "help"
	case KindMenu:
		return "menu"
	case KindShowMedia:
		return "media"
	case KindDraw:
		return "draw"
	case KindFood:
		return "food"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// Action is the resolved intent of an event. Key is set for KindShowMedia
// and Script for KindScript.
type Action struct {
	Kind   Kind
	Key    catalog.MediaKey
	Script string
}

// String renders a in the catalog's reference form, e.g. "media:歐拉歐拉".
func (a Action) String() string {
	switch a.Kind {
	case KindShowMedia:
		return "media:" + string(a.Key)
	case KindScript:
		return "script:" + a.Script
	default:
		return a.Kind.String()
	}
}

// ParseAction parses a catalog action reference: help, menu, draw, food,
// media:<key> or script:<name>. Whether the key or script exists is checked
// by NewResolver.
func ParseAction(ref string) (Action, error) {
	switch ref {
	case "help":
		return Action{Kind: KindHelp}, nil
	case "menu":
		return Action{Kind: KindMenu}, nil
	case "draw":
		return Action{Kind: KindDraw}, nil
	case "food":
		return Action{Kind: KindFood}, nil
	}

	prefix, arg, ok := strings.Cut(ref, ":")
	if ok && arg != "" {
		switch prefix {
		case "media":
			return Action{Kind: KindShowMedia, Key: catalog.MediaKey(arg)}, nil
		case "script":
			return Action{Kind: KindScript, Script: arg}, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %q", domerrors.ErrUnknownAction, ref)
}
