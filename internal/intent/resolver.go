package intent

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/garyellow/jojo-linebot-go/internal/catalog"
	"github.com/garyellow/jojo-linebot-go/internal/config"
	domerrors "github.com/garyellow/jojo-linebot-go/internal/errors"
)

// EventKind is the subset of LINE webhook events the bot answers.
type EventKind int

// Event kinds.
const (
	EventMessage EventKind = iota + 1
	EventPostback
	EventFollow
)

// String returns the metric label for k.
func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventPostback:
		return "postback"
	case EventFollow:
		return "follow"
	default:
		return "unknown"
	}
}

// Event is the platform-neutral view of an inbound event. ReplyToken,
// ChatID and UserID travel with it for dispatch; the resolver ignores them.
type Event struct {
	Kind       EventKind
	Text       string // message text
	Data       string // postback payload
	ReplyToken string
	ChatID     string
	UserID     string
}

// Resolver maps events to actions using a catalog. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	media        map[catalog.MediaKey]struct{}
	phrases      map[string]Action
	folded       map[string]Action
	postbacks    map[string]Action
	follow       Action
	hasFollow    bool
	maxDataBytes int
}

// NewResolver compiles the catalog's action references. Every reference
// must parse and point at an existing media key or script, and every
// postback choice in the catalog must resolve, so a bad catalog fails at
// startup instead of at reply time.
func NewResolver(cat *catalog.Catalog, maxPostbackBytes int) (*Resolver, error) {
	if maxPostbackBytes <= 0 {
		maxPostbackBytes = config.LINEMaxPostbackDataLength
	}
	r := &Resolver{
		media:        make(map[catalog.MediaKey]struct{}, len(cat.Media)),
		phrases:      make(map[string]Action, len(cat.Phrases)),
		folded:       make(map[string]Action, len(cat.FoldCase)),
		postbacks:    make(map[string]Action, len(cat.Postbacks)),
		maxDataBytes: maxPostbackBytes,
	}
	for key := range cat.Media {
		r.media[key] = struct{}{}
	}

	var errs []error
	compile := func(field, ref string) (Action, bool) {
		a, err := ParseAction(ref)
		if err == nil {
			err = checkTarget(cat, a)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return Action{}, false
		}
		return a, true
	}

	for phrase, ref := range cat.Phrases {
		if a, ok := compile("phrases."+phrase, ref); ok {
			r.phrases[phrase] = a
		}
	}
	for _, phrase := range cat.FoldCase {
		if a, ok := r.phrases[phrase]; ok {
			r.folded[catalog.Fold(phrase)] = a
		}
	}
	for act, ref := range cat.Postbacks {
		if a, ok := compile("postbacks."+act, ref); ok {
			r.postbacks[act] = a
		}
	}
	if cat.FollowAction != "" {
		r.follow, r.hasFollow = compile("follow_action", cat.FollowAction)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if a, ok := r.resolveText(cat.Food.Trigger); !ok || a.Kind != KindFood {
		errs = append(errs, fmt.Errorf("food.trigger: %q does not resolve to food", cat.Food.Trigger))
	}
	checkChoices := func(field string, choices []catalog.Choice) {
		for i, ch := range choices {
			if ch.Data == "" {
				continue
			}
			if _, ok := r.resolvePostback(ch.Data); !ok {
				errs = append(errs, fmt.Errorf("%s[%d]: postback %q resolves to no action: %w",
					field, i, ch.Data, domerrors.ErrUnknownAction))
			}
		}
	}
	checkChoices("menu", cat.Menu)
	for name, steps := range cat.Scripts {
		for i, step := range steps {
			checkChoices(fmt.Sprintf("scripts.%s[%d].choices", name, i), step.Choices)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

func checkTarget(cat *catalog.Catalog, a Action) error {
	switch a.Kind {
	case KindShowMedia:
		if !cat.HasMedia(a.Key) {
			return fmt.Errorf("%w: media key %q", domerrors.ErrUnknownAction, a.Key)
		}
	case KindScript:
		if _, ok := cat.Scripts[a.Script]; !ok {
			return fmt.Errorf("%w: script %q", domerrors.ErrUnknownAction, a.Script)
		}
	}
	return nil
}

// Resolve returns the action for ev, or false when the bot should stay
// silent. It is pure and deterministic.
func (r *Resolver) Resolve(ev Event) (Action, bool) {
	switch ev.Kind {
	case EventMessage:
		return r.resolveText(ev.Text)
	case EventPostback:
		return r.resolvePostback(ev.Data)
	case EventFollow:
		return r.follow, r.hasFollow
	default:
		return Action{}, false
	}
}

func (r *Resolver) resolveText(text string) (Action, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Action{}, false
	}
	if _, ok := r.media[catalog.MediaKey(text)]; ok {
		return Action{Kind: KindShowMedia, Key: catalog.MediaKey(text)}, true
	}
	if a, ok := r.phrases[text]; ok {
		return a, true
	}
	if len(r.folded) > 0 {
		if a, ok := r.folded[catalog.Fold(text)]; ok {
			return a, true
		}
	}
	return Action{}, false
}

func (r *Resolver) resolvePostback(data string) (Action, bool) {
	if data == "" || len(data) > r.maxDataBytes {
		return Action{}, false
	}
	values, err := url.ParseQuery(data)
	if err != nil {
		return Action{}, false
	}

	act := values.Get("act")
	if act == catalog.ShowAct {
		key := catalog.MediaKey(values.Get("key"))
		if _, ok := r.media[key]; ok {
			return Action{Kind: KindShowMedia, Key: key}, true
		}
		return Action{}, false
	}
	a, ok := r.postbacks[act]
	return a, ok
}
