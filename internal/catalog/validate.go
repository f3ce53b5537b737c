package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/garyellow/jojo-linebot-go/internal/config"
	domerrors "github.com/garyellow/jojo-linebot-go/internal/errors"
)

// LINE limits the catalog content must respect.
const (
	MaxScriptSteps     = 5   // messages per reply
	MaxChoices         = 4   // quick reply items shown per message in this bot
	MaxChoiceLabel     = 20  // quick reply action label, in characters
	MaxChoiceTextRunes = 300 // message action text, in characters
)

// ShowAct is the reserved postback act that displays the image named by the
// "key" parameter.
const ShowAct = "show"

// Fold returns the case-folded form of s used for fold-case phrases.
// A Caser is stateful, so a fresh one is built per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Validate checks the catalog's internal consistency and reports every
// problem found. Action references are checked by the intent resolver.
func (c *Catalog) Validate() error {
	var p problems
	fail := p.add

	if strings.TrimSpace(c.Texts.Help) == "" {
		fail("texts.help", "must not be empty")
	}
	if strings.TrimSpace(c.Texts.Menu) == "" {
		fail("texts.menu", "must not be empty")
	}
	if strings.Count(c.Texts.MediaUnavailable, "%s") != 1 {
		fail("texts.media_unavailable", "must contain exactly one %%s for the media key")
	}
	if strings.TrimSpace(c.Texts.NoMedia) == "" {
		fail("texts.no_media", "must not be empty")
	}

	for key, path := range c.Media {
		field := "media." + string(key)
		switch {
		case strings.TrimSpace(string(key)) != string(key) || key == "":
			fail(field, "key must be non-empty without surrounding whitespace")
		case strings.TrimSpace(path) == "":
			fail(field, "path must not be empty")
		case strings.Contains(path, "://"):
			fail(field, "path must be relative to the media origin, got %q", path)
		case slices.Contains(strings.Split(path, "/"), ".."):
			fail(field, "path must not contain '..'")
		}
	}

	for phrase, ref := range c.Phrases {
		field := "phrases." + phrase
		switch {
		case phrase == "" || strings.TrimSpace(phrase) != phrase:
			fail(field, "phrase must be non-empty without surrounding whitespace")
		case c.HasMedia(MediaKey(phrase)):
			fail(field, "phrase collides with a media key")
		case ref == "":
			fail(field, "action reference must not be empty")
		}
	}

	folded := make(map[string]string, len(c.FoldCase))
	for _, phrase := range c.FoldCase {
		if _, ok := c.Phrases[phrase]; !ok {
			fail("fold_case", "%q is not a phrase", phrase)
			continue
		}
		f := Fold(phrase)
		if other, dup := folded[f]; dup {
			fail("fold_case", "%q and %q fold to the same text", other, phrase)
			continue
		}
		folded[f] = phrase
	}

	for act, ref := range c.Postbacks {
		field := "postbacks." + act
		switch {
		case act == "":
			fail(field, "act must not be empty")
		case act == ShowAct:
			fail(field, "act %q is reserved", ShowAct)
		case ref == "":
			fail(field, "action reference must not be empty")
		}
	}

	validateChoices(&p, "menu", c.Menu, 1)

	for _, key := range c.Draw.Exclude {
		if !c.HasMedia(key) {
			fail("draw.exclude", "%q is not a media key", key)
		}
	}

	if len(c.Food.Pool) == 0 {
		fail("food.pool", "must not be empty")
	}
	for i, dish := range c.Food.Pool {
		if strings.TrimSpace(dish) == "" {
			fail(fmt.Sprintf("food.pool[%d]", i), "must not be empty")
		}
	}
	if strings.Count(c.Food.Template, "%s") != 1 {
		fail("food.template", "must contain exactly one %%s for the dish")
	}
	if _, ok := c.Phrases[c.Food.Trigger]; !ok {
		fail("food.trigger", "%q is not a phrase", c.Food.Trigger)
	}
	if c.Food.RedrawLabel == "" || utf8.RuneCountInString(c.Food.RedrawLabel) > MaxChoiceLabel {
		fail("food.redraw_label", "must be 1-%d characters", MaxChoiceLabel)
	}

	for name, steps := range c.Scripts {
		c.validateScript(&p, name, steps)
	}

	if c.SenderIcon != "" && !c.HasMedia(c.SenderIcon) {
		fail("sender_icon", "%q is not a media key", c.SenderIcon)
	}

	return errors.Join(p...)
}

type problems []error

func (p *problems) add(field, format string, args ...any) {
	*p = append(*p, domerrors.NewValidationError(field, fmt.Sprintf(format, args...)))
}

func (c *Catalog) validateScript(p *problems, name string, steps []Step) {
	field := "scripts." + name
	if name == "" {
		p.add(field, "name must not be empty")
	}
	if len(steps) == 0 || len(steps) > MaxScriptSteps {
		p.add(field, "must have 1-%d steps, got %d", MaxScriptSteps, len(steps))
	}
	for i, step := range steps {
		stepField := fmt.Sprintf("%s[%d]", field, i)
		hasText, hasImage := step.Text != "", step.Image != ""
		switch {
		case hasText == hasImage:
			p.add(stepField, "exactly one of text and image must be set")
		case hasImage && !c.HasMedia(step.Image):
			p.add(stepField, "%q is not a media key", step.Image)
		case hasImage && len(step.Choices) > 0:
			p.add(stepField, "choices are only allowed on text steps")
		}
		if len(step.Choices) > 0 {
			validateChoices(p, stepField+".choices", step.Choices, 0)
		}
	}
}

func validateChoices(p *problems, field string, choices []Choice, minCount int) {
	if len(choices) < minCount || len(choices) > MaxChoices {
		p.add(field, "must have %d-%d choices, got %d", minCount, MaxChoices, len(choices))
	}
	for i, ch := range choices {
		chField := fmt.Sprintf("%s[%d]", field, i)
		if ch.Label == "" || utf8.RuneCountInString(ch.Label) > MaxChoiceLabel {
			p.add(chField, "label must be 1-%d characters", MaxChoiceLabel)
		}
		switch {
		case (ch.Data == "") == (ch.Text == ""):
			p.add(chField, "exactly one of data and text must be set")
		case len(ch.Data) > config.LINEMaxPostbackDataLength:
			p.add(chField, "data exceeds %d bytes", config.LINEMaxPostbackDataLength)
		case utf8.RuneCountInString(ch.Text) > MaxChoiceTextRunes:
			p.add(chField, "text exceeds %d characters", MaxChoiceTextRunes)
		}
	}
}
