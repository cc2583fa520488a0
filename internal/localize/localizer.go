package localize

import (
	"context"
	"strings"

	"github.com/mgpai22/promo/internal/logging"
	"github.com/mgpai22/promo/internal/narration"
	"github.com/mgpai22/promo/internal/timeline"
)

// Localizer translates the storyboard copy and voiceover in one request and
// falls back to the English text on any failure.
type Localizer struct {
	translator Translator
	logger     *logging.Logger
}

func NewLocalizer(translator Translator, logger *logging.Logger) *Localizer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Localizer{translator: translator, logger: logger}
}

// where a translated string is written back
type slot struct {
	section int // -1 for the script
	field   string
	index   int
}

// Localize returns translated copies of sections and script. The inputs are
// never modified; ok is false when the English text was kept.
func (l *Localizer) Localize(
	ctx context.Context,
	sections []timeline.Section,
	script narration.Script,
) ([]timeline.Section, narration.Script, bool) {
	outSections := append([]timeline.Section(nil), sections...)
	outScript := append(narration.Script(nil), script...)

	items, slots := collect(sections, script)
	if len(items) == 0 || l.translator == nil {
		return outSections, outScript, false
	}

	l.logger.Infow("translating", "strings", len(items))

	results, err := l.translator.Translate(ctx, items)
	if err != nil {
		l.logger.Warnw("translation failed, keeping English text", "error", err)
		return outSections, outScript, false
	}

	byIndex := make(map[int]string, len(results))
	for _, r := range results {
		byIndex[r.Index] = strings.TrimSpace(r.Text)
	}
	for i, s := range slots {
		text, found := byIndex[i]
		if !found || text == "" {
			l.logger.Warnw("translation incomplete, keeping English text", "missing", i)
			return append([]timeline.Section(nil), sections...), append(narration.Script(nil), script...), false
		}
		switch {
		case s.section < 0:
			outScript[s.index] = text
		case s.field == "title":
			outSections[s.section].Title = text
		default:
			outSections[s.section].Subtitle = text
		}
	}

	return outSections, outScript, true
}

// collect numbers every translatable string; URLs are left alone
func collect(sections []timeline.Section, script narration.Script) ([]Item, []slot) {
	var items []Item
	var slots []slot

	add := func(text string, s slot) {
		if strings.TrimSpace(text) == "" || strings.Contains(text, "://") {
			return
		}
		items = append(items, Item{Index: len(slots), Text: text})
		slots = append(slots, s)
	}

	for i, s := range sections {
		add(s.Title, slot{section: i, field: "title"})
		add(s.Subtitle, slot{section: i, field: "subtitle"})
	}
	for i, p := range script {
		add(p, slot{section: -1, index: i})
	}
	return items, slots
}
