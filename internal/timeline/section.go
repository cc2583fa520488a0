package timeline

import (
	"github.com/mgpai22/promo/internal/config"
)

// Kind selects the layout rule applied to a section.
type Kind string

const (
	KindFeature Kind = "feature"
	KindCTA     Kind = "cta"
	KindEnding  Kind = "ending"
)

// Section is one fixed segment of the video. Start is filled in by Schedule.
type Section struct {
	Name     string
	Kind     Kind
	Title    string
	Subtitle string
	// screenshot for feature sections, app icon for the CTA
	Image    string
	Duration float64
	Start    float64
}

// End is the absolute time the section stops.
func (s Section) End() float64 {
	return s.Start + s.Duration
}

// on-screen copy that is not part of any section's title or subtitle
const (
	WebsiteLabel = "Visit us at:"
	WebsiteURL   = "https://pixel-fish-tank.web.app"
)

// Storyboard returns the fixed section list, already scheduled.
func Storyboard(cfg config.Config) []Section {
	return Schedule([]Section{
		{
			Name:     "intro",
			Kind:     KindFeature,
			Title:    "Pixel Fish Tank",
			Subtitle: "A cozy virtual pet game",
			Image:    cfg.FeaturePath(),
			Duration: 5,
		},
		{
			Name:     "tank",
			Kind:     KindFeature,
			Title:    "Care for Your Fish",
			Subtitle: "Feed, clean, and watch your fish grow",
			Image:    cfg.ScreenshotPath("tankview.png"),
			Duration: 6,
		},
		{
			Name:     "minigames",
			Kind:     KindFeature,
			Title:    "Play Mini-Games",
			Subtitle: "Earn coins and XP through fun challenges",
			Image:    cfg.ScreenshotPath("minigames.png"),
			Duration: 6,
		},
		{
			Name:     "decorations",
			Kind:     KindFeature,
			Title:    "Customize Your Tank",
			Subtitle: "Decorate with plants, rocks, and toys",
			Image:    cfg.ScreenshotPath("decorationsview.png"),
			Duration: 6,
		},
		{
			Name:     "store",
			Kind:     KindFeature,
			Title:    "Shop & Upgrade",
			Subtitle: "Unlock new items and decorations",
			Image:    cfg.ScreenshotPath("storview.png"),
			Duration: 6,
		},
		{
			Name:     "offline",
			Kind:     KindFeature,
			Title:    "Offline-First",
			Subtitle: "Play anywhere, anytime - no internet needed",
			Image:    cfg.ScreenshotPath("widgets.png"),
			Duration: 6,
		},
		{
			Name:     "cta",
			Kind:     KindCTA,
			Title:    "Available Soon on Google Play Store",
			Subtitle: WebsiteLabel,
			Image:    cfg.IconPath(),
			Duration: 8,
		},
		{
			Name:     "ending",
			Kind:     KindEnding,
			Title:    "Pixel Fish Tank",
			Subtitle: "Start your virtual pet journey today!",
			Duration: 5,
		},
	})
}

// Schedule returns a copy where each section starts when the previous ends.
func Schedule(sections []Section) []Section {
	out := make([]Section, len(sections))
	var t float64
	for i, s := range sections {
		s.Start = t
		out[i] = s
		t += s.Duration
	}
	return out
}

// TotalDuration sums section durations.
func TotalDuration(sections []Section) float64 {
	var total float64
	for _, s := range sections {
		total += s.Duration
	}
	return total
}
