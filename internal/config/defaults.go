package config

const (
	defaultWidth      = 1920
	defaultHeight     = 1080
	defaultFPS        = 30
	defaultBitrate    = "8000k"
	defaultPreset     = "medium"
	defaultVideoCodec = "libx264"
	defaultAudioCodec = "aac"
	defaultPixFmt     = "yuv420p"

	defaultBackgroundColor = "#1a1a2e"
	defaultTextColor       = "#ffffff"
	defaultAccentColor     = "#4ecdc4"
	defaultWebsiteColor    = "#ffd700"

	defaultNarrationProvider = "openai"
	defaultNarrationSpeed    = 1.0
	defaultLocalizeProvider  = "gemini"

	textWidthFraction = 0.8
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Video: Video{
			Width:      defaultWidth,
			Height:     defaultHeight,
			FPS:        defaultFPS,
			Bitrate:    defaultBitrate,
			Preset:     defaultPreset,
			VideoCodec: defaultVideoCodec,
			AudioCodec: defaultAudioCodec,
			PixFmt:     defaultPixFmt,
		},
		Palette: Palette{
			Background: defaultBackgroundColor,
			Text:       defaultTextColor,
			Accent:     defaultAccentColor,
			Website:    defaultWebsiteColor,
		},
		Paths: Paths{
			Root:           ".",
			ScreenshotsDir: "screenshots",
			AssetsDir:      "assets",
			OutputDir:      "promo",
			OutputFile:     "pixel_fish_tank_promo.mp4",
			VoiceoverFile:  "voiceover.mp3",
			CaptionsFile:   "pixel_fish_tank_promo.srt",
		},
		Fonts: Fonts{
			Paths: []string{
				"C:/Windows/Fonts/arial.ttf",
				"C:/Windows/Fonts/arialbd.ttf",
				"C:/Windows/Fonts/calibri.ttf",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
				"/System/Library/Fonts/Supplemental/Arial.ttf",
			},
		},
		Narration: Narration{
			Provider: defaultNarrationProvider,
			Speed:    defaultNarrationSpeed,
		},
		Localize: Localize{
			Provider: defaultLocalizeProvider,
		},
		Captions: true,
	}
}
