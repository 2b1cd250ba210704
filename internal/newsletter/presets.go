package newsletter

import "strings"

// Preset bundles the per-newsletter settings: the route-tag aliases that
// select it, TTS parameters, and feed placement.
type Preset struct {
	Name      string
	RouteTags []string
	TTSModel  string
	TTSVoice  string
	Category  string
	FeedSlug  string
}

// DefaultPreset catches every route tag no preset claims.
var DefaultPreset = Preset{
	Name:     "General Newsletter",
	TTSModel: "tts-1",
	TTSVoice: "alloy",
	Category: "News",
	FeedSlug: "general",
}

var presets = []Preset{
	{
		Name:      "Money Stuff",
		RouteTags: []string{"levine", "money-stuff", "moneystuff"},
		TTSModel:  "tts-1",
		TTSVoice:  "onyx",
		Category:  "Business",
		FeedSlug:  "levine",
	},
	{
		Name:      "Slow Boring",
		RouteTags: []string{"yglesias", "slow-boring", "slowboring"},
		TTSModel:  "tts-1",
		TTSVoice:  "echo",
		Category:  "News",
		FeedSlug:  "yglesias",
	},
	{
		Name:      "Silver Bulletin",
		RouteTags: []string{"silver", "silver-bulletin", "natesilver"},
		TTSModel:  "tts-1",
		TTSVoice:  "fable",
		Category:  "News",
		FeedSlug:  "silver",
	},
}

// Presets returns a copy of the built-in preset list.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// ResolvePreset maps a route tag or one of its aliases to a preset, falling
// back to DefaultPreset for unknown and empty tags.
func ResolvePreset(tag string) Preset {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return DefaultPreset
	}
	for _, p := range presets {
		for _, alias := range p.RouteTags {
			if tag == alias {
				return p
			}
		}
	}
	return DefaultPreset
}
