package subtitles

import "github.com/clipforge/clipforge/internal/types"

// Presets are the caption stylesheets selectable by name on POST
// /api/cut's captions field. "off" is handled by the caller (no
// overlay rendered at all) and has no entry here.
var Presets = map[string]types.CaptionStyle{
	"classic": {
		FontName:        "Inter",
		FontSize:        64,
		PrimaryColor:    "&H00FFFFFF",
		OutlineColor:    "&H00000000",
		BackgroundColor: "&H64000000",
		Bold:            false,
		Outline:         3,
		Shadow:          1,
		Position:        types.PositionBottom,
		Animation:       types.AnimNone,
	},
	"tiktok": {
		FontName:        "Inter",
		FontSize:        78,
		PrimaryColor:    "&H00FFFFFF",
		OutlineColor:    "&H00000000",
		BackgroundColor: "&H64000000",
		Bold:            true,
		Outline:         6,
		Shadow:          2,
		Position:        types.PositionBottom,
		Animation:       types.AnimWordByWord,
	},
	"minimal": {
		FontName:        "Inter",
		FontSize:        52,
		PrimaryColor:    "&H00FFFFFF",
		OutlineColor:    "&H00000000",
		BackgroundColor: "&H00000000",
		Bold:            false,
		Outline:         0,
		Shadow:          0,
		Position:        types.PositionCenter,
		Animation:       types.AnimNone,
	},
	"bold_pop": {
		FontName:        "Inter",
		FontSize:        88,
		PrimaryColor:    "&H0000D7FF",
		OutlineColor:    "&H00000000",
		BackgroundColor: "&H64000000",
		Bold:            true,
		Outline:         7,
		Shadow:          2,
		Position:        types.PositionBottom,
		Animation:       types.AnimPop,
	},
}

// Lookup resolves a preset name, defaulting to "classic" for an
// unrecognized or empty name (the caller is responsible for skipping
// rendering entirely when the name is "off").
func Lookup(name string) types.CaptionStyle {
	if style, ok := Presets[name]; ok {
		return style
	}
	return Presets["classic"]
}
