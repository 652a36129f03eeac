package output

import "github.com/jedib0t/go-pretty/v6/text"

// Style renders a string with ANSI colors when styling is enabled.
type Style struct {
	colors  text.Colors
	enabled bool
}

// Render applies the style to s. With styling disabled, s passes through
// unchanged so piped output stays clean.
func (s Style) Render(str string) string {
	if !s.enabled || len(s.colors) == 0 {
		return str
	}
	return s.colors.Sprint(str)
}

// Styles is the style set used by the renderer.
type Styles struct {
	Header1       Style
	Header2       Style
	Bold          Style
	Muted         Style
	Success       Style
	Warning       Style
	Error         Style
	StatusSuccess Style
	StatusFailed  Style
}

func newStyles(enabled bool) Styles {
	return Styles{
		Header1:       Style{colors: text.Colors{text.Bold, text.Underline}, enabled: enabled},
		Header2:       Style{colors: text.Colors{text.Bold}, enabled: enabled},
		Bold:          Style{colors: text.Colors{text.Bold}, enabled: enabled},
		Muted:         Style{colors: text.Colors{text.Faint}, enabled: enabled},
		Success:       Style{colors: text.Colors{text.FgGreen}, enabled: enabled},
		Warning:       Style{colors: text.Colors{text.FgYellow}, enabled: enabled},
		Error:         Style{colors: text.Colors{text.FgRed}, enabled: enabled},
		StatusSuccess: Style{colors: text.Colors{text.FgGreen}, enabled: enabled},
		StatusFailed:  Style{colors: text.Colors{text.FgRed}, enabled: enabled},
	}
}
