package themes

import "fmt"

type palette struct {
	name        string
	description string
	text        string
	heading     string
	accent      string
	link        string
	quoteBg     string
	quoteText   string
	tableHead   string
	font        string
}

const (
	sansFont  = `-apple-system, BlinkMacSystemFont, "PingFang SC", "Microsoft YaHei", "Helvetica Neue", Arial, sans-serif`
	serifFont = `Georgia, "Songti SC", "SimSun", serif`
)

var palettes = []palette{
	{"default", "Neutral layout with blue accents", "#3f3f3f", "#222222", "#0f4c81", "#1e6bb8", "#f7f7f7", "#666666", "#f2f2f2", sansFont},
	{"lapis", "Lapis blue headings and quote bars", "#40464f", "#2f4f8f", "#3366cc", "#3366cc", "#eef3fb", "#4a5568", "#e3ebf8", sansFont},
	{"maize", "Warm maize yellow accents", "#4b4b4b", "#8a6d1d", "#e0a800", "#b8860b", "#fff8e1", "#6b5b2a", "#fff1c2", sansFont},
	{"orangeheart", "Orange headings with a heart of warmth", "#333333", "#d35400", "#ef7060", "#ef7060", "#fff3ef", "#7a4b3a", "#fde3db", sansFont},
	{"phycat", "Green scientific notebook look", "#2d3436", "#1e7d5a", "#27ae60", "#16a085", "#eafaf1", "#3b5b4b", "#d5f5e3", sansFont},
	{"pie", "Soft serif reading layout", "#3a3a3a", "#5b3a29", "#c0392b", "#a0522d", "#faf6f0", "#6d5a4a", "#f3e9dc", serifFont},
	{"purple", "Purple accents with rounded quotes", "#444444", "#5b2c83", "#8e44ad", "#8e44ad", "#f5eefb", "#5e4b6b", "#ebdcf5", sansFont},
	{"rainbow", "Colourful headings cycling the spectrum", "#333333", "#e74c3c", "#f39c12", "#2980b9", "#f0f9ff", "#2c3e50", "#e8f6ff", sansFont},
}

func builtinThemes() []Theme {
	themes := make([]Theme, 0, len(palettes))
	for _, p := range palettes {
		t := Theme{
			Name:        p.name,
			Description: p.description,
			Container:   fmt.Sprintf("font-family: %s; font-size: 16px; line-height: 1.75; color: %s; word-break: break-word; padding: 0 8px;", p.font, p.text),
			Styles: map[string]string{
				"h1":         fmt.Sprintf("font-size: 1.6em; font-weight: bold; color: %s; margin: 1.2em 0 0.8em; text-align: center;", p.heading),
				"h2":         fmt.Sprintf("font-size: 1.35em; font-weight: bold; color: %s; margin: 1.2em 0 0.6em; padding-bottom: 4px; border-bottom: 2px solid %s;", p.heading, p.accent),
				"h3":         fmt.Sprintf("font-size: 1.15em; font-weight: bold; color: %s; margin: 1em 0 0.5em; padding-left: 8px; border-left: 4px solid %s;", p.heading, p.accent),
				"h4, h5, h6": fmt.Sprintf("font-size: 1em; font-weight: bold; color: %s; margin: 1em 0 0.5em;", p.heading),
				"p":          "margin: 0.8em 0; letter-spacing: 0.5px;",
				"a":          fmt.Sprintf("color: %s; text-decoration: none; border-bottom: 1px solid %s;", p.link, p.link),
				"strong":     fmt.Sprintf("color: %s; font-weight: bold;", p.accent),
				"em":         "font-style: italic;",
				"blockquote": fmt.Sprintf("margin: 1em 0; padding: 10px 14px; background: %s; color: %s; border-left: 4px solid %s; border-radius: 3px;", p.quoteBg, p.quoteText, p.accent),
				"ul, ol":     "margin: 0.8em 0; padding-left: 1.6em;",
				"li":         "margin: 0.3em 0;",
				"img":        "display: block; max-width: 100%; margin: 1em auto; border-radius: 4px;",
				"hr":         fmt.Sprintf("border: none; border-top: 1px solid %s; margin: 1.5em 0;", p.accent),
				"table":      "border-collapse: collapse; width: 100%; margin: 1em 0; font-size: 14px;",
				"th":         fmt.Sprintf("background: %s; border: 1px solid #dfe2e5; padding: 6px 10px; font-weight: bold;", p.tableHead),
				"td":         "border: 1px solid #dfe2e5; padding: 6px 10px;",
			},
		}
		if p.name == "rainbow" {
			t.Styles["h2"] += " color: #e67e22;"
			t.Styles["h3"] += " color: #27ae60;"
			t.Styles["h4, h5, h6"] += " color: #8e44ad;"
		}
		themes = append(themes, t)
	}
	return themes
}

func builtinCodeThemes() []CodeTheme {
	return []CodeTheme{
		{Name: "vscode", Background: "#1e1e1e", Foreground: "#d4d4d4", Border: "#2d2d2d", InlineBg: "#f3f3f3", InlineColor: "#c7254e"},
		{Name: "github", Background: "#f6f8fa", Foreground: "#24292e", Border: "#e1e4e8", InlineBg: "#f0f2f4", InlineColor: "#d73a49"},
		{Name: "github-dark", Background: "#0d1117", Foreground: "#c9d1d9", Border: "#30363d", InlineBg: "#f0f2f4", InlineColor: "#cf222e"},
		{Name: "atom-one-dark", Background: "#282c34", Foreground: "#abb2bf", Border: "#3b4048", InlineBg: "#f2f2f2", InlineColor: "#e06c75"},
		{Name: "atom-one-light", Background: "#fafafa", Foreground: "#383a42", Border: "#e5e5e6", InlineBg: "#f0f0f0", InlineColor: "#e45649"},
		{Name: "monokai", Background: "#272822", Foreground: "#f8f8f2", Border: "#3e3d32", InlineBg: "#f5f5f0", InlineColor: "#f92672"},
		{Name: "dracula", Background: "#282a36", Foreground: "#f8f8f2", Border: "#44475a", InlineBg: "#f4f0fa", InlineColor: "#bd93f9"},
		{Name: "nord", Background: "#2e3440", Foreground: "#d8dee9", Border: "#3b4252", InlineBg: "#eceff4", InlineColor: "#5e81ac"},
		{Name: "solarized-light", Background: "#fdf6e3", Foreground: "#657b83", Border: "#eee8d5", InlineBg: "#eee8d5", InlineColor: "#cb4b16"},
		{Name: "solarized-dark", Background: "#002b36", Foreground: "#839496", Border: "#073642", InlineBg: "#eee8d5", InlineColor: "#dc322f"},
	}
}
