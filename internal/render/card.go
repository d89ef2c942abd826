// Package render draws flashcards for the terminal and the browser.
//
// Renderers are pure: they show the face selected by CardProps.Flipped and never toggle it.
// A flip request goes back to the host as an intent.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/settings"
)

// CardProps is everything a renderer needs to draw one card.
type CardProps struct {
	Front             string  `json:"front"`
	Back              string  `json:"back"`
	Flipped           bool    `json:"flipped"`
	FontSize          int     `json:"font_size"`
	FontFamily        string  `json:"font_family"`
	Background        string  `json:"background"`
	Foreground        string  `json:"foreground"`
	TransitionSeconds float64 `json:"transition_seconds"`
}

// Props combines a card, its flip flag and the resolved display settings.
func Props(c deck.Card, flipped bool, d settings.Display) CardProps {
	return CardProps{
		Front:             c.Front,
		Back:              c.Back,
		Flipped:           flipped,
		FontSize:          d.FontSize,
		FontFamily:        d.FontFamily,
		Background:        d.Background,
		Foreground:        d.Foreground,
		TransitionSeconds: d.TransitionSeconds,
	}
}

const (
	FrontLabel = "Question"
	BackLabel  = "Answer"
	flipHint   = "Press space to flip"
)

// Face returns the label and text of the visible face.
func Face(p CardProps) (label, text string) {
	if p.Flipped {
		return BackLabel, p.Back
	}
	return FrontLabel, p.Front
}

// AriaLabel describes the visible face for screen readers.
func AriaLabel(p CardProps) string {
	if p.Flipped {
		return fmt.Sprintf("Back: %s. %s", p.Back, flipHint)
	}
	return fmt.Sprintf("Front: %s. %s", p.Front, flipHint)
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ThemeCSS renders the card theme as CSS custom properties.
// Pages link it as a stylesheet so no inline style is needed.
func ThemeCSS(p CardProps) string {
	bg := cssColor(p.Background, "#ffffff")
	fg := cssColor(p.Foreground, "#000000")
	border := fg
	if len(fg) == 7 {
		border = fg + "40"
	}

	size := p.FontSize
	if size <= 0 {
		size = settings.Default().FontSize
	}

	var b strings.Builder
	b.WriteString(":root {\n")
	fmt.Fprintf(&b, "  --card-bg: %s;\n", bg)
	fmt.Fprintf(&b, "  --card-fg: %s;\n", fg)
	fmt.Fprintf(&b, "  --card-border: %s;\n", border)
	fmt.Fprintf(&b, "  --card-font-size: %dpx;\n", size)
	fmt.Fprintf(&b, "  --card-font-family: %s, system-ui, sans-serif;\n", cssString(p.FontFamily))
	fmt.Fprintf(&b, "  --flip-duration: %ss;\n", strconv.FormatFloat(max(p.TransitionSeconds, 0), 'f', -1, 64))
	b.WriteString("}\n")
	return b.String()
}

func cssColor(c, fallback string) string {
	if hexColor.MatchString(c) {
		return c
	}
	return fallback
}

// cssString quotes s as a CSS string literal.
func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", " ", "<", "", ">", "")
	return `"` + r.Replace(s) + `"`
}
