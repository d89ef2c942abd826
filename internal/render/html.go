package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

var cardTmpl = template.Must(template.New("card").Parse(
	`<button type="submit" class="flip-card{{if .Flipped}} is-flipped{{end}}" aria-label="{{.Aria}}" aria-pressed="{{.Flipped}}">` +
		`<span class="flip-card-inner">` +
		`<span class="flip-card-face flip-card-front"{{if .Flipped}} aria-hidden="true"{{end}}>` +
		`<span class="flip-card-label">{{.FrontLabel}}</span><span class="flip-card-text">{{.Front}}</span></span>` +
		`<span class="flip-card-face flip-card-back"{{if not .Flipped}} aria-hidden="true"{{end}}>` +
		`<span class="flip-card-label">{{.BackLabel}}</span><span class="flip-card-text">{{.Back}}</span></span>` +
		`</span></button>`))

type cardView struct {
	Flipped    bool
	Aria       string
	FrontLabel string
	BackLabel  string
	Front      template.HTML
	Back       template.HTML
}

// HTML renders both faces of the card; the is-flipped class selects the visible one.
// The card is a submit button: placed in a form that posts the flip intent, a click
// asks the host to flip instead of toggling in the browser.
// Face text is markdown. Raw HTML in it is dropped.
func HTML(p CardProps) template.HTML {
	v := cardView{
		Flipped:    p.Flipped,
		Aria:       AriaLabel(p),
		FrontLabel: FrontLabel,
		BackLabel:  BackLabel,
		Front:      Markdown(p.Front),
		Back:       Markdown(p.Back),
	}
	var buf bytes.Buffer
	if err := cardTmpl.Execute(&buf, v); err != nil {
		return template.HTML(template.HTMLEscapeString(p.Front))
	}
	return template.HTML(buf.String())
}

// Markdown converts markdown text to HTML using goldmark.
func Markdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
