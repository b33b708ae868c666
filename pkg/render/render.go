// Package render turns stored chat rows into the view model the browser paints.
package render

import (
	"bytes"
	"html"
	"strings"
	"time"

	"oracle-assistant-be/internal/entity"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	AlignRight = "right"
	AlignLeft  = "left"

	MessageTimeLayout = "15:04"
	SessionDateLayout = "Jan 2, 2006"
)

type MessageView struct {
	Id        string `json:"id"`
	Role      string `json:"role"`
	Align     string `json:"align"`
	Content   string `json:"content"`
	HTML      string `json:"html"`
	Time      string `json:"time"`
	Degraded  bool   `json:"degraded"`
	CreatedAt string `json:"created_at"`
}

type SessionView struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	CreatedLabel string `json:"created_label"`
	CreatedAt    string `json:"created_at"`
	Active       bool   `json:"active"`
}

// Renderer converts markdown with goldmark. Raw HTML in model output is not
// passed through (goldmark's default), so replies cannot inject markup.
type Renderer struct {
	md       goldmark.Markdown
	location *time.Location
}

func NewRenderer(location *time.Location) *Renderer {
	if location == nil {
		location = time.Local
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		location: location,
	}
}

func (r *Renderer) Message(m *entity.Message) MessageView {
	view := MessageView{
		Id:        m.Id.String(),
		Role:      string(m.Role),
		Content:   m.Content,
		Time:      m.CreatedAt.In(r.location).Format(MessageTimeLayout),
		Degraded:  m.Degraded,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	if m.Role == entity.MessageRoleUser {
		view.Align = AlignRight
		view.HTML = plainToHTML(m.Content)
	} else {
		view.Align = AlignLeft
		view.HTML = r.Markdown(m.Content)
	}
	return view
}

func (r *Renderer) Messages(messages []*entity.Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, r.Message(m))
	}
	return views
}

func (r *Renderer) Session(s *entity.ChatSession, active bool) SessionView {
	return SessionView{
		Id:           s.Id.String(),
		Title:        s.Title,
		CreatedLabel: s.CreatedAt.In(r.location).Format(SessionDateLayout),
		CreatedAt:    s.CreatedAt.UTC().Format(time.RFC3339Nano),
		Active:       active,
	}
}

// Markdown renders assistant text. On a converter failure the text is shown escaped.
func (r *Renderer) Markdown(source string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return plainToHTML(source)
	}
	return buf.String()
}

func plainToHTML(text string) string {
	escaped := html.EscapeString(text)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}
