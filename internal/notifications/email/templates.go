package email

import (
	"bytes"
	"fmt"
	"html/template"

	"shopbooking/pkg/model"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<body style="margin:0;background:#0a0a0a;font-family:Arial,sans-serif;color:#e5e5e5">
<table role="presentation" width="100%" style="max-width:560px;margin:0 auto;padding:24px">
<tr><td>
<h1 style="font-size:20px;margin:0 0 16px">{{.Title}}</h1>
{{template "body" .}}
<p style="margin:24px 0 0;color:#737373;font-size:12px">{{.Shop}}</p>
</td></tr>
</table>
</body>
</html>{{end}}
{{define "row"}}{{if .Value}}<tr><td style="padding:6px 0;color:#a3a3a3;width:120px">{{.Label}}</td><td style="padding:6px 0">{{.Value}}</td></tr>{{end}}{{end}}`

var bodies = map[model.EventKind]struct {
	title string
	body  string
}{
	model.EventBooked: {
		title: "Booking confirmed",
		body: `{{define "body"}}<p>Hey {{.Name}}, thanks for booking with us! Here are your details:</p>
<table role="presentation" width="100%">{{range .Rows}}{{template "row" .}}{{end}}</table>
<p>If anything changes, just reply to this email.</p>{{end}}`,
	},
	model.EventRescheduled: {
		title: "Booking rescheduled",
		body: `{{define "body"}}<p>Heads up, {{.Name}}: your booking was rescheduled. New details:</p>
<table role="presentation" width="100%">{{range .Rows}}{{template "row" .}}{{end}}</table>
<p>Reply if this doesn't work and we'll find another time.</p>{{end}}`,
	},
	model.EventUpdated: {
		title: "Booking updated",
		body: `{{define "body"}}<p>Hi {{.Name}}, we updated your booking. Current details:</p>
<table role="presentation" width="100%">{{range .Rows}}{{template "row" .}}{{end}}</table>
<p>If something looks wrong, just reply to this email.</p>{{end}}`,
	},
	model.EventCancelled: {
		title: "Booking cancelled",
		body: `{{define "body"}}<p>Hi {{.Name}}, your booking has been cancelled.</p>
<table role="presentation" width="100%">{{range .Rows}}{{template "row" .}}{{end}}</table>
<p>Need to rebook? Reply to this email and we'll get you in.</p>{{end}}`,
	},
}

type row struct {
	Label string
	Value string
}

type view struct {
	Title string
	Shop  string
	Name  string
	Rows  []row
}

// Renderer turns booking events into email subjects and HTML bodies.
type Renderer struct {
	shop      string
	templates map[model.EventKind]*template.Template
}

func NewRenderer(shop string) (*Renderer, error) {
	r := &Renderer{
		shop:      shop,
		templates: make(map[model.EventKind]*template.Template, len(bodies)),
	}
	for kind, b := range bodies {
		t, err := template.New(string(kind)).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse email layout: %w", err)
		}
		if _, err := t.Parse(b.body); err != nil {
			return nil, fmt.Errorf("failed to parse %s email: %w", kind, err)
		}
		r.templates[kind] = t
	}
	return r, nil
}

func (r *Renderer) Render(event model.BookingEvent) (subject string, body string, err error) {
	t, ok := r.templates[event.Kind]
	if !ok {
		return "", "", fmt.Errorf("no email template for event kind %q", event.Kind)
	}

	p := event.Payload
	v := view{
		Title: bodies[event.Kind].title,
		Shop:  r.shop,
		Name:  p.Name,
		Rows: []row{
			{"Service", p.Service},
			{"Price", p.Price},
			{"Date", p.Date},
			{"Time", p.Time},
		},
	}
	if event.Kind != model.EventCancelled {
		v.Rows = append(v.Rows, row{"Phone", p.Phone})
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return "", "", fmt.Errorf("failed to render %s email: %w", event.Kind, err)
	}

	subject = fmt.Sprintf("%s - %s %s", v.Title, p.Date, p.Time)
	return subject, buf.String(), nil
}
