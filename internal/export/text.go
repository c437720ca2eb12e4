package export

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
)

// TextRenderer writes a plain-text travel diary.
type TextRenderer struct{}

func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (TextRenderer) FileExt() string { return ".txt" }

var funcs = template.FuncMap{
	"date":   func(t time.Time) string { return t.Format("Mon 2 Jan 2006") },
	"clock":  func(t time.Time) string { return t.Format("15:04") },
	"join":   strings.Join,
	"deref":  func(s *string) string { return *s },
	"coords": func(c *domain.Coordinates) string { return fmt.Sprintf("%.5f, %.5f", c.Latitude, c.Longitude) },
}

const entrySrc = `[{{clock .Timestamp}}] {{.Type}}{{with .Title}}: {{deref .}}{{end}}
{{with .Text}}  {{deref .}}
{{end}}{{with .Coordinates}}  @ {{coords .}}
{{end}}{{with .Media}}  media: {{join . ", "}}
{{end}}{{with .Tags}}  tags: {{join . ", "}}
{{end}}`

const tripSrc = `{{.Trip.Title}}
{{date .Trip.StartDate}} - {{date .Trip.EndDate}} ({{.Trip.Category}}, {{.Trip.Duration}} days)
{{with .Trip.Description}}{{deref .}}
{{end}}{{with .Trip.Tags}}Tags: {{join . ", "}}
{{end}}{{range .Days}}
== {{date .Day}} ==
{{range .Entries}}{{template "entry" .}}{{end}}{{else}}
No entries.
{{end}}`

const daySrc = `{{.Trip.Title}} - {{date .Day}}
{{range .Entries}}{{template "entry" .}}{{else}}No entries.
{{end}}`

var (
	entryTmpl = template.Must(template.New("entry").Funcs(funcs).Parse(entrySrc))
	tripTmpl  = template.Must(template.Must(entryTmpl.Clone()).New("trip").Parse(tripSrc))
	dayTmpl   = template.Must(template.Must(entryTmpl.Clone()).New("day").Parse(daySrc))
)

type dayGroup struct {
	Day     time.Time
	Entries []domain.Entry
}

// groupByDay splits entries, already in timestamp order, into calendar days.
func groupByDay(entries []domain.Entry) []dayGroup {
	var days []dayGroup
	for _, e := range entries {
		d := domain.DateOf(e.Timestamp)
		if n := len(days); n == 0 || !days[n-1].Day.Equal(d) {
			days = append(days, dayGroup{Day: d})
		}
		days[len(days)-1].Entries = append(days[len(days)-1].Entries, e)
	}
	return days
}

func (TextRenderer) RenderTrip(w io.Writer, trip domain.Trip, entries []domain.Entry) error {
	return tripTmpl.Execute(w, struct {
		Trip domain.Trip
		Days []dayGroup
	}{trip, groupByDay(entries)})
}

func (TextRenderer) RenderDay(w io.Writer, trip domain.Trip, day time.Time, entries []domain.Entry) error {
	return dayTmpl.Execute(w, struct {
		Trip    domain.Trip
		Day     time.Time
		Entries []domain.Entry
	}{trip, day, entries})
}
