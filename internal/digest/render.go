// internal/digest/render.go
package digest

import (
	"bytes"
	"html/template"
	"time"

	"shelfwatch/internal/tracking"
)

type changeRow struct {
	Title     string
	Author    string
	From      string
	To        string
	ChangedAt string
}

type upcomingRow struct {
	Title       string
	Author      string
	ReleaseDate string
}

type digestData struct {
	WeekOf   string
	Upcoming []upcomingRow
	Changes  []changeRow
}

var digestTmpl = template.Must(template.New("digest").Parse(`<h2>Release tracker digest &mdash; week of {{.WeekOf}}</h2>
{{if .Upcoming}}<h3>Releasing this week</h3>
<ul>
{{range .Upcoming}}  <li><strong>{{.Title}}</strong> by {{.Author}} &mdash; {{.ReleaseDate}}</li>
{{end}}</ul>
{{end}}{{if .Changes}}<h3>Library status changes</h3>
<ul>
{{range .Changes}}  <li><strong>{{.Title}}</strong> by {{.Author}}: {{if .From}}{{.From}} &rarr; {{end}}{{.To}} ({{.ChangedAt}})</li>
{{end}}</ul>
{{end}}`))

func renderDigest(weekOf time.Time, upcoming []*tracking.Book, changes []changeRow) (string, error) {
	data := digestData{
		WeekOf:  weekOf.Format("Jan 2, 2006"),
		Changes: changes,
	}
	for _, book := range upcoming {
		data.Upcoming = append(data.Upcoming, upcomingRow{
			Title:       book.Title,
			Author:      book.Author,
			ReleaseDate: book.ReleaseDate.Format("Mon, Jan 2"),
		})
	}

	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
