package server

import (
	"encoding/base64"
	"html/template"

	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/naka-gawa/github-report/internal/render"
	"github.com/naka-gawa/github-report/internal/usecase"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>GitHub Repositories Report</title>
<style>
body { margin: 0; font-family: sans-serif; display: flex; }
nav { width: 240px; padding: 16px; background: #f0f2f6; min-height: 100vh; }
nav a { display: block; padding: 6px 0; color: #262730; }
nav a.active { font-weight: bold; }
main { flex: 1; padding: 16px 32px; max-width: 1100px; }
img { max-width: 100%; }
.degraded { padding: 12px; background: #fff4e5; border-left: 4px solid #f0a020; }
.failed { padding: 12px; background: #fdecea; border-left: 4px solid #d93025; }
</style>
</head>
<body>
<nav>
<h3>Navigation</h3>
{{range .Sections}}<a href="/?section={{.Value}}"{{if .Active}} class="active"{{end}}>{{.Title}}</a>
{{end}}
{{if .Categories}}
<form method="get" action="/">
<input type="hidden" name="section" value="{{.Section}}">
<label for="category">Select category</label>
<select id="category" name="category" onchange="this.form.submit()">
{{range .Categories}}<option value="{{.Value}}"{{if .Active}} selected{{end}}>{{.Title}}</option>
{{end}}
</select>
</form>
{{end}}
</nav>
<main>
<h1>GitHub Repositories Report</h1>
{{range .Introduction}}<p>{{.}}</p>
{{end}}
<h2>{{.Title}}</h2>
{{if .TotalContributors}}<p>Total contributors: {{.TotalContributors}}</p>{{end}}
{{range .Charts}}
<section id="{{.ID}}">
{{if .Image}}<img src="{{.Image}}" alt="{{.Title}}">
{{else if .Degraded}}<p class="degraded">{{.Title}} is unavailable: {{.Error}}</p>
{{else}}<p class="failed">{{.Title}} could not be drawn: {{.Error}}</p>
{{end}}
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}
</section>
{{end}}
</main>
</body>
</html>
`

var page = template.Must(template.New("index.html").Parse(pageTemplate))

type navItem struct {
	Value  string
	Title  string
	Active bool
}

type chartView struct {
	ID         string
	Title      string
	Image      template.URL
	Paragraphs []string
	Degraded   bool
	Error      string
}

type pageData struct {
	Section           usecase.Section
	Title             string
	Introduction      []string
	Sections          []navItem
	Categories        []navItem
	TotalContributors int
	Charts            []chartView
}

func newPageData(rep *usecase.SectionReport) pageData {
	data := pageData{
		Section:           rep.Section,
		Title:             rep.Title,
		Introduction:      render.Paragraphs(render.Introduction),
		TotalContributors: rep.TotalContributors,
	}
	for _, s := range usecase.Sections {
		data.Sections = append(data.Sections, navItem{Value: string(s), Title: s.Title(), Active: s == rep.Section})
	}
	if rep.Section == usecase.SectionActivity {
		for _, f := range domain.Categories {
			data.Categories = append(data.Categories, navItem{Value: string(f), Title: f.Label(), Active: f == rep.Category})
		}
	}
	for _, c := range rep.Charts {
		v := chartView{
			ID:         c.ID,
			Title:      c.Title,
			Paragraphs: render.Paragraphs(c.Narrative),
			Degraded:   c.Degraded(),
		}
		if v.Title == "" {
			v.Title = c.ID
		}
		if c.Err != nil {
			v.Error = c.Err.Error()
		} else {
			v.Image = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(c.PNG))
		}
		data.Charts = append(data.Charts, v)
	}
	return data
}
