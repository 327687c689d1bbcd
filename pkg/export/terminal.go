package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/therma-tools/fleet-reports/pkg/models/domain"
)

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(report *domain.Report) error {
	funcMap := template.FuncMap{
		"period": func(p domain.DateRange) string {
			if p.Empty() {
				return "all time"
			}
			return fmt.Sprintf("%s to %s",
				p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
		},
		"summaryKeys": sortedSummaryKeys,
	}

	tmpl := `
{{.Title}} (scope: {{.Scope}})
Period: {{period .Period}}
Generated: {{.GeneratedAt.Format "2006-01-02 15:04"}}

{{range .Sections}}
=== {{.Title}} ===
{{$s := .Summary}}{{range summaryKeys .Summary}}{{.}}: {{index $s .}}
{{end}}
{{range .Details}}- {{.Name}}: {{.Value}}{{if .Unit}} {{.Unit}}{{end}}
  {{.Description}}
{{end}}
{{end}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
