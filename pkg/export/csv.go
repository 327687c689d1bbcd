package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/therma-tools/fleet-reports/pkg/models/domain"
)

// WriteCSV flattens the report into one CSV stream: a row per section
// summary entry, then a row per detail.
func WriteCSV(report *domain.Report, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"section", "kind", "name", "value", "unit", "description"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, section := range report.Sections {
		for _, key := range sortedSummaryKeys(section.Summary) {
			row := []string{section.Title, "summary", key, fmt.Sprint(section.Summary[key]), "", ""}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
		for _, d := range section.Details {
			row := []string{section.Title, "detail", d.Name, fmt.Sprint(d.Value), d.Unit, d.Description}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
