package export

import (
	"fmt"
	"sort"

	"github.com/tealeg/xlsx/v3"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
)

// WriteXLSX writes the report as a workbook with one sheet per section.
func WriteXLSX(report *domain.Report, path string) error {
	file := xlsx.NewFile()

	for _, section := range report.Sections {
		sheet, err := file.AddSheet(sheetName(section.Title))
		if err != nil {
			return fmt.Errorf("add sheet %q: %w", section.Title, err)
		}

		for _, key := range sortedSummaryKeys(section.Summary) {
			row := sheet.AddRow()
			row.AddCell().SetString(key)
			row.AddCell().SetValue(section.Summary[key])
		}

		if len(section.Details) > 0 {
			sheet.AddRow() // spacer
			header := sheet.AddRow()
			for _, h := range []string{"Name", "Value", "Unit", "Description"} {
				header.AddCell().SetString(h)
			}
			for _, d := range section.Details {
				row := sheet.AddRow()
				row.AddCell().SetString(d.Name)
				row.AddCell().SetValue(d.Value)
				row.AddCell().SetString(d.Unit)
				row.AddCell().SetString(d.Description)
			}
		}
	}

	if err := file.Save(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// sheetName trims a section title to the 31-character sheet name limit.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}

func sortedSummaryKeys(summary map[string]any) []string {
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
