package types

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// MarkdownTable renders rows as a markdown table for use inside prompts.
func MarkdownTable(header []string, rows [][]string) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header(toAny(header)...)
	for _, row := range rows {
		_ = table.Append(toAny(row)...)
	}
	_ = table.Render()
	return strings.TrimRight(buf.String(), "\n")
}

func FormatMissingFieldsSection(fields []FieldInfo) string {
	if len(fields) == 0 {
		return "# Missing fields:\nnone"
	}
	rows := make([][]string, 0, len(fields))
	for _, field := range fields {
		rows = append(rows, []string{field.DisplayName, field.JSONPointer, field.Description})
	}
	return "# Missing fields:\n" + MarkdownTable([]string{"Field", "Pointer", "Description"}, rows)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
