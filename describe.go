package nasc

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Describe writes a table of the registered providers to w, one row per
// token in name order.
//
//	TOKEN        KIND     TARGET                INJECTABLE
//	TEST_TOKEN   value    string                -
//	main.Logger  class    *main.ConsoleLogger   yes
func (c *Container) Describe(w io.Writer) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off, BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header([]string{"token", "kind", "target", "injectable"})
	for _, p := range c.Providers() {
		injectable := "-"
		if p.IsClass() {
			injectable = "no"
			if c.metadata.IsInjectable(p.Class()) {
				injectable = "yes"
			}
		}
		if err := table.Append([]string{p.Provide().Name(), p.Kind().String(), p.Target(), injectable}); err != nil {
			return err
		}
	}
	return table.Render()
}
