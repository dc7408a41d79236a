// Package gridtable renders tables in the reStructuredText "grid table" syntax.
//
// A Table is a list of rows; row 0 is the header. Every row has one Entry per
// logical column. An entry is either a *Cell or a SpanHold placeholder that
// marks a slot taken by the span of another cell:
//
//	t := gridtable.NewTable([]gridtable.Row{
//	    {gridtable.NewCell("Name"), gridtable.NewCell("Notes")},
//	    {gridtable.NewCell("alpha", gridtable.RowSpan(2)), gridtable.NewCell("first")},
//	    {gridtable.Hold, gridtable.NewCell("second")},
//	})
//	text, err := gridtable.Print(t)
//
// Column widths are taken from ColumnWidth options or computed from the widest
// single-column cell. Text is word wrapped greedily; words longer than a cell
// are split. A cell spanning several rows keeps printing its remaining text in
// the divider lines it crosses, so every line of the output has its column
// boundaries at the same positions.
//
// Rendering never mutates the Table and keeps no state between calls, so one
// Table may be printed from several goroutines at once.
package gridtable
