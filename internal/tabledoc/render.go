package tabledoc

import (
	"errors"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/gridtable"
)

// Result is a rendered document.
type Result struct {
	Table  *gridtable.Table
	Widths []int
	Text   string
}

// Check builds the document and validates the table shape without
// rendering it. Column widths are resolved as well, so a column that only
// holds spanning cells and has no explicit width fails here too.
func Check(doc *Document, def Defaults) (*gridtable.Table, []int, error) {
	table, err := doc.Build(def)
	if err != nil {
		return nil, nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, nil, layoutError(err)
	}
	widths, err := table.Widths()
	if err != nil {
		return nil, nil, layoutError(err)
	}
	return table, widths, nil
}

// Render builds and renders the document.
func Render(doc *Document, def Defaults) (*Result, error) {
	table, widths, err := Check(doc, def)
	if err != nil {
		return nil, err
	}
	text, err := gridtable.Print(table)
	if err != nil {
		return nil, layoutError(err)
	}
	return &Result{Table: table, Widths: widths, Text: text}, nil
}

func layoutError(err error) error {
	var ve *clierrors.ValidationError
	if errors.As(err, &ve) || !gridtable.IsLayoutError(err) {
		return err
	}
	return &clierrors.ValidationError{Field: "table", Message: err.Error(), Err: err}
}
