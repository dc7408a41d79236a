package gridtable

import "errors"

var (
	// ErrWidthRequired indicates that a column holds only spanning cells and has no explicit width.
	ErrWidthRequired = errors.New("explicit width required for this column")
	// ErrOverlappingSpan indicates that a cell was placed in a column still claimed by a vertical span.
	ErrOverlappingSpan = errors.New("overlapping vertical span")
	// ErrShapeMismatch indicates that a row does not line up with the header's columns.
	ErrShapeMismatch = errors.New("table shape mismatch")
	// ErrColumnTooNarrow indicates that a cell has no room for text once its padding is applied.
	ErrColumnTooNarrow = errors.New("column too narrow for cell padding")
	// ErrInvalidSpan indicates a span below 1, a negative padding or a width below 1.
	ErrInvalidSpan = errors.New("invalid span or size")
	// ErrColumnOutOfRange indicates that a column index outside the table was referenced.
	ErrColumnOutOfRange = errors.New("column index out of range")
)

var layoutErrors = []error{
	ErrWidthRequired,
	ErrOverlappingSpan,
	ErrShapeMismatch,
	ErrColumnTooNarrow,
	ErrInvalidSpan,
	ErrColumnOutOfRange,
}

// IsLayoutError reports whether err was caused by a malformed table.
func IsLayoutError(err error) bool {
	for _, target := range layoutErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
