package utils

// Date layouts seen in broker statement cells. Statements print either a
// bare date or a date with time, depending on the table.
const (
	DateLayout          = "02.01.2006"
	DateTimeLayout      = "02.01.2006 15:04:05"
	ShortDateTimeLayout = "02.01.2006 15:04"
)

// StatementDateLayouts is the try-order for statement date cells.
var StatementDateLayouts = []string{DateTimeLayout, ShortDateTimeLayout, DateLayout}
