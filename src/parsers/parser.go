// backend/src/parsers/parser.go
package parsers

import (
	"io"

	"github.com/username/investfolio/backend/src/models"
)

// Parser turns one broker statement file into a normalized Statement.
// Implementations are broker-specific and touch the spreadsheet only through
// the table package, never raw cell positions.
type Parser interface {
	Parse(file io.Reader) (*models.Statement, error)
}
