// backend/src/parsers/factory.go
package parsers

import (
	"fmt"

	"github.com/username/investfolio/backend/src/parsers/psb"
	"github.com/username/investfolio/backend/src/parsers/vtb"
	"github.com/username/investfolio/backend/src/processors"
)

func GetParser(source string, resolver processors.DerivativeCodeResolver) (Parser, error) {
	switch source {
	case "psb":
		return psb.NewParser(resolver), nil
	case "vtb":
		return vtb.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
