package psb

import (
	"strings"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/table"
)

const securitiesTableName = "Портфель ценных бумаг"

var securitiesSpec = table.Spec{
	Required: []table.Column{
		table.NewColumn("isin", "isin"),
		table.NewColumn("name", "наименование"),
	},
	Optional: []table.Column{
		table.NewColumn("kind", "вид", "бумаги").Or("тип", "бумаги"),
	},
}

func (p *Parser) parseSecurities(sheet *table.Sheet, stmt *models.Statement) {
	tbl := locate(sheet, stmt, securitiesTableName, securitiesSpec)
	if tbl == nil {
		return
	}
	for _, row := range tbl.Rows() {
		if row.IsEmpty() {
			continue
		}
		isin := row.String("isin")
		if isin == "" {
			logger.L.Warn("PSB parser: skipping security row without ISIN", "table", securitiesTableName, "row", row.Index())
			continue
		}
		stmt.Securities = append(stmt.Securities, models.Security{
			ISIN: isin,
			Name: row.String("name"),
			Kind: securityKind(row.String("kind")),
		})
	}
}

func securityKind(raw string) models.SecurityKind {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "акци"):
		return models.KindShare
	case strings.Contains(lower, "облигаци"):
		return models.KindBond
	default:
		return models.KindUnknown
	}
}
