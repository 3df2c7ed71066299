package grid

import (
	"revgrid/internal/core"
	"revgrid/internal/format"
)

// SortKey names a sortable column by its JSON field name.
type SortKey string

const (
	KeyLocation                   SortKey = "location"
	KeyPotentialRevenue           SortKey = "potentialRevenue"
	KeyCompetitorProcessingVolume SortKey = "competitorProcessingVolume"
	KeyCompetitorMerchant         SortKey = "competitorMerchant"
	KeyRevenuePerAccount          SortKey = "revenuePerAccount"
	KeyMarketShareByRevenue       SortKey = "marketShareByRevenue"
	KeyCommercialDDAs             SortKey = "commercialDDAs"
)

type columnKind int

const (
	kindText columnKind = iota
	kindMetric
	kindCurrency
	kindNumber
	kindPercent
)

// Column describes one grid column.
type Column struct {
	Key   SortKey
	Title string
	kind  columnKind
}

// Columns lists the grid columns in display order.
var Columns = []Column{
	{KeyLocation, "Location", kindText},
	{KeyPotentialRevenue, "Potential Revenue", kindMetric},
	{KeyCompetitorProcessingVolume, "Competitor Processing Volume", kindMetric},
	{KeyCompetitorMerchant, "Competitor Merchant", kindNumber},
	{KeyRevenuePerAccount, "Revenue/Account", kindCurrency},
	{KeyMarketShareByRevenue, "Market Share", kindPercent},
	{KeyCommercialDDAs, "Commercial DDAs", kindNumber},
}

func lookupColumn(key SortKey) (Column, bool) {
	for _, c := range Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// cellValue is what a column contributes to sorting and totals. Composite
// metrics contribute their value, text contributes nothing to totals.
type cellValue struct {
	num     float64
	str     string
	numeric bool
}

func valueOf(r core.Record, key SortKey) cellValue {
	switch key {
	case KeyLocation:
		return cellValue{str: r.Location}
	case KeyPotentialRevenue:
		return cellValue{num: r.PotentialRevenue.Value, numeric: true}
	case KeyCompetitorProcessingVolume:
		return cellValue{num: r.CompetitorProcessingVolume.Value, numeric: true}
	case KeyCompetitorMerchant:
		return cellValue{num: r.CompetitorMerchant, numeric: true}
	case KeyRevenuePerAccount:
		return cellValue{num: r.RevenuePerAccount, numeric: true}
	case KeyMarketShareByRevenue:
		return cellValue{num: r.MarketShareByRevenue, numeric: true}
	case KeyCommercialDDAs:
		return cellValue{num: r.CommercialDDAs, numeric: true}
	}
	return cellValue{}
}

// Cell renders the value of column c for r, e.g. "$624.60K (33.48%)".
func (c Column) Cell(r core.Record) string {
	switch c.Key {
	case KeyPotentialRevenue:
		return metricCell(r.PotentialRevenue)
	case KeyCompetitorProcessingVolume:
		return metricCell(r.CompetitorProcessingVolume)
	}
	v := valueOf(r, c.Key)
	if !v.numeric {
		return v.str
	}
	return c.formatNumber(v.num)
}

func (c Column) formatNumber(n float64) string {
	switch c.kind {
	case kindMetric, kindCurrency:
		return format.Currency(n)
	case kindPercent:
		return format.Percent(n)
	default:
		return format.Number(n)
	}
}

func metricCell(m core.Metric) string {
	return format.Currency(m.Value) + " (" + format.Percent(m.Percentage) + ")"
}
