package http

import (
	"github.com/shopspring/decimal"
)

// JSON numbers arrive as float64 so the validator can bound them; the
// calculator works in decimals from here on.
func toDec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func toDecPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

// jsonField maps a calculator field name (camelCase) onto the request's
// snake_case name.
func jsonField(name string) string {
	if alias, ok := fieldAliases[name]; ok {
		return alias
	}
	var b []byte
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				b = append(b, '_')
			}
			c += 'a' - 'A'
		}
		b = append(b, c)
	}
	return string(b)
}

var fieldAliases = map[string]string{
	"sellerNoteStandbyPeriodMonths": "seller_note_standby_months",
}
