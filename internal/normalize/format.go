package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"uct-dashboard/backend-go/internal/models"
)

const Dash = "—"

// Placeholder is the quote shown when an instrument could not be fetched.
var Placeholder = models.QuoteEntry{Price: Dash, Chg: Dash, CSS: ""}

// SignedPct renders v as "+1.23%" / "-1.23%" with the given decimals. The
// sign follows v itself, so -0.001 renders as "-0.00%".
func SignedPct(v float64, places int32) string {
	d := decimal.NewFromFloat(v)
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return sign + d.Abs().StringFixed(places) + "%"
}

// FormatPrice renders 2 decimals, with thousands separators from 1000 up.
func FormatPrice(v float64) string {
	d := decimal.NewFromFloat(v)
	if v < 1000 {
		return d.StringFixed(2)
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return groupThousands(intPart) + "." + frac
}

// FormatChange returns the signed percent string and its css class.
func FormatChange(pct float64) (string, string) {
	css := "pos"
	if pct < 0 {
		css = "neg"
	}
	return SignedPct(pct, 2), css
}

func QuoteEntry(price, changePct float64) models.QuoteEntry {
	chg, css := FormatChange(changePct)
	return models.QuoteEntry{Price: FormatPrice(price), Chg: chg, CSS: css}
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
