// Package render turns stored invoices into printable documents.
package render

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

// Formatter renders money, phone numbers and dates for display.
type Formatter struct {
	// Symbol prefixes amounts on screen, Code in the PDF whose core fonts lack most currency signs.
	Symbol string
	Code   string
	// Region is the default calling region for numbers without a leading +.
	Region string
}

func NewFormatter(symbol, code, region string) Formatter {
	return Formatter{Symbol: symbol, Code: code, Region: region}
}

// DefaultFormatter matches the application defaults.
var DefaultFormatter = NewFormatter("₦", "NGN", "NG")

// Money formats d with two decimals and thousands separators, e.g. ₦12,500.00.
func (f Formatter) Money(d decimal.Decimal) string {
	return f.Symbol + groupThousands(d.StringFixed(2))
}

// PlainMoney is Money with the currency code, e.g. NGN 12,500.00.
func (f Formatter) PlainMoney(d decimal.Decimal) string {
	return f.Code + " " + groupThousands(d.StringFixed(2))
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(r)
	}

	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}

	return sign + b.String()
}

// Phone formats a valid number in international form. Anything it cannot
// parse is returned unchanged.
func (f Formatter) Phone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	num, err := libphonenumber.Parse(raw, f.Region)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}

	return libphonenumber.Format(num, libphonenumber.INTERNATIONAL)
}

func (f Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format("02 Jan 2006")
}

// Percent trims a tax rate for display, e.g. 7.5%.
func (f Formatter) Percent(d decimal.Decimal) string {
	return d.String() + "%"
}
