// Package price parses money amounts found in storefront payloads and pages.
package price

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountPattern = regexp.MustCompile(`\d+(?:[.,]\d+)*(?:[ \x{00a0}\x{202f}]\d{3}(?:[.,]\d+)*)*`)

// Parse extracts first amount from free text like "$1,234.50 CAD" or "12,50 $".
// It returns false when text has no positive amount.
func Parse(text string) (decimal.Decimal, bool) {
	raw := amountPattern.FindString(text)
	if raw == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(normalizeSeparators(raw))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}

	return amount, true
}

// ParsePtr is Parse returning nil instead of false.
func ParsePtr(text string) *decimal.Decimal {
	amount, ok := Parse(text)
	if !ok {
		return nil
	}
	return &amount
}

func normalizeSeparators(raw string) string {
	raw = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, raw)
	raw = strings.TrimRight(raw, ".,")

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// whichever comes last is the decimal separator
		if lastComma > lastDot {
			raw = strings.ReplaceAll(raw, ".", "")
			return strings.Replace(raw, ",", ".", 1)
		}
		return strings.ReplaceAll(raw, ",", "")
	case lastComma >= 0:
		if strings.Count(raw, ",") == 1 && len(raw)-lastComma-1 <= 2 {
			return strings.Replace(raw, ",", ".", 1)
		}
		return strings.ReplaceAll(raw, ",", "")
	case strings.Count(raw, ".") > 1:
		head := strings.ReplaceAll(raw[:lastDot], ".", "")
		tail := raw[lastDot+1:]
		if len(tail) == 3 {
			return head + tail
		}
		return head + "." + tail
	}

	return raw
}

// Amount decodes JSON amounts sent either as numbers or as strings.
// Numbers are kept as is, callers decide whether they are cents.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		value, ok := Parse(s)
		*a = Amount{Value: value, Valid: ok}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// unexpected shapes are treated as missing
		*a = Amount{}
		return nil
	}
	value, err := decimal.NewFromString(n.String())
	if err != nil {
		*a = Amount{}
		return nil
	}
	*a = Amount{Value: value, Valid: true}

	return nil
}

// Ptr returns pointer to amount value or nil when amount is missing.
func (a Amount) Ptr() *decimal.Decimal {
	if !a.Valid {
		return nil
	}
	v := a.Value
	return &v
}

// Cents interprets amount as cents.
func (a Amount) Cents() Amount {
	if !a.Valid {
		return a
	}
	return Amount{Value: a.Value.Shift(-2), Valid: true}
}
