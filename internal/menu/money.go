package menu

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Money is an amount in cents.
type Money int64

// String formats m as dollars, e.g. "$4.50".
func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s$%d.%02d", sign, int64(m)/100, int64(m)%100)
}

// ParseMoney parses "4.50", "$4.50", "4.5" or "4" into cents. Only digits,
// one optional decimal point and a leading minus are accepted; more than two
// fractional digits is an error.
func ParseMoney(s string) (Money, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "$")

	whole, frac, hasFrac := strings.Cut(strings.TrimPrefix(raw, "-"), ".")
	switch {
	case whole == "" && frac == "":
		return 0, fmt.Errorf("parse money %q: empty amount", s)
	case !isDigits(whole) || !isDigits(frac):
		return 0, fmt.Errorf("parse money %q: want digits with an optional decimal point", s)
	case hasFrac && (frac == "" || len(frac) > 2):
		return 0, fmt.Errorf("parse money %q: want at most two decimal places", s)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money(d.Shift(2).IntPart()), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// UnmarshalYAML accepts both quoted ("3.50") and bare (3.5) amounts.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: money must be a scalar", value.Line)
	}
	v, err := ParseMoney(value.Value)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
