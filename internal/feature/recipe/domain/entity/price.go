package entity

import (
	"database/sql/driver"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Price limits match a numeric(5,2) column.
const (
	priceDecimalPlaces = 2
	priceWholeDigits   = 3
)

// PriceError is a price validation failure. Its text is shown to API clients as is.
type PriceError string

func (e PriceError) Error() string { return string(e) }

const (
	ErrPriceInvalid       PriceError = "A valid number is required."
	ErrPriceDecimalPlaces PriceError = "Ensure that there are no more than 2 decimal places."
	ErrPriceWholeDigits   PriceError = "Ensure that there are no more than 3 digits before the decimal point."
)

var priceRe = regexp.MustCompile(`^([+-]?)(\d*)(?:\.(\d*))?$`)

// Price is a fixed-point amount in cents.
type Price int64

// ParsePrice parses a decimal string such as "5.5" or "-12.00".
func ParsePrice(s string) (Price, error) {
	m := priceRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || (m[2] == "" && m[3] == "") {
		return 0, ErrPriceInvalid
	}
	sign, whole, frac := m[1], strings.TrimLeft(m[2], "0"), strings.TrimRight(m[3], "0")
	if len(frac) > priceDecimalPlaces {
		return 0, ErrPriceDecimalPlaces
	}
	if len(whole) > priceWholeDigits {
		return 0, ErrPriceWholeDigits
	}

	var cents int64
	if whole != "" {
		w, err := strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, ErrPriceInvalid
		}
		cents = w * 100
	}
	if frac != "" {
		frac += strings.Repeat("0", priceDecimalPlaces-len(frac))
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrPriceInvalid
		}
		cents += f
	}
	if sign == "-" {
		cents = -cents
	}
	return Price(cents), nil
}

// ParsePriceJSON parses a JSON number or a JSON string holding a number.
func ParsePriceJSON(b []byte) (Price, error) {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return 0, ErrPriceInvalid
	}
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return 0, ErrPriceInvalid
		}
		s = unq
	}
	return ParsePrice(s)
}

// String formats the price with exactly two decimals.
func (p Price) String() string {
	c := int64(p)
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MarshalJSON renders the price as a decimal string, e.g. "5.50".
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON accepts either a number or a numeric string.
func (p *Price) UnmarshalJSON(b []byte) error {
	v, err := ParsePriceJSON(b)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Value stores the price as a decimal string for numeric columns.
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan reads numeric columns, which drivers return as text, floats or integers.
func (p *Price) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = 0
	case int64:
		*p = Price(v * 100)
	case float64:
		*p = Price(math.Round(v * 100))
	case []byte:
		return p.scanString(string(v))
	case string:
		return p.scanString(v)
	default:
		return fmt.Errorf("unsupported price type %T", src)
	}
	return nil
}

func (p *Price) scanString(s string) error {
	v, err := ParsePrice(s)
	if err != nil {
		return fmt.Errorf("invalid stored price %q: %w", s, err)
	}
	*p = v
	return nil
}
