// Package types provides common value types used across kedai.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is the currency used when none is configured.
const DefaultCurrency = "idr"

// Money represents a monetary value in the smallest currency unit.
// Arithmetic is integer-only; multiplication by fractional quantities
// rounds half away from zero to the smallest unit.
//
// Examples:
//   - IDR(25000) = Rp 25.000 (rupiah has no minor unit)
//   - USD(4900) = $49.00 (4900 cents)
type Money struct {
	Amount   int64  `json:"amount"`   // Smallest unit (rupiah, cents, ...)
	Currency string `json:"currency"` // ISO 4217 lowercase: "idr", "usd"
}

// IDR creates a Money value in Indonesian Rupiah.
func IDR(rupiah int64) Money { return Money{Amount: rupiah, Currency: "idr"} }

// USD creates a Money value in US Dollars (cents).
func USD(cents int64) Money { return Money{Amount: cents, Currency: "usd"} }

// New creates a Money value in the given currency.
func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: strings.ToLower(currency)}
}

// Zero returns a zero Money value in the specified currency.
func Zero(currency string) Money { return Money{Amount: 0, Currency: strings.ToLower(currency)} }

// ──────────────────────────────────────────────────
// Arithmetic
// ──────────────────────────────────────────────────

// Add adds two Money values. A zero value without a currency adopts the
// other operand's currency, so Money{} is the identity for sums.
// Panics if both carry different currencies.
func (m Money) Add(other Money) Money {
	cur := m.commonCurrency(other)
	return Money{Amount: m.Amount + other.Amount, Currency: cur}
}

// Subtract subtracts another Money value. Same currency rules as Add.
func (m Money) Subtract(other Money) Money {
	cur := m.commonCurrency(other)
	return Money{Amount: m.Amount - other.Amount, Currency: cur}
}

// Multiply multiplies the Money by an integer quantity.
func (m Money) Multiply(qty int64) Money {
	return Money{Amount: m.Amount * qty, Currency: m.Currency}
}

// MultiplyQuantity multiplies the Money by a fractional quantity, e.g. a
// unit cost by 0.25 kg.
func (m Money) MultiplyQuantity(qty decimal.Decimal) Money {
	v := decimal.NewFromInt(m.Amount).Mul(qty).Round(0)
	return Money{Amount: v.IntPart(), Currency: m.Currency}
}

// DivideSafe divides by an integer count. A zero divisor yields zero.
func (m Money) DivideSafe(divisor int64) Money {
	if divisor == 0 {
		return Money{Amount: 0, Currency: m.Currency}
	}
	v := decimal.NewFromInt(m.Amount).Div(decimal.NewFromInt(divisor)).Round(0)
	return Money{Amount: v.IntPart(), Currency: m.Currency}
}

// DivideQuantity divides by a fractional quantity, e.g. a total cost by the
// kilograms bought. A zero quantity yields zero.
func (m Money) DivideQuantity(qty decimal.Decimal) Money {
	if qty.IsZero() {
		return Money{Amount: 0, Currency: m.Currency}
	}
	v := decimal.NewFromInt(m.Amount).Div(qty).Round(0)
	return Money{Amount: v.IntPart(), Currency: m.Currency}
}

// Negate returns the negative of the Money value.
func (m Money) Negate() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Percent returns part / whole × 100. A zero whole yields 0.
func Percent(part, whole Money) float64 {
	if whole.Amount == 0 {
		return 0
	}
	p := float64(part.Amount) / float64(whole.Amount) * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

// ──────────────────────────────────────────────────
// Comparison
// ──────────────────────────────────────────────────

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Amount > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.Amount < 0 }

// Equal returns true if both Money values have the same amount and currency.
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.Currency == other.Currency
}

// Compare returns -1, 0 or +1 comparing amounts. Panics on currency mismatch.
func (m Money) Compare(other Money) int {
	m.commonCurrency(other)
	switch {
	case m.Amount < other.Amount:
		return -1
	case m.Amount > other.Amount:
		return 1
	default:
		return 0
	}
}

// ──────────────────────────────────────────────────
// Formatting
// ──────────────────────────────────────────────────

// FormatMajor returns the major unit string without currency symbol.
// "49.00" for USD(4900), "25000" for IDR(25000).
func (m Money) FormatMajor() string {
	decimals := currencyDecimals(m.Currency)
	if decimals == 0 {
		return fmt.Sprintf("%d", m.Amount)
	}

	divisor := int64(1)
	for i := 0; i < decimals; i++ {
		divisor *= 10
	}

	abs := m.Amount
	sign := ""
	if abs < 0 {
		abs = -abs
		sign = "-"
	}

	return fmt.Sprintf("%s%d.%0*d", sign, abs/divisor, decimals, abs%divisor)
}

// String returns the amount with its currency symbol, e.g. "Rp 25000".
func (m Money) String() string {
	return currencySymbol(m.Currency) + m.FormatMajor()
}

// Format renders the amount with locale-specific digit grouping, e.g.
// "Rp 60.000" for IDR(60000) under language.Indonesian.
func (m Money) Format(tag language.Tag) string {
	decimals := currencyDecimals(m.Currency)
	p := message.NewPrinter(tag)

	var body string
	if decimals == 0 {
		body = p.Sprint(number.Decimal(m.Amount, number.Scale(0)))
	} else {
		major := decimal.New(m.Amount, int32(-decimals)).InexactFloat64()
		body = p.Sprint(number.Decimal(major, number.Scale(decimals)))
	}

	return currencySymbol(m.Currency) + body
}

// Display renders the amount with the digit grouping of the currency's home
// locale, e.g. "Rp 25.000" for IDR(25000) and "$1,234.50" for USD(123450).
func (m Money) Display() string {
	return m.Format(displayLocale(m.Currency))
}

// MarshalJSON implements json.Marshaler. The Display string is included for
// consumers that only render.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}{
		Amount:   m.Amount,
		Currency: m.Currency,
		Display:  m.Display(),
	})
}

// commonCurrency returns the currency two operands share, panicking on a
// mismatch. An empty currency on a zero value is compatible with anything.
func (m Money) commonCurrency(other Money) string {
	switch {
	case m.Currency == other.Currency:
		return m.Currency
	case m.Currency == "" && m.Amount == 0:
		return other.Currency
	case other.Currency == "" && other.Amount == 0:
		return m.Currency
	default:
		panic(fmt.Sprintf("money: currency mismatch: %s != %s", m.Currency, other.Currency))
	}
}

func currencySymbol(currency string) string {
	symbols := map[string]string{
		"idr": "Rp ",
		"usd": "$",
		"eur": "€",
		"sgd": "S$",
		"myr": "RM ",
		"jpy": "¥",
	}
	if sym, ok := symbols[strings.ToLower(currency)]; ok {
		return sym
	}
	if currency == "" {
		return ""
	}
	return strings.ToUpper(currency) + " "
}

func displayLocale(currency string) language.Tag {
	switch strings.ToLower(currency) {
	case "idr":
		return language.Indonesian
	case "eur":
		return language.German
	case "jpy":
		return language.Japanese
	case "myr":
		return language.Malay
	default:
		return language.English
	}
}

func currencyDecimals(currency string) int {
	zeroDecimal := map[string]bool{
		"idr": true,
		"jpy": true,
		"krw": true,
		"vnd": true,
		"clp": true,
		"pyg": true,
		"":    true,
	}
	if zeroDecimal[strings.ToLower(currency)] {
		return 0
	}
	return 2
}

// Sum adds up Money values. An empty input yields Money{}.
func Sum(values ...Money) Money {
	var total Money
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
