package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   string
		currency string
		display  string
	}{
		{"USD", USD("49.00"), "49", "usd", "$49.00"},
		{"EUR", EUR("199.90"), "199.9", "eur", "€199.90"},
		{"GBP", GBP("99.00"), "99", "gbp", "£99.00"},
		{"JPY", JPY("100"), "100", "jpy", "¥100"},
		{"CAD", CAD("25.00"), "25", "cad", "C$25.00"},
		{"AUD", AUD("75.50"), "75.5", "aud", "A$75.50"},
		{"Zero USD", Zero("USD"), "0", "usd", "$0.00"},
		{"Zero EUR", Zero("EUR"), "0", "eur", "€0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount.String() != tt.amount {
				t.Errorf("Amount: got %s, want %s", tt.money.Amount.String(), tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestFromString(t *testing.T) {
	m, err := FromString("12.345", "usd")
	if err != nil {
		t.Fatalf("FromString error: %v", err)
	}
	if m.Amount.String() != "12.345" {
		t.Errorf("Amount: got %s, want 12.345", m.Amount.String())
	}

	if _, err := FromString("not-a-number", "usd"); err == nil {
		t.Error("expected error for malformed amount")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return USD("1.00").Add(USD("2.00")) }, USD("3.00")},
		{"Subtract", func() Money { return USD("5.00").Subtract(USD("2.00")) }, USD("3.00")},
		{"Multiply", func() Money { return USD("1.00").Multiply(decimal.NewFromInt(3)) }, USD("3.00")},
		{"Percent", func() Money { return USD("100.00").Percent(decimal.NewFromInt(10)) }, USD("10.00")},
		{"Negate", func() Money { return USD("1.00").Negate() }, USD("-1.00")},
		{"Abs positive", func() Money { return USD("1.00").Abs() }, USD("1.00")},
		{"Abs negative", func() Money { return USD("-1.00").Abs() }, USD("1.00")},
		{"Complex", func() Money {
			return USD("10.00").Add(USD("5.00")).Multiply(decimal.NewFromInt(2)).Subtract(USD("10.00"))
		}, USD("20.00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyExactness(t *testing.T) {
	// 0.1 + 0.2 is exactly 0.3 in decimal arithmetic; binary floats
	// famously get this wrong.
	sum := USD("0.1").Add(USD("0.2"))
	if !sum.Equal(USD("0.3")) {
		t.Errorf("0.1 + 0.2: got %s, want $0.30", sum.String())
	}

	// Fractional cents survive intermediate arithmetic untouched.
	third := USD("10").Percent(decimal.RequireFromString("33.333"))
	if third.Amount.String() != "3.3333" {
		t.Errorf("got %s, want 3.3333", third.Amount.String())
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	// This should panic
	_ = USD("1.00").Add(EUR("1.00"))
}

func TestMoneyComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Money
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", USD("1.00"), USD("1.00"), false, false, true},
		{"Less", USD("0.50"), USD("1.00"), true, false, false},
		{"Greater", USD("2.00"), USD("1.00"), false, true, false},
		{"Zero equal", USD("0"), Zero("usd"), false, false, true},
		{"Negative less", USD("-1.00"), USD("1.00"), true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestMoneyPredicates(t *testing.T) {
	tests := []struct {
		name       string
		money      Money
		isZero     bool
		isPositive bool
		isNegative bool
	}{
		{"Zero", USD("0"), true, false, false},
		{"Positive", USD("1.00"), false, true, false},
		{"Negative", USD("-1.00"), false, false, true},
		{"Large positive", USD("9999999.99"), false, true, false},
		{"Large negative", USD("-9999999.99"), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.money.IsZero(); got != tt.isZero {
				t.Errorf("IsZero: got %v, want %v", got, tt.isZero)
			}
			if got := tt.money.IsPositive(); got != tt.isPositive {
				t.Errorf("IsPositive: got %v, want %v", got, tt.isPositive)
			}
			if got := tt.money.IsNegative(); got != tt.isNegative {
				t.Errorf("IsNegative: got %v, want %v", got, tt.isNegative)
			}
		})
	}
}

func TestMoneyIsSet(t *testing.T) {
	var unset Money
	if unset.IsSet() {
		t.Error("zero value should not be set")
	}
	if !Zero("usd").IsSet() {
		t.Error("Zero(usd) should be set")
	}
}

func TestMoneyFormatMajor(t *testing.T) {
	tests := []struct {
		money    Money
		expected string
	}{
		{USD("49"), "49.00"},
		{USD("1"), "1.00"},
		{USD("0.01"), "0.01"},
		{USD("0"), "0.00"},
		{USD("-49"), "-49.00"},
		{USD("-0.01"), "-0.01"},
		{USD("1.005"), "1.01"}, // Display rounding only
		{EUR("99.99"), "99.99"},
		{JPY("100"), "100"},     // No decimals
		{JPY("12345"), "12345"}, // No decimals
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.money.FormatMajor(); got != tt.expected {
				t.Errorf("FormatMajor: got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	m := USD("49.00")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	// Check JSON structure
	expected := `{"amount":"49","currency":"usd","display":"$49.00"}`
	if string(data) != expected {
		t.Errorf("JSON: got %s, want %s", string(data), expected)
	}

	// Unmarshal and verify
	var result Money
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !result.Equal(m) {
		t.Errorf("Unmarshaled data incorrect: %+v", result)
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		name     string
		values   []Money
		expected Money
	}{
		{"Empty", []Money{}, Zero("usd")},
		{"Single", []Money{USD("1.00")}, USD("1.00")},
		{"Multiple", []Money{USD("1.00"), USD("2.00"), USD("3.00")}, USD("6.00")},
		{"With negatives", []Money{USD("1.00"), USD("-0.50"), USD("2.00")}, USD("2.50")},
		{"All zero", []Money{USD("0"), USD("0"), USD("0")}, USD("0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sum(tt.values...)
			if !result.Equal(tt.expected) {
				t.Errorf("Sum: got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCurrencySymbols(t *testing.T) {
	tests := []struct {
		currency string
		symbol   string
	}{
		{"usd", "$"},
		{"eur", "€"},
		{"gbp", "£"},
		{"jpy", "¥"},
		{"cad", "C$"},
		{"aud", "A$"},
		{"unknown", "UNKNOWN "},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			got := currencySymbol(tt.currency)
			if got != tt.symbol {
				t.Errorf("Symbol for %s: got %s, want %s", tt.currency, got, tt.symbol)
			}
		})
	}
}

func BenchmarkMoneyAdd(b *testing.B) {
	m1 := USD("1.00")
	m2 := USD("2.00")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m1.Add(m2)
	}
}

func BenchmarkMoneyString(b *testing.B) {
	m := USD("49.00")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.String()
	}
}

func BenchmarkMoneyJSON(b *testing.B) {
	m := USD("49.00")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(m)
	}
}
