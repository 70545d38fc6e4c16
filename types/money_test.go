package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"IDR", IDR(25000), 25000, "idr", "Rp 25000"},
		{"USD", USD(4900), 4900, "usd", "$49.00"},
		{"New upper-case", New(100, "IDR"), 100, "idr", "Rp 100"},
		{"Zero IDR", Zero("IDR"), 0, "idr", "Rp 0"},
		{"Negative USD", USD(-150), -150, "usd", "$-1.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
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

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return IDR(25000).Add(IDR(5000)) }, IDR(30000)},
		{"Add to empty zero", func() Money { return Money{}.Add(IDR(5000)) }, IDR(5000)},
		{"Add empty zero", func() Money { return IDR(5000).Add(Money{}) }, IDR(5000)},
		{"Subtract", func() Money { return IDR(60000).Subtract(IDR(650000)) }, IDR(-590000)},
		{"Multiply", func() Money { return IDR(25000).Multiply(2) }, IDR(50000)},
		{"MultiplyQuantity", func() Money { return IDR(12000).MultiplyQuantity(decimal.RequireFromString("0.3")) }, IDR(3600)},
		{"MultiplyQuantity rounds half up", func() Money { return IDR(15).MultiplyQuantity(decimal.RequireFromString("0.5")) }, IDR(8)},
		{"DivideSafe", func() Money { return IDR(60000).DivideSafe(4) }, IDR(15000)},
		{"DivideSafe by zero", func() Money { return IDR(60000).DivideSafe(0) }, IDR(0)},
		{"DivideSafe rounds", func() Money { return IDR(100).DivideSafe(3) }, IDR(33)},
		{"DivideQuantity", func() Money { return IDR(1200000).DivideQuantity(decimal.NewFromInt(100)) }, IDR(12000)},
		{"DivideQuantity by zero", func() Money { return IDR(1200000).DivideQuantity(decimal.Zero) }, IDR(0)},
		{"Negate", func() Money { return IDR(500).Negate() }, IDR(-500)},
		{"Sum", func() Money { return Sum(IDR(1), IDR(2), IDR(3)) }, IDR(6)},
		{"Sum empty", func() Money { return Sum() }, Money{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op()
			if !got.Equal(tt.expected) {
				t.Errorf("got %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on currency mismatch")
		}
	}()
	_ = IDR(100).Add(USD(100))
}

func TestMoneyCompare(t *testing.T) {
	if IDR(1).Compare(IDR(2)) != -1 {
		t.Error("expected -1")
	}
	if IDR(2).Compare(IDR(1)) != 1 {
		t.Error("expected 1")
	}
	if IDR(2).Compare(IDR(2)) != 0 {
		t.Error("expected 0")
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		part  Money
		whole Money
		want  float64
	}{
		{"half", IDR(50), IDR(100), 50},
		{"quarter", IDR(25), IDR(100), 25},
		{"loss", IDR(-50), IDR(100), -50},
		{"zero whole", IDR(100), IDR(0), 0},
		{"both zero", Money{}, Money{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.part, tt.whole); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoneyFormatLocale(t *testing.T) {
	if got := IDR(60000).Format(language.Indonesian); got != "Rp 60.000" {
		t.Errorf("got %q, want %q", got, "Rp 60.000")
	}
	if got := IDR(1200000).Format(language.English); got != "Rp 1,200,000" {
		t.Errorf("got %q, want %q", got, "Rp 1,200,000")
	}
}

func TestMoneyDisplay(t *testing.T) {
	tests := []struct {
		money Money
		want  string
	}{
		{IDR(25000), "Rp 25.000"},
		{IDR(1200000), "Rp 1.200.000"},
		{USD(123450), "$1,234.50"},
		{Money{Amount: 500}, "500"},
	}
	for _, tt := range tests {
		if got := tt.money.Display(); got != tt.want {
			t.Errorf("Display(%+v) = %q, want %q", tt.money, got, tt.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(IDR(25000))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"amount":25000,"currency":"idr","display":"Rp 25.000"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(IDR(25000)) {
		t.Errorf("got %+v after round trip", back)
	}
}
