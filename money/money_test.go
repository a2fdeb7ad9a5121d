package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		currency string
		want     string
		wantErr  bool
	}{
		{name: "plain", value: "29.99", currency: "GBP", want: "29.99 GBP"},
		{name: "whole units padded", value: "20", currency: "USD", want: "20.00 USD"},
		{name: "negative", value: "-3.5", currency: "USD", want: "-3.50 USD"},
		{name: "rounds to minor units", value: "1.005", currency: "USD", want: "1.00 USD"},
		{name: "rounds half to even up", value: "1.015", currency: "USD", want: "1.02 USD"},
		{name: "zero decimal currency", value: "1200", currency: "JPY", want: "1200 JPY"},
		{name: "lowercase code normalized", value: "5", currency: "usd", want: "5.00 USD"},
		{name: "not a number", value: "abc", currency: "USD", wantErr: true},
		{name: "two decimal points", value: "1.2.3", currency: "USD", wantErr: true},
		{name: "missing currency", value: "5", currency: "", wantErr: true},
		{name: "blank currency", value: "5", currency: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromString(tt.value, tt.currency)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("FromString(%q, %q) expected error, got %v", tt.value, tt.currency, m)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromString(%q, %q) returned error: %v", tt.value, tt.currency, err)
			}
			if got := m.String(); got != tt.want {
				t.Errorf("FromString(%q, %q) = %s, want %s", tt.value, tt.currency, got, tt.want)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := MustParse("10.50", "USD")
	b := MustParse("2.25", "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if got := sum.String(); got != "12.75 USD" {
		t.Errorf("Add = %s, want 12.75 USD", got)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub returned error: %v", err)
	}
	if got := diff.String(); got != "8.25 USD" {
		t.Errorf("Sub = %s, want 8.25 USD", got)
	}

	if got := a.Neg().String(); got != "-10.50 USD" {
		t.Errorf("Neg = %s, want -10.50 USD", got)
	}
	if got := a.Neg().Abs().String(); got != "10.50 USD" {
		t.Errorf("Abs = %s, want 10.50 USD", got)
	}

	if !a.IsPositive() || a.IsNegative() || a.IsZero() {
		t.Errorf("sign predicates wrong for %s", a)
	}
	if z := Zero("USD"); !z.IsZero() || z.IsPositive() || z.IsNegative() {
		t.Errorf("sign predicates wrong for %s", z)
	}
}

func TestCurrencyMismatch(t *testing.T) {
	usd := MustParse("10", "USD")
	gbp := MustParse("10", "GBP")

	if _, err := usd.Add(gbp); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Add across currencies: got %v, want ErrCurrencyMismatch", err)
	}
	if _, err := usd.Sub(gbp); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Sub across currencies: got %v, want ErrCurrencyMismatch", err)
	}
	if _, err := usd.Cmp(gbp); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Cmp across currencies: got %v, want ErrCurrencyMismatch", err)
	}
}

func TestCmpZeroIsCurrencyAgnostic(t *testing.T) {
	usd := MustParse("10", "USD")

	got, err := usd.Cmp(Zero("GBP"))
	if err != nil {
		t.Fatalf("Cmp against foreign zero returned error: %v", err)
	}
	if got != 1 {
		t.Errorf("Cmp(10 USD, 0 GBP) = %d, want 1", got)
	}

	got, err = Zero("USD").Cmp(Zero("JPY"))
	if err != nil {
		t.Fatalf("Cmp of two zeros returned error: %v", err)
	}
	if got != 0 {
		t.Errorf("Cmp(0 USD, 0 JPY) = %d, want 0", got)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Money
		want bool
	}{
		{name: "same amount same currency", a: MustParse("20", "USD"), b: MustParse("20.00", "USD"), want: true},
		{name: "different amounts", a: MustParse("20", "USD"), b: MustParse("21", "USD"), want: false},
		{name: "same amount different currency", a: MustParse("20", "USD"), b: MustParse("20", "GBP"), want: false},
		{name: "zeros across currencies", a: Zero("USD"), b: Zero("GBP"), want: true},
		{name: "zero value money is zero", a: Money{}, b: Zero("EUR"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		currency string
		n        int
		want     []string
	}{
		{name: "even", value: "12.00", currency: "USD", n: 3, want: []string{"4.00 USD", "4.00 USD", "4.00 USD"}},
		{name: "remainder to earliest", value: "11.00", currency: "USD", n: 3, want: []string{"3.67 USD", "3.67 USD", "3.66 USD"}},
		{name: "single remainder unit", value: "10.00", currency: "USD", n: 3, want: []string{"3.34 USD", "3.33 USD", "3.33 USD"}},
		{name: "whole unit currency", value: "100", currency: "JPY", n: 3, want: []string{"34 JPY", "33 JPY", "33 JPY"}},
		{name: "negative keeps sign on earliest", value: "-10.00", currency: "USD", n: 3, want: []string{"-3.34 USD", "-3.33 USD", "-3.33 USD"}},
		{name: "tiny amount", value: "0.05", currency: "USD", n: 2, want: []string{"0.03 USD", "0.02 USD"}},
		{name: "more shares than units", value: "0.02", currency: "USD", n: 3, want: []string{"0.01 USD", "0.01 USD", "0.00 USD"}},
		{name: "one share", value: "7.77", currency: "USD", n: 1, want: []string{"7.77 USD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MustParse(tt.value, tt.currency)
			shares, err := m.Split(tt.n)
			if err != nil {
				t.Fatalf("Split(%d) returned error: %v", tt.n, err)
			}
			if len(shares) != len(tt.want) {
				t.Fatalf("Split(%d) returned %d shares, want %d", tt.n, len(shares), len(tt.want))
			}

			total := decimal.Zero
			for i, s := range shares {
				if got := s.String(); got != tt.want[i] {
					t.Errorf("share %d = %s, want %s", i, got, tt.want[i])
				}
				total = total.Add(s.Amount())
			}
			if !total.Equal(m.Amount()) {
				t.Errorf("shares sum to %s, want %s", total, m.Amount())
			}
		})
	}
}

func TestSplitPreservesExtraPrecision(t *testing.T) {
	// New does not round, so a sub-minor-unit amount must still split
	// without losing value.
	m := New(decimal.RequireFromString("0.005"), "USD")

	shares, err := m.Split(2)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}

	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount())
	}
	if !total.Equal(m.Amount()) {
		t.Errorf("shares sum to %s, want %s", total, m.Amount())
	}
	if got := shares[0].String(); got != "0.003 USD" {
		t.Errorf("first share = %s, want 0.003 USD", got)
	}
}

func TestSplitRejectsNonPositiveCount(t *testing.T) {
	m := MustParse("10", "USD")
	for _, n := range []int{0, -1} {
		if _, err := m.Split(n); err == nil {
			t.Errorf("Split(%d) expected error", n)
		}
	}
}

func TestMinorUnits(t *testing.T) {
	if got := MinorUnits("USD"); got != 2 {
		t.Errorf("MinorUnits(USD) = %d, want 2", got)
	}
	if got := MinorUnits("JPY"); got != 0 {
		t.Errorf("MinorUnits(JPY) = %d, want 0", got)
	}
	if got := MinorUnits("krw"); got != 0 {
		t.Errorf("MinorUnits(krw) = %d, want 0", got)
	}
}
