package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"commission-fees/domain"
	"commission-fees/shared"
)

// Helper to create decimals in tests, panics on error
func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCeilCents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100.001", "100.01"},
		{"100.00", "100"},
		{"0.001", "0.01"},
		{"173.9584239366791337", "173.96"},
		{"5", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := domain.CeilCents(dec(tt.in))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("CeilCents(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoney_Format(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		currency  shared.Currency
		precision int32
		want      string
	}{
		{"EurCents", "60", shared.EUR, 2, "0.60"},
		{"RoundsHalfUp", "0.5", shared.EUR, 2, "0.01"},
		{"RoundsDown", "0.49", shared.EUR, 2, "0.00"},
		{"Yen", "870000", shared.JPY, 0, "8700"},
		{"YenRounds", "859950", shared.JPY, 0, "8600"},
		{"Zero", "0", shared.USD, 2, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NewMoney(dec(tt.amount), tt.currency).Format(tt.precision)
			if got != tt.want {
				t.Errorf("Format = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMoney_Compare(t *testing.T) {
	a := domain.NewMoney(dec("5000"), shared.EUR)
	b := domain.NewMoney(dec("30"), shared.EUR)

	if gt, err := a.GreaterThan(b); err != nil || !gt {
		t.Errorf("expected 5000 > 30, got %v (err %v)", gt, err)
	}
	if le, err := b.LessThanOrEqual(a); err != nil || !le {
		t.Errorf("expected 30 <= 5000, got %v (err %v)", le, err)
	}
	if le, err := a.LessThanOrEqual(a); err != nil || !le {
		t.Errorf("expected equal amounts to be <=, got %v (err %v)", le, err)
	}
	if _, err := a.GreaterThan(domain.NewMoney(dec("1"), shared.USD)); err == nil {
		t.Errorf("expected currency mismatch error")
	}
}

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"200.00", 20000, false},
		{"1200", 120000, false},
		{"3000000", 300000000, false},
		{"0.5", 50, false},
		{"1.005", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseMinorUnits(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMinorUnits(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMinorUnits(%s) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrecisionTable_For(t *testing.T) {
	p := domain.PrecisionTable{shared.JPY: 0}
	if p.For(shared.JPY) != 0 {
		t.Errorf("expected JPY precision 0")
	}
	if p.For(shared.EUR) != domain.DefaultPrecision {
		t.Errorf("expected default precision for EUR")
	}
}

func TestOperation_Validate(t *testing.T) {
	valid := func() *domain.Operation {
		return &domain.Operation{
			Sequence: 1,
			Date:     date("2016-01-05"),
			Kind:     shared.CashIn,
			Amount:   20000,
			Currency: shared.EUR,
			User:     domain.NewUser(1, shared.Natural),
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid operation, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(op *domain.Operation)
	}{
		{"NoUser", func(op *domain.Operation) { op.User = nil }},
		{"NoDate", func(op *domain.Operation) { op.Date = date("0001-01-01") }},
		{"NoCurrency", func(op *domain.Operation) { op.Currency = "" }},
		{"NegativeAmount", func(op *domain.Operation) { op.Amount = -1 }},
		{"UnknownKind", func(op *domain.Operation) { op.Kind = 0 }},
		{"UnknownClass", func(op *domain.Operation) { op.User.Class = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := valid()
			tt.mutate(op)
			if err := op.Validate(); !errors.Is(err, domain.ErrInvalidOperation) {
				t.Errorf("expected ErrInvalidOperation, got %v", err)
			}
		})
	}

	t.Run("Nil", func(t *testing.T) {
		var op *domain.Operation
		if err := op.Validate(); !errors.Is(err, domain.ErrInvalidOperation) {
			t.Errorf("expected ErrInvalidOperation, got %v", err)
		}
	})
}
