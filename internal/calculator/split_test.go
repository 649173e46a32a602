package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		n       int
		want    []string
		wantErr bool
	}{
		{
			name:   "100 among three gives the extra cent to the first",
			amount: "100.00",
			n:      3,
			want:   []string{"33.34", "33.33", "33.33"},
		},
		{
			name:   "even split has no remainder",
			amount: "90.00",
			n:      3,
			want:   []string{"30", "30", "30"},
		},
		{
			name:   "rounding up base leaves a negative remainder",
			amount: "0.05",
			n:      3,
			want:   []string{"0.01", "0.02", "0.02"},
		},
		{
			name:   "two cents among four",
			amount: "0.02",
			n:      4,
			want:   []string{"0.01", "0.01", "0", "0"},
		},
		{
			name:   "single member takes everything",
			amount: "12.34",
			n:      1,
			want:   []string{"12.34"},
		},
		{name: "zero members", amount: "10.00", n: 0, wantErr: true},
		{name: "negative members", amount: "10.00", n: -1, wantErr: true},
		{name: "zero amount", amount: "0", n: 2, wantErr: true},
		{name: "negative amount", amount: "-5.00", n: 2, wantErr: true},
		{name: "sub-cent amount", amount: "10.005", n: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EqualSplit(d(tt.amount), tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EqualSplit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !got[i].Equal(d(tt.want[i])) {
					t.Errorf("share %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEqualSplit_InvalidInputSentinel(t *testing.T) {
	_, err := EqualSplit(d("10"), 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	_, err = EqualSplit(d("0"), 3)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEqualSplit_SumsExactly(t *testing.T) {
	amounts := []string{"0.01", "0.07", "1.00", "9.99", "10.01", "33.33", "100.00", "101.01", "999.99", "12345.67"}
	for _, a := range amounts {
		for n := 1; n <= 13; n++ {
			shares, err := EqualSplit(d(a), n)
			if err != nil {
				t.Fatalf("EqualSplit(%s, %d) failed: %v", a, n, err)
			}
			if total := sum(shares); !total.Equal(d(a)) {
				t.Errorf("EqualSplit(%s, %d) sums to %s", a, n, total)
			}
			for _, s := range shares {
				if !s.Equal(s.Round(2)) {
					t.Errorf("EqualSplit(%s, %d) produced sub-cent share %s", a, n, s)
				}
			}
		}
	}
}

func TestPercentageSplit(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		portions []Portion
		want     []string
		wantErr  bool
	}{
		{
			name:   "residual goes to the last member",
			amount: "100.00",
			portions: []Portion{
				{MemberID: "A", Value: d("33.33")},
				{MemberID: "B", Value: d("33.33")},
				{MemberID: "C", Value: d("33.34")},
			},
			want: []string{"33.33", "33.33", "33.34"},
		},
		{
			name:   "rounding drift absorbed by last member",
			amount: "10.00",
			portions: []Portion{
				{MemberID: "A", Value: d("33.33")},
				{MemberID: "B", Value: d("33.33")},
				{MemberID: "C", Value: d("33.34")},
			},
			want: []string{"3.33", "3.33", "3.34"},
		},
		{
			name:   "percentages within tolerance",
			amount: "50.00",
			portions: []Portion{
				{MemberID: "A", Value: d("50.005")},
				{MemberID: "B", Value: d("50.00")},
			},
			want: []string{"25.00", "25.00"},
		},
		{
			name:   "over 100 within tolerance leaves last member negative",
			amount: "100.00",
			portions: []Portion{
				{MemberID: "A", Value: d("100.01")},
				{MemberID: "B", Value: d("0")},
			},
			wantErr: true,
		},
		{
			name:   "percentages off by more than tolerance",
			amount: "50.00",
			portions: []Portion{
				{MemberID: "A", Value: d("50")},
				{MemberID: "B", Value: d("49")},
			},
			wantErr: true,
		},
		{
			name:   "negative percentage",
			amount: "50.00",
			portions: []Portion{
				{MemberID: "A", Value: d("110")},
				{MemberID: "B", Value: d("-10")},
			},
			wantErr: true,
		},
		{
			name:   "duplicate member",
			amount: "50.00",
			portions: []Portion{
				{MemberID: "A", Value: d("50")},
				{MemberID: "A", Value: d("50")},
			},
			wantErr: true,
		},
		{name: "no portions", amount: "50.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PercentageSplit(d(tt.amount), tt.portions)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PercentageSplit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			values := make([]decimal.Decimal, len(got))
			for i, p := range got {
				values[i] = p.Value
				if p.MemberID != tt.portions[i].MemberID {
					t.Errorf("portion %d member = %s, want %s", i, p.MemberID, tt.portions[i].MemberID)
				}
				if !p.Value.Equal(d(tt.want[i])) {
					t.Errorf("portion %d = %s, want %s", i, p.Value, tt.want[i])
				}
			}
			if total := sum(values); !total.Equal(d(tt.amount)) {
				t.Errorf("portions sum to %s, want %s", total, tt.amount)
			}
		})
	}
}

func TestPercentageSplit_SumsExactly(t *testing.T) {
	splits := [][]string{
		{"33.33", "33.33", "33.34"},
		{"12.5", "12.5", "75"},
		{"14.29", "14.29", "14.28", "14.29", "14.28", "14.29", "14.28"},
		{"99.99", "0.01"},
	}
	amounts := []string{"0.01", "1.00", "17.17", "100.00", "2500.55"}

	for _, pcts := range splits {
		portions := make([]Portion, len(pcts))
		for i, p := range pcts {
			portions[i] = Portion{MemberID: string(rune('A' + i)), Value: d(p)}
		}
		for _, a := range amounts {
			got, err := PercentageSplit(d(a), portions)
			if err != nil {
				t.Fatalf("PercentageSplit(%s, %v) failed: %v", a, pcts, err)
			}
			values := make([]decimal.Decimal, len(got))
			for i, p := range got {
				values[i] = p.Value
			}
			if total := sum(values); !total.Equal(d(a)) {
				t.Errorf("PercentageSplit(%s, %v) sums to %s", a, pcts, total)
			}
		}
	}
}

func TestCustomSplit(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		portions []Portion
		wantErr  bool
	}{
		{
			name:   "exact match",
			amount: "60.00",
			portions: []Portion{
				{MemberID: "A", Value: d("10.00")},
				{MemberID: "B", Value: d("50.00")},
			},
		},
		{
			name:   "within a cent",
			amount: "60.00",
			portions: []Portion{
				{MemberID: "A", Value: d("10.00")},
				{MemberID: "B", Value: d("49.99")},
			},
		},
		{
			name:   "zero share is allowed",
			amount: "60.00",
			portions: []Portion{
				{MemberID: "A", Value: d("0")},
				{MemberID: "B", Value: d("60.00")},
			},
		},
		{
			name:   "off by more than a cent",
			amount: "60.00",
			portions: []Portion{
				{MemberID: "A", Value: d("10.00")},
				{MemberID: "B", Value: d("49.98")},
			},
			wantErr: true,
		},
		{
			name:   "negative amount",
			amount: "60.00",
			portions: []Portion{
				{MemberID: "A", Value: d("-10.00")},
				{MemberID: "B", Value: d("70.00")},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CustomSplit(d(tt.amount), tt.portions)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CustomSplit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				if got != nil {
					t.Errorf("expected no result on error, got %v", got)
				}
				return
			}
			for i, p := range got {
				if !p.Value.Equal(tt.portions[i].Value) {
					t.Errorf("portion %d = %s, want %s", i, p.Value, tt.portions[i].Value)
				}
			}
		})
	}
}

func TestSplit(t *testing.T) {
	t.Run("equal uses members", func(t *testing.T) {
		shares, err := Split(models.SplitEqual, d("100.00"), []string{"A", "B", "C"}, nil)
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if len(shares) != 3 || shares[0].MemberID != "A" || !shares[0].Amount.Equal(d("33.34")) {
			t.Errorf("unexpected shares: %+v", shares)
		}
		if shares[0].Percentage.Valid {
			t.Error("equal split should not set percentages")
		}
	})

	t.Run("percentage records percentages", func(t *testing.T) {
		shares, err := Split(models.SplitPercentage, d("80.00"), nil, []Portion{
			{MemberID: "A", Value: d("25")},
			{MemberID: "B", Value: d("75")},
		})
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if !shares[1].Amount.Equal(d("60.00")) {
			t.Errorf("B amount = %s, want 60.00", shares[1].Amount)
		}
		if !shares[1].Percentage.Valid || !shares[1].Percentage.Decimal.Equal(d("75")) {
			t.Errorf("B percentage = %+v, want 75", shares[1].Percentage)
		}
	})

	t.Run("equal with duplicate members", func(t *testing.T) {
		_, err := Split(models.SplitEqual, d("10.00"), []string{"A", "A"}, nil)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := Split(models.SplitMethod("shares"), d("10.00"), []string{"A"}, nil)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
