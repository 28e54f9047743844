package billing_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
)

func TestPeriodInvoiceNumber(t *testing.T) {
	tests := []struct {
		period billing.Period
		number string
		date   string
	}{
		{billing.Period{Year: 2025, Month: time.May}, "20250531", "2025/05/31"},
		{billing.Period{Year: 2024, Month: time.February}, "20240229", "2024/02/29"},
		{billing.Period{Year: 2025, Month: time.February}, "20250228", "2025/02/28"},
		{billing.Period{Year: 2025, Month: time.September}, "20250930", "2025/09/30"},
		{billing.Period{Year: 2025, Month: time.December}, "20251231", "2025/12/31"},
	}
	for _, tt := range tests {
		if got := tt.period.InvoiceNumber(); got != tt.number {
			t.Errorf("%s InvoiceNumber = %q, want %q", tt.period, got, tt.number)
		}
		if got := tt.period.InvoiceDate(); got != tt.date {
			t.Errorf("%s InvoiceDate = %q, want %q", tt.period, got, tt.date)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    billing.Period
		wantErr bool
	}{
		{"2025-05", billing.Period{Year: 2025, Month: time.May}, false},
		{"2025/5", billing.Period{Year: 2025, Month: time.May}, false},
		{" 2024-12 ", billing.Period{Year: 2024, Month: time.December}, false},
		{"2025-13", billing.Period{}, true},
		{"2025-00", billing.Period{}, true},
		{"202505", billing.Period{}, true},
		{"", billing.Period{}, true},
		{"abcd-01", billing.Period{}, true},
	}
	for _, tt := range tests {
		got, err := billing.ParsePeriod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePeriod(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPeriodContains(t *testing.T) {
	p := billing.Period{Year: 2025, Month: time.March}
	if !p.Contains(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected March 1 to be contained")
	}
	if p.Contains(time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC)) {
		t.Error("expected February 28 to be excluded")
	}
	if p.Contains(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected March of another year to be excluded")
	}
	if got := billing.PeriodOf(time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)); got != p {
		t.Errorf("PeriodOf = %v, want %v", got, p)
	}
}
