package cmd

import (
	"testing"
	"time"
)

func TestPeriodOrCurrent(t *testing.T) {
	now := time.Date(2025, 5, 29, 9, 0, 0, 0, time.UTC)

	p, err := periodOrCurrent("", now)
	if err != nil {
		t.Fatalf("periodOrCurrent(\"\"): %v", err)
	}
	if p.String() != "2025-05" {
		t.Errorf("periodOrCurrent(\"\") = %s, want 2025-05", p)
	}

	p, err = periodOrCurrent("2024-12", now)
	if err != nil {
		t.Fatalf("periodOrCurrent(2024-12): %v", err)
	}
	if p.InvoiceNumber() != "20241231" {
		t.Errorf("InvoiceNumber = %s, want 20241231", p.InvoiceNumber())
	}

	if _, err := periodOrCurrent("2024-13", now); err == nil {
		t.Error("periodOrCurrent(2024-13) should fail")
	}
}
