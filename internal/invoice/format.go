package invoice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
	"github.com/Tiliavir/monthly-invoicer/internal/worklog"
)

// DraftName is the name of the working copy of the template.
func DraftName(p billing.Period) string {
	return "請求書_" + p.InvoiceNumber()
}

// PDFName is <YYYYMMDD>_<amount>_<payee>.pdf.
func PDFName(p billing.Period, amount, payee string) string {
	return fmt.Sprintf("%s_%s_%s.pdf", p.InvoiceNumber(), amount, payee)
}

// FormatAmount renders a cell value the way it appears in file names:
// integral numbers without decimals, strings trimmed.
func FormatAmount(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// hoursValue is what gets written to the hours cell: a number, or text with
// the unit suffix when one is configured.
func hoursValue(hours float64, suffix string) any {
	h := worklog.RoundHours(hours)
	if suffix == "" {
		return h
	}
	return strconv.FormatFloat(h, 'f', -1, 64) + suffix
}
