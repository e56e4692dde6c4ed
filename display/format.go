// ABOUTME: Presentation formatting for money, dates and stages
// ABOUTME: Pure helpers shared by the web pages, TUI, CLI and MCP outputs
package display

import (
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/harperreed/pcrm/models"
)

const (
	// DateLayout renders calendar dates, e.g. "Mar 15, 2026".
	DateLayout = "Jan 2, 2006"

	// DateTimeLayout renders interaction timestamps, e.g. "3/15/2026, 2:30:00 PM".
	DateTimeLayout = "1/2/2006, 3:04:05 PM"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// symbols holds the en-US narrow symbols; other codes render as "CODE amount"
// with a no-break space.
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "CN¥",
	"INR": "₹",
	"KRW": "₩",
	"CAD": "CA$",
	"AUD": "A$",
	"NZD": "NZ$",
	"HKD": "HK$",
	"MXN": "MX$",
	"BRL": "R$",
	"TWD": "NT$",
	"ILS": "₪",
	"VND": "₫",
}

// Currency renders a whole-unit amount with grouping and the currency symbol.
// A nil or zero value is absent and reports false. An empty or unknown code
// falls back to USD.
func Currency(value *float64, code string) (string, bool) {
	if value == nil || *value == 0 {
		return "", false
	}
	return Amount(*value, code), true
}

// Amount renders a value like Currency but always produces output, including "$0".
func Amount(value float64, code string) string {
	code = normalizeCode(code)

	rounded := math.Round(value)
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	digits := printer.Sprintf("%.0f", rounded)

	if sym, ok := symbols[code]; ok {
		return sign + sym + digits
	}
	return sign + code + "\u00a0" + digits
}

func normalizeCode(code string) string {
	if code == "" {
		return models.DefaultCurrency
	}
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return models.DefaultCurrency
	}
	return unit.String()
}

// Date renders a calendar date. The date is shown as stored, without zone
// conversion, so a date never shifts to the previous day.
func Date(t *time.Time) (string, bool) {
	if t == nil || t.IsZero() {
		return "", false
	}
	return t.Format(DateLayout), true
}

// DateTime renders a timestamp in loc; a nil loc means time.Local.
func DateTime(t time.Time, loc *time.Location) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateTimeLayout), true
}

// Relative renders t relative to now, e.g. "3 days ago".
func Relative(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// StageBadge returns the CSS classes for a stage badge.
func StageBadge(stage models.Stage) string {
	switch stage {
	case models.StageLead:
		return "bg-gray-100 text-gray-700"
	case models.StageContacted:
		return "bg-blue-100 text-blue-700"
	case models.StageProposal:
		return "bg-amber-100 text-amber-700"
	case models.StageNegotiation:
		return "bg-orange-100 text-orange-700"
	case models.StageWon:
		return "bg-green-100 text-green-700"
	case models.StageLost:
		return "bg-red-100 text-red-700"
	default:
		return "bg-gray-100 text-gray-700"
	}
}

// Priority renders a 1–5 priority as filled and empty stars.
func Priority(p *int) string {
	if p == nil || *p < 1 {
		return ""
	}
	n := *p
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
