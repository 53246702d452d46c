package leads

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders whole US dollars with thousands separators.
func FormatCurrency(value float64) string {
	rounded := math.Round(value)
	if rounded < 0 {
		return currencyPrinter.Sprintf("-$%d", int64(-rounded))
	}
	return currencyPrinter.Sprintf("$%d", int64(rounded))
}

// FormatCurrencyShort renders compact axis labels such as $1.2M or $450K.
func FormatCurrencyShort(value float64) string {
	switch {
	case value >= 1_000_000:
		return fmt.Sprintf("$%.1fM", value/1_000_000)
	case value >= 1_000:
		return fmt.Sprintf("$%.0fK", value/1_000)
	default:
		return fmt.Sprintf("$%g", value)
	}
}

// FormatDate renders the table and CSV date, e.g. "Mar 4, 2025".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatDayLabel turns a YYYY-MM-DD bucket into a chart label like "Mar 4".
func FormatDayLabel(day string) string {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return day
	}
	return t.Format("Jan 2")
}

// Initials returns up to two upper-case initials for an avatar.
func Initials(name string) string {
	var initials []rune
	for _, part := range strings.Fields(name) {
		initials = append(initials, []rune(part)[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}
