// package formatter renders catalog data for the terminal and exports lists to files (CSV, Markdown, plain text, JSON)
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/kino/internal/models"
)

// Placeholder is shown for values the API did not provide.
const Placeholder = "—"

// NotAvailable is shown when no rating source is positive.
const NotAvailable = "N/A"

// Rating renders the combined rating of m with one decimal, or [NotAvailable].
func Rating(m models.Movie) string {
	r, ok := m.CombinedRating()
	if !ok {
		return NotAvailable
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// Score renders a single rating source with the given number of decimals.
func Score(s models.Score, decimals int) string {
	if !s.Positive() {
		return Placeholder
	}
	return strconv.FormatFloat(float64(s), 'f', decimals, 64)
}

// Money groups the digits of an amount by thousands with spaces, keeping any
// currency prefix or suffix: "$ 13000000" becomes "$ 13 000 000". Digits
// after a decimal separator are left alone.
func Money(a models.Amount) string {
	s := strings.TrimSpace(string(a))
	if models.Blank(s) {
		return Placeholder
	}

	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if !isDigit(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && isDigit(runes[j]) {
			j++
		}
		digits := string(runes[i:j])
		if i > 0 && (runes[i-1] == '.' || runes[i-1] == ',') {
			b.WriteString(digits)
		} else {
			b.WriteString(GroupDigits(digits))
		}
		i = j
	}
	return b.String()
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// GroupDigits inserts a space between every group of three digits from the right.
func GroupDigits(digits string) string {
	runes := []rune(digits)
	if len(runes) <= 3 {
		return digits
	}
	head := len(runes) % 3
	if head == 0 {
		head = 3
	}

	var b strings.Builder
	b.WriteString(string(runes[:head]))
	for i := head; i < len(runes); i += 3 {
		b.WriteByte(' ')
		b.WriteString(string(runes[i : i+3]))
	}
	return b.String()
}

// Votes renders a vote count with grouped digits.
func Votes(n int64) string {
	if n <= 0 {
		return "0"
	}
	return GroupDigits(strconv.FormatInt(n, 10))
}

// Runtime renders minutes as "2 ч 16 мин", or "" when unknown.
func Runtime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%d ч %d мин", minutes/60, minutes%60)
}

// Credits renders up to limit names, or [Placeholder] when nobody is credited.
func Credits(c models.Credit, limit int) string {
	names := c.Names(limit)
	if len(names) == 0 {
		return Placeholder
	}
	return strings.Join(names, ", ")
}

// Year renders the release year or [Placeholder].
func Year(m models.Movie) string {
	if m.YearRelease <= 0 {
		return Placeholder
	}
	return strconv.Itoa(m.YearRelease)
}

// Title prefers the localized title, then the English one.
func Title(m models.Movie) string {
	if t := strings.TrimSpace(m.Title); t != "" {
		return t
	}
	if t := strings.TrimSpace(m.EnglishTitle); t != "" {
		return t
	}
	return "Название неизвестно"
}

// MovieRow renders one catalog line: rank, title, year, director and rating.
func MovieRow(rank int, m models.Movie) string {
	return fmt.Sprintf("%3d. %s (%s) · %s · %s", rank, Title(m), Year(m), Credits(m.Director, 1), Rating(m))
}

// Truncate shortens s to at most n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
