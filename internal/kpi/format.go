package kpi

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// WeekDisplay is a formatted WeekPerformance
type WeekDisplay struct {
	Pct  string `json:"pct"`
	Week int    `json:"week"`
}

// Display is a ProfileKPI ready to be shown
type Display struct {
	Average     string      `json:"average"`
	WeeksPlayed int         `json:"weeks_played"`
	Best        WeekDisplay `json:"best"`
	Worst       WeekDisplay `json:"worst"`
}

// Formatter renders KPI figures for a locale
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a Formatter for tag
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// NewFormatterForLocale parses a BCP 47 locale such as "it-IT",
// falling back to Italian when it cannot be parsed.
func NewFormatterForLocale(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Italian
	}
	return NewFormatter(tag)
}

// Percent formats v with at most one fraction digit: 65.5 is "65,5%" in Italian
func (f *Formatter) Percent(v float64) string {
	return f.printer.Sprintf("%v%%", number.Decimal(v, number.MaxFractionDigits(1)))
}

// Display formats every figure of k
func (f *Formatter) Display(k ProfileKPI) Display {
	return Display{
		Average:     f.Percent(k.Average),
		WeeksPlayed: k.WeeksPlayed,
		Best:        WeekDisplay{Pct: f.Percent(k.Best.Percent), Week: k.Best.Week},
		Worst:       WeekDisplay{Pct: f.Percent(k.Worst.Percent), Week: k.Worst.Week},
	}
}

// ShareMessage is the text shared from the profile screen
func (f *Formatter) ShareMessage(d Display) string {
	return f.printer.Sprintf("Il mio punteggio medio su Swipick è %s su %d giornate, il mio risultato migliore è %s. Sai fare meglio?",
		d.Average, d.WeeksPlayed, d.Best.Pct)
}

// DisplayName is the first word of fullName, or the local part of email
func DisplayName(fullName, email string) string {
	if fields := strings.Fields(fullName); len(fields) > 0 {
		return fields[0]
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

// AvatarInitial is the upper-cased first letter of displayName or email, or "U"
func AvatarInitial(displayName, email string) string {
	name := displayName
	if name == "" {
		name = email
	}
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "U"
	}
	return string(unicode.ToUpper(r))
}
