package views

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Locale carries the viewer's date and number conventions.
type Locale struct {
	Tag          language.Tag
	dateLayout   string
	decimalComma bool
}

// Date layouts follow the browsers' default short date for each language.
var (
	localeItalian = Locale{Tag: language.Italian, dateLayout: "2/1/2006", decimalComma: true}
	localeEnglish = Locale{Tag: language.English, dateLayout: "1/2/2006"}
	localeGerman  = Locale{Tag: language.German, dateLayout: "2.1.2006", decimalComma: true}
	localeFrench  = Locale{Tag: language.French, dateLayout: "02/01/2006", decimalComma: true}
	localeSpanish = Locale{Tag: language.Spanish, dateLayout: "2/1/2006", decimalComma: true}
)

// DefaultLocale is used when the viewer's preferences match nothing.
var DefaultLocale = localeItalian

var supportedLocales = []Locale{localeItalian, localeEnglish, localeGerman, localeFrench, localeSpanish}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(supportedLocales))
	for i, l := range supportedLocales {
		tags[i] = l.Tag
	}
	return language.NewMatcher(tags)
}()

// MatchLocale picks the supported locale closest to an Accept-Language
// header value.
func MatchLocale(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[idx]
}

// Lang is the value for the html lang attribute.
func (l Locale) Lang() string {
	return l.Tag.String()
}

func (l Locale) FormatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	layout := l.dateLayout
	if layout == "" {
		layout = DefaultLocale.dateLayout
	}
	return t.Format(layout)
}

// FormatHours renders hours with at most two decimals and no trailing
// zeros.
func (l Locale) FormatHours(h float64) string {
	s := strconv.FormatFloat(math.Round(h*100)/100, 'f', -1, 64)
	if l.decimalComma {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}
