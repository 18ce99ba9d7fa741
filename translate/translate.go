// Package translate localizes the messages and errors of the i8080 tools.
package translate

import (
	"io"
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FALLBACK_LOCALE is used when the host reports no locale.
const FALLBACK_LOCALE = "en-US"

var (
	printer *message.Printer
	tag     language.Tag
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("i8080: locale: %v", err)
	}

	tag = match(locales)
	printer = message.NewPrinter(tag)
}

// match returns the best supported language for the host locales.
func match(locales []string) language.Tag {
	if len(locales) == 0 {
		locales = []string{FALLBACK_LOCALE}
	}

	return message.MatchLanguage(locales...)
}

// Language returns the language messages are translated to.
func Language() language.Tag {
	return tag
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Fprintf translates an en-US Fprintf() format, and writes it to w.
func Fprintf(w io.Writer, key message.Reference, args ...any) (n int, err error) {
	return printer.Fprintf(w, key, args...)
}
