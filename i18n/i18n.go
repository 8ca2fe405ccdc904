// Package i18n resolves the site locale and provides its date formats and
// interface strings.
package i18n

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Message keys.
const (
	LoadMore    = "load_more"
	Loading     = "loading"
	Minutes     = "minutes"
	EditedAt    = "edited_at"
	PrevPost    = "prev_post"
	NextPost    = "next_post"
	ExitPreview = "exit_preview"
	NotFound    = "not_found"
	ServerError = "server_error"
	BackHome    = "back_home"
	HomeTitle   = "home_title"
)

// Locale formats dates and looks up interface strings for one language.
type Locale struct {
	Tag      language.Tag
	months   [12]string
	dateTime string // fmt layout: date, hour, minute
	messages map[string]string
}

var brazilianPortuguese = &Locale{
	Tag:      language.BrazilianPortuguese,
	months:   [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
	dateTime: "%s, às %02d:%02d",
	messages: map[string]string{
		LoadMore:    "Carregar mais posts",
		Loading:     "Carregando...",
		Minutes:     "min",
		EditedAt:    "* editado em %s",
		PrevPost:    "Post anterior",
		NextPost:    "Próximo post",
		ExitPreview: "Sair do modo Preview",
		NotFound:    "Página não encontrada",
		ServerError: "Algo deu errado. Tente novamente mais tarde.",
		BackHome:    "Voltar para o início",
		HomeTitle:   "Home",
	},
}

var english = &Locale{
	Tag:      language.English,
	months:   [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	dateTime: "%s, at %02d:%02d",
	messages: map[string]string{
		LoadMore:    "Load more posts",
		Loading:     "Loading...",
		Minutes:     "min",
		EditedAt:    "* edited on %s",
		PrevPost:    "Previous post",
		NextPost:    "Next post",
		ExitPreview: "Exit preview mode",
		NotFound:    "Page not found",
		ServerError: "Something went wrong. Please try again later.",
		BackHome:    "Back to home",
		HomeTitle:   "Home",
	},
}

// supported is ordered by preference; the first entry is the fallback.
var supported = []*Locale{brazilianPortuguese, english}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(supported))
	for i, l := range supported {
		tags[i] = l.Tag
	}
	return language.NewMatcher(tags)
}()

// Default returns the Brazilian Portuguese locale.
func Default() *Locale {
	return supported[0]
}

// Match returns the supported locale closest to the BCP 47 tag s. Unknown or
// malformed tags fall back to Default.
func Match(s string) *Locale {
	tag, err := language.Parse(s)
	if err != nil {
		return Default()
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default()
	}
	return supported[idx]
}

// Lang returns the BCP 47 form of the locale, for the html lang attribute.
func (l *Locale) Lang() string {
	return l.Tag.String()
}

// FormatDate renders t as "dd MMM yyyy" in UTC, e.g. "25 mar 2021".
func (l *Locale) FormatDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%02d %s %d", t.Day(), l.months[t.Month()-1], t.Year())
}

// FormatDateTime renders t as "dd MMM yyyy, às HH:mm" in UTC.
func (l *Locale) FormatDateTime(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf(l.dateTime, l.FormatDate(t), t.Hour(), t.Minute())
}

// T returns the string for key, or key itself when it is unknown.
func (l *Locale) T(key string) string {
	if s, ok := l.messages[key]; ok {
		return s
	}
	return key
}

// Tf formats the string for key with args.
func (l *Locale) Tf(key string, args ...any) string {
	return fmt.Sprintf(l.T(key), args...)
}
