// Package views renders the public page. Templates and static assets are
// embedded into the binary so the server has no runtime file dependencies.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-ministry-site/internal/domain"
	"github.com/tbourn/go-ministry-site/internal/services"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded asset tree rooted at "static".
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The directory is embedded at build time; Sub only fails on a bad path.
		panic(err)
	}
	return sub
}

// Renderer executes the page templates.
type Renderer struct {
	tmpl *template.Template
	// LikeURL is the form action used by the like buttons.
	LikeURL string
	// Now is the clock used for the footer year; nil means time.Now.
	Now func() time.Time
}

// New parses the embedded templates.
func New(likeURL string) (*Renderer, error) {
	tmpl, err := template.New("views").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if likeURL == "" {
		likeURL = "/add-like/"
	}
	return &Renderer{tmpl: tmpl, LikeURL: likeURL}, nil
}

type homeData struct {
	*services.HomePage
	LikeURL string
	Year    int
}

// RenderHome writes the public page for page.
func (r *Renderer) RenderHome(w io.Writer, page *services.HomePage) error {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return r.tmpl.ExecuteTemplate(w, "home.html.tmpl", homeData{
		HomePage: page,
		LikeURL:  r.LikeURL,
		Year:     now().Year(),
	})
}

// Funcs returns the template helpers.
func Funcs() template.FuncMap {
	titler := cases.Title(language.English)
	return template.FuncMap{
		"title":    func(s string) string { return titler.String(s) },
		"longDate": longDate,
		"deref":    deref,
		"waLink":   waLink,
		"lines":    lines,
	}
}

func longDate(d domain.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("January 2, 2006")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// waLink builds a click-to-chat URL from a phone number in any notation.
func waLink(number string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits
}

func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
