// Package page renders the HTML document shown to browsers.
package page

import (
	_ "embed"
	"html/template"
	"io"
	"strings"

	"github.com/johndistasio/ifconfig/conninfo"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

//go:embed layout.html
var layout string

//go:embed styles.css
var styles string

const title = "Your IP address"

// DefaultLang is used when the client didn't send a usable Accept-Language header.
const DefaultLang = "en"

// Renderer writes the document for one request.
type Renderer interface {
	Render(w io.Writer, list conninfo.List, acceptLanguage string) error
}

// Options are fixed for the life of a Template.
type Options struct {
	// Stylesheet is linked from the document when set, in addition to the inlined styles.
	Stylesheet string

	// Build identifies the running build in the about section.
	Build string
}

type Template struct {
	tmpl *template.Template
	opts Options
}

type data struct {
	Lang       string
	Title      string
	Styles     template.CSS
	Stylesheet string
	Build      string
	Host       string
	Address    string
	Labels     []conninfo.Label
	Lines      []string
	JSON       string
}

func New(opts Options) (*Template, error) {
	tmpl, err := template.New("layout").Parse(layout)

	if err != nil {
		return nil, errors.Wrap(err, "parse page layout")
	}

	return &Template{tmpl: tmpl, opts: opts}, nil
}

// Render implements Renderer.
func (t *Template) Render(w io.Writer, list conninfo.List, acceptLanguage string) error {
	body, err := list.JSON()

	if err != nil {
		return errors.Wrap(err, "encode header list")
	}

	address, _ := list.Get(conninfo.KeyIPAddress)
	host, ok := list.Get("host")

	if !ok {
		host = address
	}

	d := data{
		Lang:       Lang(acceptLanguage),
		Title:      title,
		Styles:     template.CSS(styles),
		Stylesheet: t.opts.Stylesheet,
		Build:      t.opts.Build,
		Host:       host,
		Address:    address,
		Labels:     list.Labeled(),
		Lines:      strings.Split(strings.TrimSuffix(list.Lines(), "\n"), "\n"),
		JSON:       strings.TrimSuffix(string(pretty.Pretty(body)), "\n"),
	}

	return t.tmpl.Execute(w, d)
}

// Lang picks the language of the document from an Accept-Language header: the first listed tag, without weight.
func Lang(acceptLanguage string) string {
	tag := acceptLanguage

	if i := strings.IndexAny(tag, ",;"); i != -1 {
		tag = tag[:i]
	}

	tag = strings.TrimSpace(tag)

	if tag == "" || tag == "*" || len(tag) > 35 {
		return DefaultLang
	}

	for _, c := range tag {
		if !(c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return DefaultLang
		}
	}

	return tag
}
