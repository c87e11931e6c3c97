package screenshot

import (
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/valyala/fasttemplate"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const card = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="1200" height="630" viewBox="0 0 1200 630">
  <defs>
    <radialGradient id="bg" cx="25%" cy="25%" r="75%">
      <stop offset="0%" stop-color="#e5e7eb"/>
      <stop offset="50%" stop-color="#f3f4f6"/>
    </radialGradient>
  </defs>
  <rect width="1200" height="630" fill="url(#bg)"/>
  <rect x="540" y="135" width="120" height="120" rx="20" fill="#ffffff"/>
  <image x="560" y="155" width="80" height="80" xlink:href="https://www.google.com/s2/favicons?domain={{favicon}}&amp;sz=128"/>
  <text x="600" y="340" text-anchor="middle" font-family="sans-serif" font-size="48" font-weight="bold" fill="#1f2937">{{name}}</text>
  <text x="600" y="400" text-anchor="middle" font-family="sans-serif" font-size="24" fill="#6b7280">{{domain}}</text>
</svg>
`

var preview = fasttemplate.New(card, "{{", "}}")

// A Site is the identity of a web site displayed on a preview card.
type Site struct {
	Domain string
	Name   string
}

// SiteOf extracts the site identity of the given URL.
func SiteOf(target string) Site {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return Site{Domain: "Site web", Name: "Site"}
	}

	domain := strings.Replace(u.Hostname(), "www.", "", 1)
	name, _, _ := strings.Cut(domain, ".")
	name = cases.Title(language.Und, cases.NoLower).String(name)

	return Site{Domain: domain, Name: name}
}

// RenderPreview writes the SVG preview card of the given URL.
func RenderPreview(w io.Writer, target string) error {
	site := SiteOf(target)

	_, err := preview.ExecuteFunc(w, func(w io.Writer, tag string) (int, error) {
		switch tag {
		case "domain":
			return io.WriteString(w, html.EscapeString(site.Domain))
		case "favicon":
			return io.WriteString(w, html.EscapeString(url.QueryEscape(site.Domain)))
		case "name":
			return io.WriteString(w, html.EscapeString(site.Name))
		}
		return 0, nil
	})
	return err
}
