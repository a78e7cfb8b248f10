package clemail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"
	htmlmin "github.com/tdewolff/minify/v2/html"
	"github.com/wasiahamad/Portfolio/internal/models/clcolors"
	"github.com/wasiahamad/Portfolio/internal/models/clmarkdown"
)

//go:embed templates/*.html
var templatesFS embed.FS

const submittedLayout = "Monday, January 2, 2006 at 15:04:05 MST"

type renderer struct {
	tpl      *template.Template
	minifier *minify.M
	theme    clcolors.Theme
	siteName string
	siteURL  string
}

type emailData struct {
	Subject     string
	Title       string
	Theme       clcolors.Theme
	Contact     Contact
	Body        template.HTML
	SubmittedAt string
	Signature   string
	SiteName    string
	SiteURL     string
	Year        int
}

func newRenderer(brandColor, siteName, siteURL string) (*renderer, error) {
	tpl, err := template.New("email").
		Funcs(template.FuncMap{
			"css": func(s string) template.CSS { return template.CSS(s) },
		}).
		ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates email: %w", err)
	}

	m := minify.New()
	m.Add("text/html", &htmlmin.Minifier{KeepDocumentTags: true, KeepEndTags: true})

	return &renderer{
		tpl:      tpl,
		minifier: m,
		theme:    clcolors.NewTheme(brandColor),
		siteName: siteName,
		siteURL:  siteURL,
	}, nil
}

func (r *renderer) render(name string, data emailData) (string, error) {
	data.Theme = r.theme
	data.SiteName = r.siteName
	data.SiteURL = r.siteURL
	data.Year = time.Now().Year()

	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendu %s: %w", name, err)
	}

	out, err := r.minifier.String("text/html", buf.String())
	if err != nil {
		return buf.String(), nil
	}
	return out, nil
}

func contactNotificationText(c Contact, submitted string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New contact form submission\n\n")
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n", c.Name, c.Email)
	if c.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", c.Phone)
	}
	fmt.Fprintf(&b, "Submitted: %s\n\nMessage:\n%s\n", submitted, c.Message)
	return b.String()
}

func autoReplyText(c Contact, signature string) string {
	return fmt.Sprintf("Hi %s,\n\nThank you for reaching out! I've received your message and I'll get back to you as soon as possible, usually within 24-48 hours.\n\nYour message:\n\"%s\"\n\nBest regards,\n%s\n",
		c.Name, c.Message, signature)
}

func adminReplyText(name, body, signature string) string {
	return fmt.Sprintf("Hi %s,\n\n%s\n\nBest regards,\n%s\n", name, clmarkdown.PlainText(body), signature)
}
