package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alberto-moreno-sa/notion-blog/internal/model"
)

//go:embed templates/*.html
var embedded embed.FS

const (
	layoutFile = "layout.html"

	// TimeLayout is how post timestamps are displayed.
	TimeLayout = "2006-01-02 15:04:05"
)

var pageFiles = []string{"index.html", "post.html", "404.html"}

// PostView is a post prepared for the templates.
type PostView struct {
	ID         string
	Title      string
	URL        string
	Created    string
	LastEdited string
	Body       template.HTML
}

// PageData is passed to every page template.
type PageData struct {
	SiteTitle string
	PageTitle string
	Posts     []PostView
	Post      *PostView
}

// Renderer turns posts into HTML pages.
type Renderer struct {
	siteTitle string
	md        goldmark.Markdown
	pages     map[string]*template.Template
}

// New creates a Renderer using the built-in templates, or the templates in
// templatesDir when it is not empty. A templates directory must provide
// layout.html, index.html, post.html and 404.html.
func New(siteTitle, templatesDir string) (*Renderer, error) {
	var fsys fs.FS
	if templatesDir != "" {
		fsys = os.DirFS(templatesDir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		tmpl, err := template.ParseFS(fsys, layoutFile, name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{
		siteTitle: siteTitle,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
			),
		),
		pages: pages,
	}, nil
}

// RenderListing writes the listing page.
func (r *Renderer) RenderListing(w io.Writer, posts []model.Post) error {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		v, err := r.view(p)
		if err != nil {
			return err
		}
		views = append(views, v)
	}
	return r.execute(w, "index.html", PageData{SiteTitle: r.siteTitle, Posts: views})
}

// RenderPost writes the page of a single post.
func (r *Renderer) RenderPost(w io.Writer, post model.Post) error {
	v, err := r.view(post)
	if err != nil {
		return err
	}
	return r.execute(w, "post.html", PageData{SiteTitle: r.siteTitle, PageTitle: v.Title, Post: &v})
}

// RenderNotFound writes the not-found page.
func (r *Renderer) RenderNotFound(w io.Writer) error {
	return r.execute(w, "404.html", PageData{SiteTitle: r.siteTitle, PageTitle: "Not found"})
}

// ContentHTML converts contents to HTML.
func (r *Renderer) ContentHTML(contents []model.Content) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(Markdown(contents)), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) execute(w io.Writer, name string, data PageData) error {
	var buf bytes.Buffer
	if err := r.pages[name].ExecuteTemplate(&buf, layoutFile, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) view(p model.Post) (PostView, error) {
	body, err := r.ContentHTML(p.Contents)
	if err != nil {
		return PostView{}, fmt.Errorf("render %s: %w", p.ID, err)
	}
	return PostView{
		ID:         p.ID,
		Title:      DisplayTitle(p),
		URL:        PostURL(p.SlugOrEmpty()),
		Created:    FormatTime(p.CreatedTime),
		LastEdited: FormatTime(p.LastEditedTime),
		Body:       body,
	}, nil
}

// PostURL returns the route of a post, or "" when it has no slug.
func PostURL(slug string) string {
	if slug == "" {
		return ""
	}
	return "/post/" + url.PathEscape(slug)
}

// FormatTime formats a timestamp in UTC for display; absent timestamps show "-".
func FormatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(TimeLayout)
}

// DisplayTitle is the post title, falling back to the slug in title case.
func DisplayTitle(p model.Post) string {
	if t := strings.TrimSpace(p.TitleOrEmpty()); t != "" {
		return t
	}
	if s := p.SlugOrEmpty(); s != "" {
		words := strings.ReplaceAll(strings.ReplaceAll(s, "-", " "), "_", " ")
		return cases.Title(language.English).String(words)
	}
	return "Untitled"
}
