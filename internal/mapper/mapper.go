package mapper

import (
	"time"

	"github.com/alberto-moreno-sa/notion-blog/internal/model"
	"github.com/alberto-moreno-sa/notion-blog/internal/notion"
)

// Properties names the database properties a post is read from.
type Properties struct {
	Title     string
	Slug      string
	Published string
}

// DefaultProperties matches the column names of the blog database template.
var DefaultProperties = Properties{
	Title:     "Name",
	Slug:      "Slug",
	Published: "Published",
}

// MapBlock converts one child block into a content item. Blocks of any other
// type, including partial blocks without a type, report false.
func MapBlock(b notion.Block) (model.Content, bool) {
	switch model.ContentType(b.Type) {
	case model.Paragraph:
		return textContent(model.Paragraph, b.Paragraph), true
	case model.Heading2:
		return textContent(model.Heading2, b.Heading2), true
	case model.Heading3:
		return textContent(model.Heading3, b.Heading3), true
	case model.Quote:
		return textContent(model.Quote, b.Quote), true
	case model.Code:
		c := model.Content{Type: model.Code}
		if b.Code != nil {
			c.Text = firstPlainText(b.Code.RichText)
			if b.Code.Language != nil && *b.Code.Language != "" {
				c.Language = model.String(*b.Code.Language)
			}
		}
		return c, true
	}
	return model.Content{}, false
}

func textContent(t model.ContentType, tb *notion.TextBlock) model.Content {
	c := model.Content{Type: t}
	if tb != nil {
		c.Text = firstPlainText(tb.RichText)
	}
	return c
}

// ToPost projects a database page into a metadata-only post. Fields whose
// property is missing or of an unexpected type are left nil; a partial page
// still yields a post carrying its id.
func ToPost(page notion.Page, props Properties) model.Post {
	post := model.NewPost(page.ID)
	if page.Properties == nil {
		return post
	}

	post.CreatedTime = parseTimestamp(page.CreatedTime)
	post.LastEditedTime = parseTimestamp(page.LastEditedTime)

	if p, ok := page.Properties[props.Title]; ok && p.Type == "title" {
		post.Title = firstPlainText(p.Title)
	}
	if p, ok := page.Properties[props.Slug]; ok && p.Type == "rich_text" {
		post.Slug = firstPlainText(p.RichText)
	}

	return post
}

// firstPlainText returns the plain text of the first run only.
func firstPlainText(runs []notion.RichText) *string {
	if len(runs) == 0 {
		return nil
	}
	return model.String(runs[0].PlainText)
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
