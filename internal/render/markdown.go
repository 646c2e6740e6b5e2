package render

import (
	"strings"
	"unicode"

	"github.com/alberto-moreno-sa/notion-blog/internal/model"
)

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
	"~", `\~`,
	"&", `\&`,
)

// Markdown renders contents as CommonMark. Text is treated as plain text and
// escaped. Text-bearing blocks without text are skipped; a code block always
// produces a fence.
func Markdown(contents []model.Content) string {
	var b strings.Builder
	for _, c := range contents {
		var block string
		switch c.Type {
		case model.Heading2:
			block = prefixed("## ", c.Text)
		case model.Heading3:
			block = prefixed("### ", c.Text)
		case model.Paragraph:
			block = prefixed("", c.Text)
		case model.Quote:
			block = quote(c.Text)
		case model.Code:
			block = fence(c.Text, c.Language)
		}
		if block == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block)
		b.WriteString("\n")
	}
	return b.String()
}

func prefixed(prefix string, text *string) string {
	if text == nil || strings.TrimSpace(*text) == "" {
		return ""
	}
	if prefix != "" {
		// Headings are single line.
		return prefix + escapeLine(strings.Join(strings.Fields(*text), " "))
	}
	return escapeLines(*text)
}

func quote(text *string) string {
	if text == nil || strings.TrimSpace(*text) == "" {
		return ""
	}
	lines := strings.Split(escapeLines(*text), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

func fence(text, language *string) string {
	body := ""
	if text != nil {
		body = strings.TrimRight(*text, "\n")
	}

	marker := "```"
	for strings.Contains(body, marker) {
		marker += "`"
	}

	info := ""
	if language != nil {
		info = strings.Join(strings.Fields(*language), "-")
	}
	if body == "" {
		return marker + info + "\n" + marker
	}
	return marker + info + "\n" + body + "\n" + marker
}

func escapeLines(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = escapeLine(l)
	}
	return strings.Join(lines, "\n")
}

// escapeLine escapes inline markup plus the line-start markers that would
// turn plain text into a list, heading or rule. Leading indentation is
// dropped so it cannot start a code block.
func escapeLine(l string) string {
	l = inlineEscaper.Replace(strings.TrimLeft(l, " \t"))
	if l == "" {
		return l
	}

	switch l[0] {
	case '-', '+', '=':
		return `\` + l
	}

	digits := 0
	for digits < len(l) && unicode.IsDigit(rune(l[digits])) {
		digits++
	}
	if digits > 0 && digits < len(l) && (l[digits] == '.' || l[digits] == ')') {
		return l[:digits] + `\` + l[digits:]
	}
	return l
}
