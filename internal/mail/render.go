// Package mail sends templated notification emails and keeps a delivery log.
package mail

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	nethtml "golang.org/x/net/html"
)

var ErrTemplateSyntax = errors.New("template syntax error")

var placeholderName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Render substitutes {{ name }} placeholders with values from data. Names
// missing from data render as the empty string.
func Render(tmpl string, data map[string]any) (string, error) {
	return render(tmpl, data, false)
}

// RenderHTML is Render with HTML escaping of substituted values.
func RenderHTML(tmpl string, data map[string]any) (string, error) {
	return render(tmpl, data, true)
}

func render(tmpl string, data map[string]any, escape bool) (string, error) {
	var sb strings.Builder
	rest := tmpl
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		sb.WriteString(rest[:open])
		rest = rest[open+2:]

		end := strings.Index(rest, "}}")
		if end < 0 {
			return "", fmt.Errorf("%w: unclosed {{", ErrTemplateSyntax)
		}
		name := strings.TrimSpace(rest[:end])
		if !placeholderName.MatchString(name) {
			return "", fmt.Errorf("%w: invalid placeholder %q", ErrTemplateSyntax, name)
		}
		rest = rest[end+2:]

		v, ok := data[name]
		if !ok || v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if escape {
			s = html.EscapeString(s)
		}
		sb.WriteString(s)
	}
}

// StripTags returns the text content of an HTML fragment. Script and style
// bodies are dropped.
func StripTags(src string) string {
	z := nethtml.NewTokenizer(strings.NewReader(src))
	var sb strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return strings.TrimSpace(sb.String())
		case nethtml.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case nethtml.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		case nethtml.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func isRawText(tag []byte) bool {
	s := string(tag)
	return s == "script" || s == "style"
}
