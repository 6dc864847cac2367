package content

import (
	"regexp"
	"strings"

	"portfolio/api/models"
)

// Render returns the HTML for a post body. Rich-editor HTML is trusted and
// returned as stored; anything else goes through the formatter.
func (f Formatter) Render(format models.ContentFormat, body string) string {
	if format == models.ContentFormatHTML {
		return body
	}
	return f.Format(body)
}

// RenderPost fills post.HTML from its stored body.
func (f Formatter) RenderPost(post *models.BlogPost) {
	post.HTML = f.Render(post.ContentFormat, post.Content)
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a post title.
func Slugify(title string) string {
	slug := slugSeparators.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// NormalizeFormat maps an unset format to markdown.
func NormalizeFormat(format models.ContentFormat) models.ContentFormat {
	if format == "" {
		return models.ContentFormatMarkdown
	}
	return format
}
