// Package content renders blog post bodies to HTML.
package content

import (
	"html"
	"regexp"
	"strings"
)

const (
	h1Open        = `<h1 class="text-3xl font-bold mt-10 mb-6">`
	h2Open        = `<h2 class="text-2xl font-bold mt-8 mb-4">`
	h3Open        = `<h3 class="text-xl font-semibold mt-6 mb-3">`
	preOpen       = `<pre class="bg-muted p-4 rounded-lg overflow-x-auto my-4"><code>`
	codeOpen      = `<code class="bg-muted px-2 py-1 rounded text-sm">`
	strongOpen    = `<strong class="font-semibold">`
	emOpen        = `<em class="italic">`
	anchorClass   = `text-primary hover:underline`
	ulOpen        = `<ul class="list-disc ml-6 my-4">`
	olOpen        = `<ol class="list-decimal ml-6 my-4">`
	liOpen        = `<li class="ml-4">`
	paragraphOpen = `<p class="mb-4 leading-relaxed">`
)

var (
	h3Pattern         = regexp.MustCompile(`(?m)^### (.*)$`)
	h2Pattern         = regexp.MustCompile(`(?m)^## (.*)$`)
	h1Pattern         = regexp.MustCompile(`(?m)^# (.*)$`)
	fencePattern      = regexp.MustCompile("(?s)```(.*?)```")
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	boldPattern       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern     = regexp.MustCompile(`\*(.*?)\*`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	// List runs start at the beginning of the text or right after a newline;
	// the newline is part of the match and is dropped with it.
	ulRunPattern  = regexp.MustCompile(`(?:^|\n)(- .+(?:\n- .+)*)`)
	olRunPattern  = regexp.MustCompile(`(?:^|\n)(\d+\. .+(?:\n\d+\. .+)*)`)
	ulItemPattern = regexp.MustCompile(`^- (.*)`)
	olItemPattern = regexp.MustCompile(`^\d+\. (.*)`)
)

// blockPrefixes mark paragraph chunks that already hold block markup.
var blockPrefixes = []string{"<h", "<ul", "<ol", "<pre"}

// Formatter converts the constrained markdown subset used by the plain-text
// blog editor into HTML.
//
// Input text is not escaped unless EscapeHTML is set, so markup in the source
// reaches the output untouched. Callers inject the result without further
// sanitising, which makes untrusted input an XSS vector.
type Formatter struct {
	EscapeHTML bool
}

// Format converts content with the zero Formatter.
func Format(content string) string {
	return Formatter{}.Format(content)
}

// Format applies the rewrite rules in a fixed order. Later rules never see
// the source text of earlier ones, only their output. Format is total and
// deterministic; the empty string maps to the empty string.
func (f Formatter) Format(content string) string {
	if content == "" {
		return ""
	}
	if f.EscapeHTML {
		content = html.EscapeString(content)
	}

	out := h3Pattern.ReplaceAllString(content, h3Open+"${1}</h3>")
	out = h2Pattern.ReplaceAllString(out, h2Open+"${1}</h2>")
	out = h1Pattern.ReplaceAllString(out, h1Open+"${1}</h1>")

	out = fencePattern.ReplaceAllString(out, preOpen+"${1}</code></pre>")
	out = inlineCodePattern.ReplaceAllString(out, codeOpen+"${1}</code>")

	out = boldPattern.ReplaceAllString(out, strongOpen+"${1}</strong>")
	out = italicPattern.ReplaceAllString(out, emOpen+"${1}</em>")

	out = linkPattern.ReplaceAllString(out,
		`<a href="${2}" class="`+anchorClass+`" target="_blank" rel="noopener noreferrer">${1}</a>`)

	out = ulRunPattern.ReplaceAllStringFunc(out, func(run string) string {
		return wrapList(run, ulOpen, "</ul>", ulItemPattern)
	})
	out = olRunPattern.ReplaceAllStringFunc(out, func(run string) string {
		return wrapList(run, olOpen, "</ol>", olItemPattern)
	})

	return paragraphs(out)
}

func wrapList(run, openTag, closeTag string, item *regexp.Regexp) string {
	var sb strings.Builder
	sb.WriteString(openTag)
	for _, line := range strings.Split(strings.TrimSpace(run), "\n") {
		sb.WriteString(item.ReplaceAllString(line, liOpen+"${1}</li>"))
	}
	sb.WriteString(closeTag)
	return sb.String()
}

func paragraphs(text string) string {
	var sb strings.Builder
	for _, chunk := range strings.Split(text, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if hasBlockPrefix(chunk) {
			sb.WriteString(chunk)
			continue
		}
		sb.WriteString(paragraphOpen)
		sb.WriteString(chunk)
		sb.WriteString("</p>")
	}
	return sb.String()
}

func hasBlockPrefix(chunk string) bool {
	for _, prefix := range blockPrefixes {
		if strings.HasPrefix(chunk, prefix) {
			return true
		}
	}
	return false
}
