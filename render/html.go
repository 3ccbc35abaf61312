package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/flanksource/changelog/models"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

const stylesheet = `body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Helvetica,Arial,sans-serif;line-height:1.6;color:#1f2328;background:#fff;margin:0}
main{max-width:880px;margin:0 auto;padding:32px 24px}
h1{border-bottom:1px solid #d0d7de;padding-bottom:.3em}
h2{margin-top:1.5em;border-bottom:1px solid #eaeef2;padding-bottom:.2em}
code{font-family:ui-monospace,SFMono-Regular,Menlo,monospace;background:#f6f8fa;border-radius:4px;padding:.1em .3em;font-size:90%}
a{color:#0969da;text-decoration:none}
a:hover{text-decoration:underline}
ul ul{color:#57606a;font-size:95%}
hr{border:0;border-top:1px solid #d0d7de}`

// HTML converts a Markdown body into a self-contained page.
func HTML(meta models.Metadata, body string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	title := "Changelog"
	if meta.Repository != "" {
		title += " - " + meta.Repository
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
%s
</style>
</head>
<body>
<main class="changelog">
%s</main>
</body>
</html>
`, html.EscapeString(title), stylesheet, buf.String()), nil
}
