package utils

import (
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var bodyPolicy = bluemonday.UGCPolicy()

func init() {
	bodyPolicy.AllowImages()
	// Editors paste images as base64 data URIs; they are externalized to
	// object storage after sanitization, so they must survive it.
	bodyPolicy.AllowDataURIImages()
	bodyPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	bodyPolicy.RequireNoReferrerOnLinks(true)
}

// SanitizeBody strips everything from a rich-text post body that the editor
// could not legitimately have produced. Runs before persisting.
func SanitizeBody(html string) string {
	return bodyPolicy.Sanitize(html)
}

// EnhanceHTMLContent adds safety and loading attributes to images in a post
// body before it is rendered.
func EnhanceHTMLContent(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("rel", "noopener")
		s.SetAttr("loading", "lazy")
	})

	// goquery renders full document tags if missing, we just want the body content
	html, _ := doc.Find("body").Html()
	if html == "" {
		html, _ = doc.Html()
	}

	return template.HTML(html)
}
