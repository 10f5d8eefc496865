package audit

import (
	"bytes"
	"math"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"agencydesk/internal/models"
)

// Scan measures the on-page fields of page and returns them with the main text.
func Scan(page *Page) (models.AuditFields, string, error) {
	fields := models.AuditFields{
		URL:            page.URL,
		FinalURL:       page.FinalURL,
		StatusCode:     page.StatusCode,
		ResponseTimeMs: page.ResponseTime.Milliseconds(),
	}

	base, err := url.Parse(page.FinalURL)
	if err != nil {
		return fields, "", err
	}
	fields.HTTPS = strings.EqualFold(base.Scheme, "https")

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return fields, "", err
	}

	fields.Title = collapse(doc.Find("title").First().Text())
	fields.TitleLength = len([]rune(fields.Title))
	fields.Lang = strings.TrimSpace(doc.Find("html").AttrOr("lang", ""))

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(s.AttrOr("name", ""))
		content := strings.TrimSpace(s.AttrOr("content", ""))
		switch name {
		case "description":
			if fields.MetaDescription == "" {
				fields.MetaDescription = content
			}
		case "robots":
			if fields.Robots == "" {
				fields.Robots = strings.ToLower(content)
			}
		case "viewport":
			fields.HasViewport = true
		}
		if strings.HasPrefix(strings.ToLower(s.AttrOr("property", "")), "og:") {
			fields.HasOpenGraph = true
		}
	})
	fields.MetaDescriptionLen = len([]rune(fields.MetaDescription))

	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, rel := range strings.Fields(strings.ToLower(s.AttrOr("rel", ""))) {
			if rel == "canonical" {
				fields.Canonical = resolve(base, s.AttrOr("href", ""))
				return false
			}
		}
		return true
	})

	h1 := doc.Find("h1")
	fields.H1Count = h1.Length()
	if fields.H1Count > 0 {
		fields.FirstH1 = collapse(h1.First().Text())
	}
	fields.H2Count = doc.Find("h2").Length()

	images := doc.Find("img")
	fields.ImageCount = images.Length()
	images.Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("alt"); !ok {
			fields.ImagesMissingAlt++
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		switch linkKind(base, s.AttrOr("href", "")) {
		case linkInternal:
			fields.InternalLinks++
		case linkExternal:
			fields.ExternalLinks++
		}
	})

	fields.HasStructuredData = doc.Find(`script[type="application/ld+json"], [itemscope]`).Length() > 0

	doc.Find("script, style, noscript").Remove()
	bodyText := collapse(doc.Find("body").Text())

	text := bodyText
	if article, err := readability.FromReader(bytes.NewReader(page.Body), base); err == nil {
		if main := collapse(article.TextContent); len(strings.Fields(main)) > 0 {
			text = main
		}
	}
	fields.WordCount = len(strings.Fields(text))

	if len(page.Body) > 0 {
		fields.TextToHTMLRatio = roundTo(float64(len(bodyText))/float64(len(page.Body)), 3)
	}

	return fields, text, nil
}

type linkType int

const (
	linkSkip linkType = iota
	linkInternal
	linkExternal
)

func linkKind(base *url.URL, href string) linkType {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return linkSkip
	}
	u, err := base.Parse(href)
	if err != nil {
		return linkSkip
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return linkSkip
	}
	if sameSite(u.Hostname(), base.Hostname()) {
		return linkInternal
	}
	return linkExternal
}

func sameSite(a, b string) bool {
	return strings.TrimPrefix(strings.ToLower(a), "www.") == strings.TrimPrefix(strings.ToLower(b), "www.")
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := base.Parse(href)
	if err != nil {
		return href
	}
	return u.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
