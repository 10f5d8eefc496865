// Package demo builds the fixed demonstration audit and stores it at most once.
package demo

import (
	"encoding/json"

	"agencydesk/internal/models"
)

// Key identifies the single demo audit asset.
const Key = "demo-audit-v1"

const (
	demoURL     = "https://demo.agencydesk.example/"
	demoTitle   = "Demo audit: Riverside Dental"
	demoSummary = "Sample technical and on-page audit showing the structure of a client deliverable."
)

var demoTags = []string{"demo", "audit"}

var demoFields = models.AuditFields{
	URL:                demoURL,
	FinalURL:           demoURL,
	StatusCode:         200,
	ResponseTimeMs:     840,
	HTTPS:              true,
	Title:              "Riverside Dental | Family Dentist",
	TitleLength:        33,
	MetaDescription:    "",
	MetaDescriptionLen: 0,
	Canonical:          "",
	Robots:             "index,follow",
	Lang:               "en",
	H1Count:            2,
	H2Count:            5,
	FirstH1:            "Welcome to Riverside Dental",
	ImageCount:         14,
	ImagesMissingAlt:   6,
	InternalLinks:      23,
	ExternalLinks:      4,
	WordCount:          412,
	HasViewport:        true,
	HasOpenGraph:       false,
	HasStructuredData:  false,
	TextToHTMLRatio:    0.11,
}

type demoRecommendation struct {
	Title  string `json:"title"`
	Impact string `json:"impact"`
	Effort string `json:"effort"`
}

type demoStructuredAudit struct {
	Summary         string               `json:"summary"`
	Score           int                  `json:"score"`
	Strengths       []string             `json:"strengths"`
	Weaknesses      []string             `json:"weaknesses"`
	Issues          []models.AuditIssue  `json:"issues"`
	Recommendations []demoRecommendation `json:"recommendations"`
}

var demoAudit = demoStructuredAudit{
	Summary: "The site is served over HTTPS and is mobile ready, but on-page basics are missing " +
		"and thin content limits ranking potential for local service queries.",
	Score:      58,
	Strengths:  []string{"HTTPS enabled", "Mobile viewport configured", "Reasonable internal linking"},
	Weaknesses: []string{"No meta description", "Multiple H1 headings", "Images without alt text", "No structured data"},
	Issues: []models.AuditIssue{
		{ID: "meta-description-missing", Category: "on-page", Severity: models.SeverityHigh, Title: "Missing meta description", Detail: "Search results will show an auto-generated snippet."},
		{ID: "h1-multiple", Category: "on-page", Severity: models.SeverityMedium, Title: "Multiple H1 headings", Detail: "2 H1 elements found; use exactly one."},
		{ID: "images-missing-alt", Category: "accessibility", Severity: models.SeverityMedium, Title: "Images missing alt text", Detail: "6 of 14 images have no alt attribute."},
		{ID: "canonical-missing", Category: "technical", Severity: models.SeverityLow, Title: "No canonical URL", Detail: "Declare a canonical link to avoid duplicate indexing."},
		{ID: "structured-data-missing", Category: "technical", Severity: models.SeverityLow, Title: "No structured data", Detail: "Add LocalBusiness / Dentist schema markup."},
		{ID: "thin-content", Category: "content", Severity: models.SeverityMedium, Title: "Thin content", Detail: "412 words on the home page."},
	},
	Recommendations: []demoRecommendation{
		{Title: "Write a 150 character meta description with the primary service and city", Impact: "high", Effort: "low"},
		{Title: "Merge the two H1 headings into one descriptive heading", Impact: "medium", Effort: "low"},
		{Title: "Add LocalBusiness schema with address, hours and reviews", Impact: "medium", Effort: "medium"},
		{Title: "Expand service pages to at least 800 words each", Impact: "high", Effort: "high"},
	},
}

const demoRawScan = `GET https://demo.agencydesk.example/ -> 200 in 840ms
title: "Riverside Dental | Family Dentist" (33 chars)
meta description: missing
canonical: missing
robots: index,follow
h1: 2, h2: 5
images: 14 (6 without alt)
links: 23 internal, 4 external
words: 412
viewport: yes, open graph: no, structured data: no`

// AuditPayload returns the demo audit payload. It is fully deterministic:
// no clock, randomness or network access is involved.
func AuditPayload() models.AuditPayload {
	fields, _ := json.Marshal(demoFields)
	audit, _ := json.Marshal(demoAudit)
	return models.AuditPayload{
		URL:              demoURL,
		RawScan:          demoRawScan,
		StructuredAudit:  audit,
		StructuredFields: fields,
		Meta:             &models.AssetMeta{DemoKey: Key, Source: "demo"},
	}
}

// Asset returns the unsaved demo client asset wrapping AuditPayload.
func Asset() (*models.ClientAsset, error) {
	payload, err := models.EncodePayload(AuditPayload())
	if err != nil {
		return nil, err
	}
	key := Key
	return &models.ClientAsset{
		Type:    models.AssetAudit,
		Title:   demoTitle,
		Summary: demoSummary,
		Payload: payload,
		Tags:    append([]string(nil), demoTags...),
		DemoKey: &key,
	}, nil
}
