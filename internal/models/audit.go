package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit is a persisted deep-audit result.
type Audit struct {
	ID               uuid.UUID       `json:"id"`
	ClientID         *uuid.UUID      `json:"clientId"`
	URL              string          `json:"url"`
	Score            *int            `json:"score"`
	RawScan          string          `json:"rawScan"`
	StructuredAudit  json.RawMessage `json:"structuredAudit"`
	StructuredFields json.RawMessage `json:"structuredFields"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// AuditIssue is one finding produced by the audit scorer.
type AuditIssue struct {
	ID       string `json:"id"`
	Category string `json:"category"` // technical, content, on_page
	Severity string `json:"severity"` // high, medium, low
	Title    string `json:"title"`
	Detail   string `json:"detail"`
}

// Severity constants
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// AuditFields are the measured on-page fields of a scanned URL.
type AuditFields struct {
	URL                string  `json:"url"`
	FinalURL           string  `json:"finalUrl"`
	StatusCode         int     `json:"statusCode"`
	ResponseTimeMs     int64   `json:"responseTimeMs"`
	HTTPS              bool    `json:"https"`
	Title              string  `json:"title"`
	TitleLength        int     `json:"titleLength"`
	MetaDescription    string  `json:"metaDescription"`
	MetaDescriptionLen int     `json:"metaDescriptionLength"`
	Canonical          string  `json:"canonical"`
	Robots             string  `json:"robots"`
	Lang               string  `json:"lang"`
	H1Count            int     `json:"h1Count"`
	H2Count            int     `json:"h2Count"`
	FirstH1            string  `json:"firstH1"`
	ImageCount         int     `json:"imageCount"`
	ImagesMissingAlt   int     `json:"imagesMissingAlt"`
	InternalLinks      int     `json:"internalLinks"`
	ExternalLinks      int     `json:"externalLinks"`
	WordCount          int     `json:"wordCount"`
	HasViewport        bool    `json:"hasViewport"`
	HasOpenGraph       bool    `json:"hasOpenGraph"`
	HasStructuredData  bool    `json:"hasStructuredData"`
	TextToHTMLRatio    float64 `json:"textToHtmlRatio"`
}
