package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Asset type constants. Each maps to exactly one payload variant.
const (
	AssetAudit         = "audit"
	AssetKeywords      = "keywords"
	AssetPressRelease  = "press_release"
	AssetLeadList      = "lead_list"
	AssetContent       = "content"
	AssetExecutionPlan = "execution_plan"
	AssetReport        = "report"
)

// AssetTypes lists every accepted asset type.
var AssetTypes = []string{
	AssetAudit, AssetKeywords, AssetPressRelease, AssetLeadList,
	AssetContent, AssetExecutionPlan, AssetReport,
}

// PayloadError reports an invalid payload field.
type PayloadError struct {
	Field   string
	Message string
}

func (e *PayloadError) Error() string {
	return e.Field + ": " + e.Message
}

// AssetPayload is implemented by every typed payload variant.
type AssetPayload interface {
	AssetType() string
	Validate() error
}

// AssetMeta carries bookkeeping that is not part of the deliverable itself.
type AssetMeta struct {
	DemoKey string `json:"demoKey,omitempty"`
	Source  string `json:"source,omitempty"`
}

// AuditPayload is the payload of an "audit" asset.
type AuditPayload struct {
	URL              string          `json:"url,omitempty"`
	RawScan          string          `json:"rawScan,omitempty"`
	StructuredAudit  json.RawMessage `json:"structuredAudit,omitempty"`
	StructuredFields json.RawMessage `json:"structuredFields,omitempty"`
	Meta             *AssetMeta      `json:"meta,omitempty"`
}

func (AuditPayload) AssetType() string { return AssetAudit }

func (p AuditPayload) Validate() error {
	if len(p.StructuredFields) > 0 && !isJSONObject(p.StructuredFields) {
		return &PayloadError{Field: "payload.structuredFields", Message: "must be an object"}
	}
	if len(p.StructuredAudit) > 0 && !isJSONObject(p.StructuredAudit) {
		return &PayloadError{Field: "payload.structuredAudit", Message: "must be an object"}
	}
	return nil
}

// KeywordsPayload is the payload of a "keywords" asset.
type KeywordsPayload struct {
	Seed     string           `json:"seed,omitempty"`
	Ideas    []KeywordIdea    `json:"ideas"`
	Clusters []KeywordCluster `json:"clusters,omitempty"`
}

func (KeywordsPayload) AssetType() string { return AssetKeywords }

func (p KeywordsPayload) Validate() error {
	for i, idea := range p.Ideas {
		if strings.TrimSpace(idea.Keyword) == "" {
			return &PayloadError{Field: fmt.Sprintf("payload.ideas[%d].keyword", i), Message: "is required"}
		}
	}
	return nil
}

// PressReleasePayload is the payload of a "press_release" asset.
type PressReleasePayload struct {
	Headline    string   `json:"headline,omitempty"`
	Subheadline string   `json:"subheadline,omitempty"`
	Dateline    string   `json:"dateline,omitempty"`
	Body        []string `json:"body,omitempty"`
	Quotes      []Quote  `json:"quotes,omitempty"`
	Boilerplate string   `json:"boilerplate,omitempty"`
	Contact     string   `json:"contact,omitempty"`
}

// Quote is an attributed quotation.
type Quote struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
}

func (PressReleasePayload) AssetType() string { return AssetPressRelease }

func (p PressReleasePayload) Validate() error {
	if len(p.Body) > 0 && strings.TrimSpace(p.Headline) == "" {
		return &PayloadError{Field: "payload.headline", Message: "is required when body is present"}
	}
	return nil
}

// Lead is a scored business listing.
type Lead struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Address  string   `json:"address,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Website  string   `json:"website,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	Reviews  *int64   `json:"reviews,omitempty"`
	Score    *float64 `json:"score,omitempty"`
	Reason   *string  `json:"reason,omitempty"`
}

// LeadListPayload is the payload of a "lead_list" asset.
type LeadListPayload struct {
	Query    string `json:"query,omitempty"`
	Location string `json:"location,omitempty"`
	Leads    []Lead `json:"leads"`
}

func (LeadListPayload) AssetType() string { return AssetLeadList }

func (p LeadListPayload) Validate() error {
	for i, lead := range p.Leads {
		if strings.TrimSpace(lead.Name) == "" {
			return &PayloadError{Field: fmt.Sprintf("payload.leads[%d].name", i), Message: "is required"}
		}
	}
	return nil
}

// ContentPayload is the payload of a "content" asset, produced by a generation mode.
type ContentPayload struct {
	Mode   string          `json:"mode,omitempty"`
	Input  json.RawMessage `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`
}

func (ContentPayload) AssetType() string { return AssetContent }

func (p ContentPayload) Validate() error {
	if len(p.Output) > 0 && p.Mode == "" {
		return &PayloadError{Field: "payload.mode", Message: "is required when output is present"}
	}
	return nil
}

// PlanPhase is one phase of an execution plan.
type PlanPhase struct {
	Name      string       `json:"name"`
	Summary   string       `json:"summary"`
	Issues    []AuditIssue `json:"issues"`
	Artifacts []string     `json:"artifacts"`
}

// ExecutionPlanPayload is the payload of an "execution_plan" asset.
type ExecutionPlanPayload struct {
	URL    string      `json:"url,omitempty"`
	Phases []PlanPhase `json:"phases"`
}

func (ExecutionPlanPayload) AssetType() string { return AssetExecutionPlan }

func (p ExecutionPlanPayload) Validate() error {
	for i, phase := range p.Phases {
		if strings.TrimSpace(phase.Name) == "" {
			return &PayloadError{Field: fmt.Sprintf("payload.phases[%d].name", i), Message: "is required"}
		}
	}
	return nil
}

// ReportPayload is the payload of a "report" asset.
type ReportPayload struct {
	Format string `json:"format,omitempty"`
	Body   string `json:"body,omitempty"`
}

func (ReportPayload) AssetType() string { return AssetReport }

func (p ReportPayload) Validate() error {
	switch p.Format {
	case "", "txt", "md", "html":
		return nil
	}
	return &PayloadError{Field: "payload.format", Message: "must be one of txt, md, html"}
}

// DecodePayload decodes raw into the payload variant for assetType and validates it.
// An empty raw payload decodes to the zero value of the variant.
func DecodePayload(assetType string, raw json.RawMessage) (AssetPayload, error) {
	var payload AssetPayload
	switch assetType {
	case AssetAudit:
		payload = &AuditPayload{}
	case AssetKeywords:
		payload = &KeywordsPayload{}
	case AssetPressRelease:
		payload = &PressReleasePayload{}
	case AssetLeadList:
		payload = &LeadListPayload{}
	case AssetContent:
		payload = &ContentPayload{}
	case AssetExecutionPlan:
		payload = &ExecutionPlanPayload{}
	case AssetReport:
		payload = &ReportPayload{}
	default:
		return nil, &PayloadError{Field: "type", Message: "must be one of " + strings.Join(AssetTypes, ", ")}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if !isJSONObject(raw) {
			return nil, &PayloadError{Field: "payload", Message: "must be an object"}
		}
		if err := json.Unmarshal(raw, payload); err != nil {
			return nil, &PayloadError{Field: "payload", Message: err.Error()}
		}
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

// EncodePayload marshals a typed payload for storage.
func EncodePayload(p AssetPayload) (json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
