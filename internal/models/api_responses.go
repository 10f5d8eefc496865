package models

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// HealthResponse reports which provider credentials are configured.
type HealthResponse struct {
	Status      string          `json:"status"`
	Credentials map[string]bool `json:"credentials"`
	Missing     []string        `json:"missing,omitempty"`
}

// KeywordIdeasResponse is returned by the keyword ideas endpoint.
type KeywordIdeasResponse struct {
	Seed      string        `json:"seed"`
	Keywords  []KeywordIdea `json:"keywords"`
	Annotated bool          `json:"annotated"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// KeywordMetricsResponse is returned by the keyword metrics endpoint.
type KeywordMetricsResponse struct {
	Metrics []KeywordMetrics `json:"metrics"`
}

// KeywordClusterResponse is returned by the keyword cluster endpoint.
type KeywordClusterResponse struct {
	Clusters []KeywordCluster `json:"clusters"`
	Labeled  bool             `json:"labeled"`
	Warnings []string         `json:"warnings,omitempty"`
}

// KeywordSuiteResponse bundles ideas, metrics and clusters for one seed.
type KeywordSuiteResponse struct {
	Seed     string           `json:"seed"`
	Keywords []KeywordIdea    `json:"keywords"`
	Metrics  []KeywordMetrics `json:"metrics"`
	Clusters []KeywordCluster `json:"clusters"`
	Warnings []string         `json:"warnings,omitempty"`
}

// LeadsResponse is returned by the lead endpoints.
type LeadsResponse struct {
	Leads    []Lead   `json:"leads"`
	Scored   bool     `json:"scored"`
	Warnings []string `json:"warnings,omitempty"`
}

// DeepAuditResponse is returned by the deep audit endpoint.
type DeepAuditResponse struct {
	AuditID          *string        `json:"auditId,omitempty"`
	URL              string         `json:"url"`
	Score            int            `json:"score"`
	Issues           []AuditIssue   `json:"issues"`
	StructuredFields AuditFields    `json:"structuredFields"`
	StructuredAudit  map[string]any `json:"structuredAudit,omitempty"`
	RawScan          string         `json:"rawScan"`
	Warnings         []string       `json:"warnings,omitempty"`
}
