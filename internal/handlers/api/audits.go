package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agencydesk/internal/audit"
	"agencydesk/internal/config"
	"agencydesk/internal/models"
	"agencydesk/internal/providers/llm"
	"agencydesk/internal/validation"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditHandler handles stored audits and live deep audits via JSON API.
type AuditHandler struct {
	store   AuditStore
	auditor *audit.Auditor
	router  *llm.Router
	cfg     *config.Config
	logger  *zap.Logger
}

// NewAuditHandler creates a new API audit handler.
func NewAuditHandler(store AuditStore, auditor *audit.Auditor, router *llm.Router, cfg *config.Config, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{store: store, auditor: auditor, router: router, cfg: cfg, logger: logger}
}

// List returns stored audits newest first, optionally for one client.
func (h *AuditHandler) List(c fiber.Ctx) error {
	clientID, ok := validation.ParseOptionalUUID(c.Query("clientId"))
	if !ok {
		return writeError(c, h.logger, validation.FieldErrors{"clientId": "must be a UUID"}, "invalid filter")
	}

	audits, err := h.store.ListAudits(c.Context(), clientID, validation.ClampLimit(queryInt(c, "limit"), defaultAuditLimit, maxAuditLimit))
	if err != nil {
		return writeError(c, h.logger, err, "failed to fetch audits")
	}
	return c.JSON(audits)
}

// Create persists an audit computed elsewhere.
func (h *AuditHandler) Create(c fiber.Ctx) error {
	var body struct {
		ClientID         *string         `json:"clientId"`
		URL              string          `json:"url"`
		Score            *int            `json:"score"`
		RawScan          string          `json:"rawScan"`
		StructuredAudit  json.RawMessage `json:"structuredAudit"`
		StructuredFields json.RawMessage `json:"structuredFields"`
	}
	if err := bind(c, &body); err != nil {
		return writeError(c, h.logger, err, "invalid request body")
	}

	errs := validation.FieldErrors{}
	clientID := parseClientID(body.ClientID, errs)

	body.URL = validation.NormalizeURL(body.URL)
	if ok, msg := validation.ValidateURL(body.URL); !ok {
		errs.Add("url", msg)
	}
	if body.Score != nil && (*body.Score < 0 || *body.Score > 100) {
		errs.Add("score", "must be between 0 and 100")
	}
	if !optionalObject(body.StructuredAudit) {
		errs.Add("structuredAudit", "must be an object")
	}
	if !optionalObject(body.StructuredFields) {
		errs.Add("structuredFields", "must be an object")
	}
	if err := errs.Err(); err != nil {
		return writeError(c, h.logger, err, "invalid audit")
	}

	a := &models.Audit{
		ClientID:         clientID,
		URL:              body.URL,
		Score:            body.Score,
		RawScan:          body.RawScan,
		StructuredAudit:  nullIfEmpty(body.StructuredAudit),
		StructuredFields: nullIfEmpty(body.StructuredFields),
	}
	if err := h.store.CreateAudit(c.Context(), a); err != nil {
		return writeError(c, h.logger, err, "failed to save audit")
	}
	return c.JSON(a)
}

// DeepAudit fetches and scores a live page, optionally saving the result.
func (h *AuditHandler) DeepAudit(c fiber.Ctx) error {
	var body struct {
		URL      string  `json:"url"`
		ClientID *string `json:"clientId"`
		Save     bool    `json:"save"`
		Provider string  `json:"provider"`
	}
	if err := bind(c, &body); err != nil {
		return writeError(c, h.logger, err, "invalid request body")
	}

	errs := validation.FieldErrors{}
	clientID := parseClientID(body.ClientID, errs)
	body.URL = validation.NormalizeURL(body.URL)
	if ok, msg := validation.ValidateURL(body.URL); !ok {
		errs.Add("url", msg)
	}
	if err := errs.Err(); err != nil {
		return writeError(c, h.logger, err, "invalid audit request")
	}

	res, err := h.auditor.Run(c.Context(), body.URL, body.Provider)
	if err != nil {
		return writeError(c, h.logger, err, "failed to audit page")
	}

	resp := models.DeepAuditResponse{
		URL:              res.URL,
		Score:            res.Score,
		Issues:           res.Issues,
		StructuredFields: res.Fields,
		StructuredAudit:  res.StructuredAudit,
		RawScan:          res.RawScan,
		Warnings:         res.Warnings,
	}

	if body.Save {
		saved, err := h.save(c, clientID, res)
		if err != nil {
			return writeError(c, h.logger, err, "failed to save audit")
		}
		id := saved.String()
		resp.AuditID = &id
	}

	return c.JSON(resp)
}

func (h *AuditHandler) save(c fiber.Ctx, clientID *uuid.UUID, res *audit.Result) (uuid.UUID, error) {
	fields, err := json.Marshal(res.Fields)
	if err != nil {
		return uuid.Nil, err
	}
	var structured json.RawMessage
	if res.StructuredAudit != nil {
		if structured, err = json.Marshal(res.StructuredAudit); err != nil {
			return uuid.Nil, err
		}
	}

	score := res.Score
	a := &models.Audit{
		ClientID:         clientID,
		URL:              res.URL,
		Score:            &score,
		RawScan:          res.RawScan,
		StructuredAudit:  structured,
		StructuredFields: fields,
	}
	if err := h.store.CreateAudit(c.Context(), a); err != nil {
		return uuid.Nil, err
	}
	return a.ID, nil
}

// Status reports which providers the deep audit can use.
func (h *AuditHandler) Status(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"credentials":     h.cfg.Credentials(),
		"textProviders":   nonNil(h.router.Names()),
		"structuredAudit": h.router.Configured(),
	})
}

func parseClientID(raw *string, errs validation.FieldErrors) *uuid.UUID {
	if raw == nil {
		return nil
	}
	id, ok := validation.ParseOptionalUUID(*raw)
	if !ok {
		errs.Add("clientId", "must be a UUID")
	}
	return id
}

func optionalObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || raw[0] == '{'
}

func nullIfEmpty(raw json.RawMessage) json.RawMessage {
	if strings.TrimSpace(string(raw)) == "null" {
		return nil
	}
	return raw
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
