package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"agencydesk/internal/audit"
	"agencydesk/internal/db"
	"agencydesk/internal/generate"
	"agencydesk/internal/models"
	"agencydesk/internal/providers/dataforseo"
	"agencydesk/internal/providers/llm"
	"agencydesk/internal/validation"
)

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{Error: message})
}

// jsonErrorDetails is jsonError with a details payload.
func jsonErrorDetails(c fiber.Ctx, status int, message string, details any) error {
	return c.Status(status).JSON(models.ErrorResponse{Error: message, Details: details})
}

// bind decodes the JSON request body into v. An empty body decodes as {}.
func bind(c fiber.Ctx, v any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return validation.FieldErrors{"body": "must be a valid JSON object"}
	}
	return nil
}

// queryInt parses an integer query parameter; missing or malformed values yield 0.
func queryInt(c fiber.Ctx, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}

// writeError maps err to a status and error envelope. Errors without a known
// mapping are logged and answered with 500 and fallback; their text is not echoed.
func writeError(c fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	var (
		fieldErrs    validation.FieldErrors
		payloadErr   *models.PayloadError
		parseFailure *llm.ParseFailure
		apiErr       *dataforseo.APIError
	)

	switch {
	case errors.As(err, &fieldErrs):
		return jsonErrorDetails(c, fiber.StatusBadRequest, "validation failed", fieldErrs)
	case errors.As(err, &payloadErr):
		return jsonErrorDetails(c, fiber.StatusBadRequest, "validation failed",
			map[string]string{payloadErr.Field: payloadErr.Message})
	case errors.Is(err, db.ErrUnknownClient):
		return jsonErrorDetails(c, fiber.StatusBadRequest, "validation failed",
			map[string]string{"clientId": "does not exist"})
	case errors.Is(err, llm.ErrUnknownProvider):
		return jsonErrorDetails(c, fiber.StatusBadRequest, "validation failed",
			map[string]string{"provider": "is not configured"})
	case errors.Is(err, audit.ErrBlockedAddress):
		return jsonErrorDetails(c, fiber.StatusBadRequest, "validation failed",
			map[string]string{"url": "points to a private or reserved address"})

	case errors.Is(err, db.ErrClientNotFound),
		errors.Is(err, db.ErrAuditNotFound),
		errors.Is(err, db.ErrAssetNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, llm.ErrNotConfigured):
		return jsonError(c, fiber.StatusServiceUnavailable, "no text generation provider is configured")
	case errors.Is(err, dataforseo.ErrNotConfigured):
		return jsonError(c, fiber.StatusServiceUnavailable, "keyword data provider credentials are not configured")

	case errors.As(err, &parseFailure):
		return jsonErrorDetails(c, fiber.StatusInternalServerError, "generated response was not valid JSON",
			fiber.Map{"raw": parseFailure.Raw})
	case errors.Is(err, generate.ErrInvalidShape):
		logger.Warn("generated response rejected", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "generated response was incomplete")
	case errors.As(err, &apiErr):
		logger.Error("keyword data provider error", zap.Int("status", apiErr.StatusCode), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, fallback)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("upstream call timed out", zap.String("path", c.Path()), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "upstream request timed out")
	}

	logger.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	return jsonError(c, fiber.StatusInternalServerError, fallback)
}
