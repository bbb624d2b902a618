package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lepinkainen/partly/internal/batch"
	errs "github.com/lepinkainen/partly/internal/errors"
)

// statusClientClosedRequest is reported when the caller went away mid-batch.
const statusClientClosedRequest = 499

// enrichRequest mirrors the POST /enrich body. MPNs is a pointer so a
// missing field can be told apart from an empty list.
type enrichRequest struct {
	MPNs         *[]string `json:"mpns"`
	Manufacturer string    `json:"manufacturer"`
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.opts.Upstream != nil && c.Query("deep") == "true" {
		if err := s.opts.Upstream.Ping(c.Request.Context()); err != nil {
			slog.Warn("Upstream health check failed", "request_id", requestIDFrom(c), "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleEnrich(c *gin.Context) {
	req, err := s.decodeEnrichRequest(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.enricher.Run(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Response())
}

func (s *Server) handleEnrichOne(c *gin.Context) {
	req := batch.Request{
		MPNs:         []string{c.Param("mpn")},
		Manufacturer: c.Query("manufacturer"),
	}

	result, err := s.enricher.Run(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := result.Response()
	if len(resp.Results) != 1 {
		s.writeError(c, fmt.Errorf("expected one result, got %d", len(resp.Results)))
		return
	}
	c.JSON(http.StatusOK, resp.Results[0])
}

func (s *Server) handleManufacturers(c *gin.Context) {
	names := []string{}
	if s.manufacturers != nil {
		names = append(names, s.manufacturers.Canonical()...)
	}
	c.JSON(http.StatusOK, gin.H{"count": len(names), "manufacturers": names})
}

func (s *Server) decodeEnrichRequest(c *gin.Context) (batch.Request, error) {
	var body enrichRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return batch.Request{}, bodyError(err)
	}
	if body.MPNs == nil {
		return batch.Request{}, errs.NewValidationError("mpns", "is required")
	}
	if n := len(*body.MPNs); n > s.opts.MaxBatch {
		return batch.Request{}, errs.NewValidationError("mpns",
			fmt.Sprintf("batch of %d exceeds the limit of %d", n, s.opts.MaxBatch))
	}
	return batch.Request{MPNs: *body.MPNs, Manufacturer: body.Manufacturer}, nil
}

// bodyError maps a JSON decoding failure to a ValidationError naming the
// offending field where possible.
func bodyError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return errs.NewValidationError(field, "must be "+expectedType(field))
	}
	return errs.NewValidationError("body", "invalid JSON: "+err.Error())
}

func expectedType(field string) string {
	switch {
	case strings.HasPrefix(field, "mpns"):
		return "an array of strings"
	case field == "manufacturer":
		return "a string"
	default:
		return "a JSON object"
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsValidationError(err):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		status = statusClientClosedRequest
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error":      err.Error(),
		"request_id": requestIDFrom(c),
	})
}
