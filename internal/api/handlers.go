package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/analysis"
	"github.com/nity4jain/skillbridge-mvp/internal/api/presenter"
	"github.com/nity4jain/skillbridge-mvp/internal/document"
	"github.com/nity4jain/skillbridge-mvp/internal/embedding"
	"github.com/nity4jain/skillbridge-mvp/internal/matching"
	"github.com/nity4jain/skillbridge-mvp/internal/skills"
)

type handlers struct {
	analysis  *analysis.Service
	extractor analysis.SkillExtractor
	engine    *matching.Engine
	logger    *zap.Logger
}

type contentRequest struct {
	Content string `json:"content"`
}

type matchRequest struct {
	Profile string `json:"profile"`
	TopK    int    `json:"top_k"`
}

type matchResponse struct {
	TopMatches []matching.Result `json:"top_matches"`
}

func (h *handlers) root(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, fiber.Map{"message": "SkillBridge AI Service is running!"})
}

func (h *handlers) health(c *fiber.Ctx) error {
	ix := h.engine.Current()
	if ix == nil {
		return presenter.JSON(c, http.StatusServiceUnavailable, fiber.Map{
			"status":  "not_ready",
			"details": matching.ErrNotReady.Error(),
		})
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"status":   "ok",
		"jobs":     ix.Catalog().Len(),
		"strategy": ix.Strategy(),
		"model":    ix.Model(),
		"built_at": ix.BuiltAt(),
	})
}

func (h *handlers) listJobs(c *fiber.Ctx) error {
	ix := h.engine.Current()
	if ix == nil {
		return h.fail(c, matching.ErrNotReady)
	}
	return presenter.JSON(c, http.StatusOK, ix.Catalog().Jobs())
}

func (h *handlers) getJob(c *fiber.Ctx) error {
	ix := h.engine.Current()
	if ix == nil {
		return h.fail(c, matching.ErrNotReady)
	}
	job, ok := ix.Catalog().Get(c.Params("id"))
	if !ok {
		return presenter.Error(c, http.StatusNotFound, "job not found")
	}
	return presenter.JSON(c, http.StatusOK, job)
}

func (h *handlers) analyzeProfile(c *fiber.Ctx) error {
	var req contentRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid request body")
	}

	report, err := h.analysis.AnalyzeText(c.UserContext(), req.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, report)
}

func (h *handlers) uploadResume(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required (pdf or docx)")
	}

	filename, err := uploadName(fh)
	if err != nil {
		return h.fail(c, err)
	}

	data, err := readUpload(fh)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to read uploaded file")
	}

	report, err := h.analysis.AnalyzeDocument(c.UserContext(), filename, data)
	if err != nil {
		return h.fail(c, err)
	}
	report.Filename = fh.Filename
	return presenter.JSON(c, http.StatusOK, report)
}

func (h *handlers) extractSkills(c *fiber.Ctx) error {
	var req contentRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Content) == "" {
		return h.fail(c, analysis.ErrEmptyContent)
	}

	found, err := h.extractor.Extract(c.UserContext(), req.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"extracted_skills": found})
}

func (h *handlers) match(c *fiber.Ctx) error {
	var req matchRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Profile) == "" {
		return presenter.Error(c, http.StatusBadRequest, "profile must not be empty")
	}

	results, err := h.engine.Rank(c.UserContext(), req.Profile, req.TopK)
	if err != nil {
		return h.fail(c, err)
	}
	for i := range results {
		results[i].Score = analysis.RoundScore(results[i].Score)
	}
	return presenter.JSON(c, http.StatusOK, matchResponse{TopMatches: results})
}

// uploadName returns a filename whose extension selects the decoder. Uploads
// without a usable extension fall back to their declared content type.
func uploadName(fh *multipart.FileHeader) (string, error) {
	if _, err := document.TypeFromFilename(fh.Filename); err == nil {
		return fh.Filename, nil
	}
	kind, err := document.TypeFromMIME(fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return "", err
	}
	return fh.Filename + "." + string(kind), nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// fail maps domain errors to status codes.
func (h *handlers) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = fmt.Sprintf("failed to process request: %v", err)
	}
	return presenter.Error(c, status, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrEmptyContent), errors.Is(err, document.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, matching.ErrNotReady),
		errors.Is(err, embedding.ErrBackendUnavailable),
		errors.Is(err, skills.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
