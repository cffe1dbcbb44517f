package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/poiesic/quaerit/qa"
)

// Service answers batches of questions about a document.
// qa.Engine satisfies this interface.
type Service interface {
	ProcessDocument(ctx context.Context, source string, questions []string) ([]qa.Result, error)
}

// Handler serves the answer endpoint.
type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a handler over the given answer service.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "api"),
	}
}

// RegisterRoutes mounts the answer endpoint on r.
func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Post("/answers", h.Answers)
}

// Answers indexes the requested document and answers each question in
// order. A document that cannot be indexed is not a server error: the
// failure is reported as the answer to every question, matching what
// conversational clients expect.
func (h *Handler) Answers(ctx *fiber.Ctx) error {
	var req AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	results, err := h.service.ProcessDocument(ctx.Context(), req.Documents, req.Questions)
	if err != nil {
		var buildErr *qa.BuildError
		if errors.As(err, &buildErr) {
			h.logger.Warn("document could not be indexed", "source", req.Documents, "err", buildErr.Err)
			return ctx.JSON(degradedResponse(req.Questions, buildErr.Err))
		}
		h.logger.Error("answer processing failed", "source", req.Documents, "err", err)
		return fiber.ErrInternalServerError
	}

	return ctx.JSON(toAnswerResponse(results))
}
