package integrity

import (
	"pattern-catalog/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/keys", h.HandleKeyCheck)
	group.Get("/schema", h.HandleSchemaCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs every available integrity check (Structure, Keys, Schema). Schema is skipped without a database.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]interface{})

	if structure, err := h.service.CheckStructure(ctx); err != nil {
		report["structure"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["structure"] = structure
	}

	if keys, err := h.service.CheckKeys(ctx); err != nil {
		report["keys"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["keys"] = keys
	}

	if h.service.db != nil {
		if schema, err := h.service.CheckSchema(); err != nil {
			report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
		} else {
			report["schema"] = schema
		}
	}

	return c.JSON(report)
}

// HandleStructureCheck checks the backend under the template.
// @Summary Check Structure
// @Description Verifies the backend is reachable and counts the paths the template parses.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.StructureReport "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckStructure(c.Context())
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(report.Unparsed) > 0 {
		l.Warn("Paths not parsed by the template", zap.Strings("unparsed", report.Unparsed))
	}

	return c.JSON(report)
}

// HandleKeyCheck reports invalid and colliding entry keys.
// @Summary Check Entry Keys
// @Description Lists paths whose key is invalid or collides with another path. Only the first colliding path is addressable.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.KeyReport "Key Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/keys [get]
func (h *Handler) HandleKeyCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckKeys(c.Context())
	if err != nil {
		l.Error("Key check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if report.Status != "ok" {
		l.Warn("Unaddressable paths detected",
			zap.Int("invalid", len(report.Invalid)),
			zap.Int("collisions", len(report.Collisions)))
	}

	return c.JSON(report)
}

// HandleSchemaCheck checks the snapshot table schema.
// @Summary Check Snapshot Schema
// @Description Checks that catalog_entries matches the snapshot model.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting schema check")

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(report)
}
