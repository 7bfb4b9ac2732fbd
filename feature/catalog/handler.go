package catalog

import (
	"errors"

	"pattern-catalog/core/catalog"
	"pattern-catalog/core/entrykey"
	"pattern-catalog/core/lister"
	"pattern-catalog/core/logger"
	"pattern-catalog/core/pattern"
	"pattern-catalog/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// reservedQuery holds query parameters that are never catalog fields.
var reservedQuery = map[string]struct{}{
	"api_key": {},
}

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/", h.HandleInfo)
	group.Get("/entries", h.HandleEntries)
	group.Get("/names", h.HandleNames)
	group.Get("/entry", h.HandleEntry)
	group.Get("/path", h.HandlePath)
	group.Get("/search", h.HandleSearch)
	group.Get("/snapshot", h.HandleSnapshot)
	group.Get("/drift", h.HandleDrift)
	group.Post("/reload", h.HandleReload)
}

// HandleInfo describes the catalog.
// @Summary Catalog Info
// @Description Returns the template, glob, fields, mode and cache state of the catalog. Never lists the backend.
// @Tags catalog
// @Produce json
// @Success 200 {object} Info
// @Router /catalog [get]
func (h *Handler) HandleInfo(c *fiber.Ctx) error {
	return c.JSON(h.service.Info())
}

// HandleEntries lists the field values of every entry.
// @Summary List Entries
// @Description Returns the field values of every entry. Eager catalogs list the backend when the cache is empty or stale; on-demand catalogs return only entries resolved so far.
// @Tags catalog
// @Produce json
// @Param refresh query boolean false "Drop the cache before listing"
// @Success 200 {object} map[string]interface{} "Entries"
// @Failure 403 {object} map[string]string "Permission Denied"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/entries [get]
func (h *Handler) HandleEntries(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if utils.ToBool(c.Query("refresh")) {
		if _, err := h.service.Reload(c.Context()); err != nil {
			return h.fail(c, l, "Catalog reload failed", err)
		}
	}

	sets, err := h.service.KwargSets(c.Context())
	if err != nil {
		return h.fail(c, l, "Catalog listing failed", err)
	}
	if sets == nil {
		sets = []pattern.Values{}
	}

	return c.JSON(fiber.Map{
		"count":   len(sets),
		"entries": sets,
	})
}

// HandleNames lists the key of every entry.
// @Summary List Entry Names
// @Description Returns the canonical key of every entry, in listing order.
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]interface{} "Names"
// @Failure 403 {object} map[string]string "Permission Denied"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/names [get]
func (h *Handler) HandleNames(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	names, err := h.service.Names(c.Context())
	if err != nil {
		return h.fail(c, l, "Catalog listing failed", err)
	}

	return c.JSON(fiber.Map{"names": names})
}

// HandleEntry looks up a single entry from its field values.
// @Summary Get Entry
// @Description Looks up the entry whose fields match the query parameters, e.g. ?city=bern&year=2024.
// @Tags catalog
// @Produce json
// @Success 200 {object} ResolvedEntry
// @Failure 400 {object} map[string]string "Invalid Key"
// @Failure 403 {object} map[string]string "Permission Denied"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /catalog/entry [get]
func (h *Handler) HandleEntry(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	entry, err := h.service.Entry(c.Context(), fields(c))
	if err != nil {
		return h.fail(c, l, "Entry lookup failed", err)
	}

	return c.JSON(entry)
}

// HandlePath formats the path of an entry without touching the backend.
// @Summary Resolve Entry Path
// @Description Substitutes the query parameters into the template. The path is not checked for existence.
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]string "Path"
// @Failure 400 {object} map[string]string "Missing Field"
// @Router /catalog/path [get]
func (h *Handler) HandlePath(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	path, url, err := h.service.Path(fields(c))
	if err != nil {
		return h.fail(c, l, "Path resolution failed", err)
	}

	return c.JSON(fiber.Map{
		"path": path,
		"url":  url,
	})
}

// HandleSearch finds entries by key or path.
// @Summary Search Entries
// @Description Returns entries whose key or path contains any of the whitespace separated words in q, ignoring case.
// @Tags catalog
// @Produce json
// @Param q query string true "Search words"
// @Param limit query int false "Maximum number of results"
// @Success 200 {object} map[string]interface{} "Matches"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /catalog/search [get]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query parameter q is required"})
	}

	found, err := h.service.Search(c.Context(), q, utils.ToInt(c.Query("limit")))
	if err != nil {
		return h.fail(c, l, "Catalog search failed", err)
	}
	if found == nil {
		found = []ResolvedEntry{}
	}

	return c.JSON(fiber.Map{
		"count":   len(found),
		"entries": found,
	})
}

// HandleSnapshot returns the entries last persisted to the database.
// @Summary Get Snapshot
// @Description Returns the rows mirrored into catalog_entries by the last full listing.
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]interface{} "Snapshot"
// @Failure 503 {object} map[string]string "Snapshot Disabled"
// @Router /catalog/snapshot [get]
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	rows, err := h.service.Snapshot(c.Context())
	if err != nil {
		return h.fail(c, l, "Snapshot load failed", err)
	}

	return c.JSON(fiber.Map{
		"count":   len(rows),
		"entries": rows,
	})
}

// HandleDrift compares the live catalog against the persisted snapshot.
// @Summary Snapshot Drift
// @Description Lists keys that were added, removed or changed since the snapshot was written. Pass all=true to include unchanged keys.
// @Tags catalog
// @Produce json
// @Param all query boolean false "Include unchanged keys"
// @Success 200 {object} reconcile.Report
// @Failure 503 {object} map[string]string "Snapshot Disabled"
// @Router /catalog/drift [get]
func (h *Handler) HandleDrift(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Drift(c.Context())
	if err != nil {
		return h.fail(c, l, "Drift check failed", err)
	}
	if !utils.ToBool(c.Query("all")) {
		report.Results = report.Drift()
	}

	return c.JSON(report)
}

// HandleReload forces a refresh of the catalog.
// @Summary Reload Catalog
// @Description Drops the cached table. Eager catalogs list the backend immediately.
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]interface{} "Reloaded"
// @Failure 403 {object} map[string]string "Permission Denied"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/reload [post]
func (h *Handler) HandleReload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Reloading catalog")

	n, err := h.service.Reload(c.Context())
	if err != nil {
		return h.fail(c, l, "Catalog reload failed", err)
	}

	return c.JSON(fiber.Map{
		"status":  "reloaded",
		"entries": n,
	})
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Info(msg, zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, entrykey.ErrInvalidKey), errors.Is(err, pattern.ErrMissingField),
		errors.Is(err, pattern.ErrUnknownField):
		return fiber.StatusBadRequest
	case errors.Is(err, lister.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, ErrSnapshotDisabled), errors.Is(err, catalog.ErrNotListable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// fields collects the catalog field values from the query string.
func fields(c *fiber.Ctx) map[string]string {
	out := make(map[string]string)
	for k, v := range c.Queries() {
		if _, skip := reservedQuery[k]; skip {
			continue
		}
		out[k] = v
	}
	return out
}
