package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aitorzubi/obratrace/internal/core/domain"
	"github.com/aitorzubi/obratrace/internal/pkg/geospatial"
	"github.com/aitorzubi/obratrace/internal/pkg/metrics"
)

// ListSitesHandler lists sites, optionally filtered to a radius around a point.
func ListSitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lng := c.QueryFloat("lng", 0)
		radius := c.QueryFloat("radius", 0)

		var sites []domain.Site
		var err error
		if radius > 0 {
			if lat == 0 && lng == 0 {
				return errBadRequest(c, "lat and lng are required with radius")
			}
			if radius > 50000 {
				return errBadRequest(c, "radius must be at most 50000 meters")
			}
			sites, err = deps.Sites.ListNear(c.Context(), lat, lng, radius, c.QueryInt("limit", 50))
		} else {
			sites, err = deps.Sites.List(c.Context())
		}
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(sites)
		if offset >= total {
			sites = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			sites = sites[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: sites, Pagination: pg})
	}
}

// CreateSiteHandler creates an empty site to trace.
func CreateSiteHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Name string `json:"name"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		site, err := deps.Sites.Create(c.Context(), req.Name)
		if err != nil {
			return errDomain(c, err)
		}

		metrics.SnapshotsSaved.Inc()
		return c.Status(201).JSON(site)
	}
}

// GetSiteHandler returns a single site snapshot.
func GetSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "site id is required")
		}
		site, err := deps.Sites.GetByID(c.Context(), id)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(site)
	}
}

// SaveSiteHandler stores a full site snapshot. Metrics in the payload are
// ignored and recomputed server-side from the vertices.
func SaveSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "site id is required")
		}

		var site domain.Site
		if err := c.BodyParser(&site); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if site.ID != "" && site.ID != id {
			return errBadRequest(c, "payload id does not match path")
		}
		site.ID = id

		snap, err := deps.Sites.SaveSnapshot(c.Context(), &site)
		if err != nil {
			return errDomain(c, err)
		}

		metrics.SnapshotsSaved.Inc()
		return c.JSON(snap)
	}
}

// DeleteSiteHandler removes a site and its ledger.
func DeleteSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "site id is required")
		}
		if err := deps.Sites.Delete(c.Context(), id); err != nil {
			return errDomain(c, err)
		}
		SiteLoggerFromCtx(c.UserContext(), id).Info("site deleted")
		metrics.SitesDeleted.Inc()
		return c.SendStatus(204)
	}
}

// SiteSummaryHandler returns the derived completion figures for a site.
func SiteSummaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "site id is required")
		}
		summary, err := deps.Sites.Summary(c.Context(), id)
		if err != nil {
			return errDomain(c, err)
		}
		c.Set("Cache-Control", "no-store") // always recomputed
		return c.JSON(summary)
	}
}

// AddProgressHandler records a pending progress claim against a site.
func AddProgressHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		MetersCompleted float64 `json:"metersCompleted"`
		Notes           string  `json:"notes"`
	}
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "site id is required")
		}

		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		entry, err := deps.Progress.AddEntry(c.Context(), id, req.MetersCompleted, req.Notes)
		if err != nil {
			return errDomain(c, err)
		}

		metrics.ProgressEntriesCreated.Inc()
		return c.Status(201).JSON(entry)
	}
}

// ReviewProgressHandler approves or rejects a pending progress entry.
func ReviewProgressHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Status domain.EntryStatus `json:"status"`
	}
	return func(c *fiber.Ctx) error {
		siteID := c.Params("id")
		entryID := c.Params("entryId")
		if siteID == "" || entryID == "" {
			return errBadRequest(c, "site id and entry id are required")
		}

		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		entry, err := deps.Progress.Review(c.Context(), siteID, entryID, req.Status)
		if err != nil {
			return errDomain(c, err)
		}

		SiteLoggerFromCtx(c.UserContext(), siteID).Info("progress entry reviewed",
			"entry_id", entry.ID, "status", entry.Status)
		metrics.ProgressReviews.WithLabelValues(string(entry.Status)).Inc()
		return c.JSON(entry)
	}
}

// PendingProgressHandler lists the progress entries still awaiting review.
func PendingProgressHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "site id is required")
		}
		pending, err := deps.Progress.ListPending(c.Context(), id)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(pending)
	}
}

// MetricsPreviewHandler computes metrics for an arbitrary vertex list so
// non-browser clients reuse the exact server math while drawing.
func MetricsPreviewHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Points   []domain.GeoPoint `json:"points"`
		IsClosed bool              `json:"isClosed"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if len(req.Points) > 10000 {
			return errBadRequest(c, "too many points (max 10000)")
		}
		return c.JSON(domain.ComputeMetrics(req.Points, req.IsClosed))
	}
}

// SnapPreviewHandler resolves a candidate point against existing vertices
// in web-mercator pixel space at the client's zoom level.
func SnapPreviewHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Points      []domain.GeoPoint `json:"points"`
		Candidate   domain.GeoPoint   `json:"candidate"`
		Zoom        float64           `json:"zoom"`
		ThresholdPx float64           `json:"thresholdPx"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if req.Zoom < 0 || req.Zoom > 25 {
			return errBadRequest(c, "zoom must be between 0 and 25")
		}

		threshold := req.ThresholdPx
		if threshold == 0 {
			threshold = deps.SnapThresholdPx
		}

		project := func(p domain.GeoPoint) domain.ScreenPoint {
			x, y := geospatial.WebMercator(p.Lat, p.Lng, req.Zoom)
			return domain.ScreenPoint{X: x, Y: y}
		}

		resolved := domain.Snap(req.Points, req.Candidate, project, threshold)
		return c.JSON(fiber.Map{
			"point":   resolved,
			"snapped": resolved != req.Candidate,
		})
	}
}
