package report

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlab/medlab/internal/domain/lab"
	"github.com/medlab/medlab/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the report routes behind the bearer-token middleware.
func (h *Handler) RegisterRoutes(e *echo.Echo, requireToken echo.MiddlewareFunc) {
	g := e.Group("/report", requireToken)

	g.GET("/:labId", h.ListReports)
	g.POST("/:labId", h.AddReport)
	g.PUT("/:labId/:reportId", h.UpdateReport)
	g.PATCH("/:labId/:reportId", h.PatchReport)
	g.DELETE("/:labId/:reportId", h.DeleteReport)
	g.DELETE("/:labId", h.DeleteAllReports)
}

// ListReports returns the lab's reports as a plain array.
func (h *Handler) ListReports(c echo.Context) error {
	reports, err := h.svc.ListForLab(c.Request().Context(), c.Param("labId"))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, reports)
}

func (h *Handler) AddReport(c echo.Context) error {
	var r lab.Report
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	created, err := h.svc.Add(c.Request().Context(), c.Param("labId"), r)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateReport(c echo.Context) error {
	var r lab.Report
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	updated, err := h.svc.Replace(c.Request().Context(), c.Param("labId"), c.Param("reportId"), r)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) PatchReport(c echo.Context) error {
	var p lab.ReportPatch
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	patched, err := h.svc.Patch(c.Request().Context(), c.Param("labId"), c.Param("reportId"), p)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, patched)
}

func (h *Handler) DeleteReport(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("labId"), c.Param("reportId")); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteAllReports(c echo.Context) error {
	if err := h.svc.DeleteAll(c.Request().Context(), c.Param("labId")); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
