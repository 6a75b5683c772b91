package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlab/medlab/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/Tests/:labId", h.GetCatalog)
	e.POST("/Tests/:labId", h.CreateTest)
	e.GET("/Tests/:labId/:testId", h.GetTest)
	e.PUT("/Tests/:labId/:testId", h.UpdateTest)
	e.PATCH("/Tests/:labId/:testId", h.PatchTest)
	e.DELETE("/Tests/:labId/:testId", h.DeleteTest)
}

func (h *Handler) GetCatalog(c echo.Context) error {
	cat, err := h.svc.GetForLab(c.Request().Context(), c.Param("labId"))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *Handler) GetTest(c echo.Context) error {
	t, err := h.svc.GetTest(c.Request().Context(), c.Param("labId"), c.Param("testId"))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTest(c echo.Context) error {
	var t LabTest
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	created, err := h.svc.Create(c.Request().Context(), c.Param("labId"), t)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateTest(c echo.Context) error {
	var t LabTest
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	updated, err := h.svc.Update(c.Request().Context(), c.Param("labId"), c.Param("testId"), t)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) PatchTest(c echo.Context) error {
	var p Patch
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	patched, err := h.svc.PatchTest(c.Request().Context(), c.Param("labId"), c.Param("testId"), p)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, patched)
}

func (h *Handler) DeleteTest(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("labId"), c.Param("testId")); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
