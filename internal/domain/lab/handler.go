package lab

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medlab/medlab/internal/platform/apperr"
	"github.com/medlab/medlab/internal/platform/patch"
	"github.com/medlab/medlab/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/Registration", h.Register)
	e.POST("/Login", h.Login)

	e.GET("/Labs", h.ListLabs)
	e.POST("/Labs", h.CreateLab)
	e.GET("/Labs/:labId", h.GetLab)
	e.PUT("/Labs/:labId", h.UpdateLab)
	e.PATCH("/Labs/:labId", h.PatchLab)
	e.DELETE("/Labs/:labId", h.DeleteLab)
}

// upsertRequest is the wire shape for registration, create and put. The
// passwordHash field carries the plaintext password in transit; it is hashed
// before storage and never echoed back.
type upsertRequest struct {
	LabEmail   string `json:"labEmail"`
	Password   string `json:"passwordHash"`
	LabName    string `json:"labName"`
	LabAddress string `json:"labAddress"`
}

func (r upsertRequest) input() UpsertInput {
	return UpsertInput{
		LabEmail:   r.LabEmail,
		Password:   r.Password,
		LabName:    r.LabName,
		LabAddress: r.LabAddress,
	}
}

func (h *Handler) Register(c echo.Context) error {
	var req upsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	l, err := h.svc.Register(c.Request().Context(), req.input())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, l.ToSummary())
}

type loginRequest struct {
	LabEmail string `json:"labEmail"`
	Password string `json:"passwordHash"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.Login(c.Request().Context(), req.LabEmail, req.Password)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListLabs(c echo.Context) error {
	params := pagination.FromContext(c)

	labs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apperr.HTTP(err)
	}

	summaries := make([]Summary, 0, len(labs))
	for _, l := range labs {
		summaries = append(summaries, l.ToSummary())
	}

	start, end := params.Slice(len(summaries))
	page := summaries[start:end]

	return c.JSON(http.StatusOK, pagination.NewResponse(page, len(summaries), params.Limit, params.Offset))
}

func (h *Handler) GetLab(c echo.Context) error {
	l, err := h.svc.Get(c.Request().Context(), c.Param("labId"))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, l.ToSummary())
}

func (h *Handler) CreateLab(c echo.Context) error {
	var req upsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	l, err := h.svc.Create(c.Request().Context(), req.input())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, l.ToSummary())
}

func (h *Handler) UpdateLab(c echo.Context) error {
	var req upsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	l, err := h.svc.Update(c.Request().Context(), c.Param("labId"), req.input())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, l.ToSummary())
}

// PatchLab accepts either a JSON Patch document (application/json-patch+json)
// or a sparse patch object (application/json).
func (h *Handler) PatchLab(c echo.Context) error {
	labID := c.Param("labId")
	ctx := c.Request().Context()

	var (
		l   *Lab
		err error
	)
	if strings.Contains(c.Request().Header.Get(echo.HeaderContentType), "json-patch+json") {
		body, readErr := io.ReadAll(c.Request().Body)
		if readErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		ops, parseErr := patch.Parse(body)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, parseErr.Error())
		}
		l, err = h.svc.PatchOps(ctx, labID, ops)
	} else {
		var p Patch
		if bindErr := c.Bind(&p); bindErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		l, err = h.svc.PatchSparse(ctx, labID, p)
	}

	if err != nil {
		// A merge that produced an invalid document is semantically
		// unprocessable rather than malformed.
		var e *apperr.Error
		if errors.As(err, &e) && apperr.IsValidation(err) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, e.Msg)
		}
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, l.ToSummary())
}

func (h *Handler) DeleteLab(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("labId")); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
