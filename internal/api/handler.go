package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pfrederiksen/ski-spot/internal/logger"
	"github.com/pfrederiksen/ski-spot/internal/ranking"
	"github.com/pfrederiksen/ski-spot/internal/service"
)

// Service is the part of service.Service the handlers use
type Service interface {
	Search(ctx context.Context, req service.SearchRequest) (*service.SearchResult, error)
	Mapped(ctx context.Context) ([]service.MapResort, error)
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	svc Service
}

// NewHandler creates a Handler backed by svc.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type errorResponse struct {
	Error string `json:"error"`
}

type resortsResponse struct {
	Count   int                 `json:"count"`
	Resorts []service.MapResort `json:"resorts"`
}

// Search ranks resorts around the location query parameter.
func (h *Handler) Search(c echo.Context) error {
	req := service.SearchRequest{
		Location: strings.TrimSpace(c.QueryParam("location")),
		Radius:   service.DefaultRadius,
		Priority: parsePriority(c.QueryParam("priority")),
		Sort:     parseSort(c.QueryParam("sort")),
	}
	if req.Location == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{"Location is required"})
	}

	if raw := c.QueryParam("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{"Radius must be a number"})
		}
		req.Radius = radius
	}

	result, err := h.svc.Search(c.Request().Context(), req)
	switch {
	case errors.Is(err, service.ErrLocationRequired):
		return c.JSON(http.StatusBadRequest, errorResponse{"Location is required"})
	case errors.Is(err, service.ErrLocationNotFound):
		return c.JSON(http.StatusBadRequest, errorResponse{"Could not find location. Try a different format."})
	case errors.Is(err, service.ErrInvalidRadius):
		return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
	case err != nil:
		logger.Error("Search failed", logger.Fields{"location": req.Location}, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, result)
}

// Resorts lists every resort with coordinates.
func (h *Handler) Resorts(c echo.Context) error {
	resorts, err := h.svc.Mapped(c.Request().Context())
	if err != nil {
		logger.Error("Listing resorts failed", nil, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "listing resorts failed")
	}
	return c.JSON(http.StatusOK, resortsResponse{Count: len(resorts), Resorts: resorts})
}

// unknown values fall back to the defaults
func parsePriority(s string) ranking.Priority {
	if ranking.Priority(strings.ToLower(s)) == ranking.PriorityDistance {
		return ranking.PriorityDistance
	}
	return ranking.PrioritySnow
}

func parseSort(s string) ranking.SortOrder {
	switch order := ranking.SortOrder(strings.ToLower(s)); order {
	case ranking.SortByDistance, ranking.SortByConditions:
		return order
	default:
		return ranking.SortOptimized
	}
}
