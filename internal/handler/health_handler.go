package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type readiness interface {
	Ready() bool
}

type HealthHandler struct {
	db readiness
}

func NewHealthHandler(db readiness) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	OK bool   `json:"ok"`
	DB string `json:"db"`
}

// Get reports 503 until the database connection is established.
func (h *HealthHandler) Get(c echo.Context) error {
	if h.db == nil || !h.db.Ready() {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{OK: false, DB: "unavailable"})
	}
	return c.JSON(http.StatusOK, HealthResponse{OK: true, DB: "ready"})
}
