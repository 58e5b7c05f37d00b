package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/reconnect/internal/model"
	"github.com/shinyyama/reconnect/internal/service"
)

type SearchHandler struct {
	svc service.SearchService
}

func NewSearchHandler(svc service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// FoundItemResponse is the public view of a found item; contact fields are never included.
type FoundItemResponse struct {
	ItemID       uint64   `json:"item_id"`
	Description  string   `json:"description"`
	LocationDesc *string  `json:"location_desc"`
	City         string   `json:"city"`
	Category     string   `json:"category"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	ImagePath    string   `json:"image_path"`
	FoundDate    string   `json:"found_date"`
}

type SearchResponse struct {
	Message string              `json:"message"`
	Results []FoundItemResponse `json:"results"`
}

type ContactResponse struct {
	Contact string `json:"contact"`
}

// Search handles GET /api/search.
func (h *SearchHandler) Search(c echo.Context) error {
	items, err := h.svc.Search(c.Request().Context(), service.SearchQuery{
		Product:  c.QueryParam("product"),
		Category: c.QueryParam("category"),
		Location: c.QueryParam("location"),
	})
	if err != nil {
		return writeError(c, err, "Server error during search operation.")
	}
	resp := SearchResponse{
		Message: fmt.Sprintf("Found %d relevant items.", len(items)),
		Results: make([]FoundItemResponse, 0, len(items)),
	}
	for i := range items {
		resp.Results = append(resp.Results, toFoundItemResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Contact handles GET /api/contact/:item_id. Ids that cannot exist are reported as not found.
func (h *SearchHandler) Contact(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusNotFound, NewMessageResponse(msgItemNotFound))
	}
	contact, err := h.svc.Contact(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, "Server error retrieving contact.")
	}
	return c.JSON(http.StatusOK, ContactResponse{Contact: contact})
}

func toFoundItemResponse(item *model.FoundItem) FoundItemResponse {
	return FoundItemResponse{
		ItemID:       item.ItemID,
		Description:  item.Description,
		LocationDesc: item.LocationDesc,
		City:         item.City,
		Category:     item.Category,
		Latitude:     item.Latitude,
		Longitude:    item.Longitude,
		ImagePath:    item.ImagePath,
		FoundDate:    item.FoundDate.Format(time.RFC3339),
	}
}
