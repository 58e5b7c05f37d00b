package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/reconnect/internal/service"
)

const msgItemNotFound = "Item not found."

// MessageResponse is the body of every non-data reply. Error carries the raw
// cause on server failures.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func NewMessageResponse(message string) MessageResponse {
	return MessageResponse{Message: message}
}

// writeError maps the service error taxonomy onto status codes. serverMsg is
// used for anything that is not a validation or not-found error.
func writeError(c echo.Context, err error, serverMsg string) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, NewMessageResponse(verr.Reason))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewMessageResponse(msgItemNotFound))
	default:
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: serverMsg, Error: err.Error()})
	}
}
