package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/reconnect/internal/service"
)

const multipartMemory = 8 << 20

type FoundHandler struct {
	svc      service.IntakeService
	maxBytes int64
}

func NewFoundHandler(svc service.IntakeService, maxBytes int64) *FoundHandler {
	return &FoundHandler{svc: svc, maxBytes: maxBytes}
}

type UploadResponse struct {
	Message   string `json:"message"`
	ImagePath string `json:"image_path"`
}

// Upload handles POST /api/found/upload.
func (h *FoundHandler) Upload(c echo.Context) error {
	req := c.Request()
	if h.maxBytes > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxBytes)
	}

	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, NewMessageResponse("Uploaded file is too large."))
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return c.JSON(http.StatusBadRequest, NewMessageResponse("Invalid multipart form."))
		}
	}
	if req.MultipartForm != nil {
		defer req.MultipartForm.RemoveAll()
	}

	in := service.SubmitInput{
		Description:  req.FormValue("description"),
		LocationDesc: req.FormValue("location_desc"),
		ContactNo:    req.FormValue("contact_no"),
		City:         req.FormValue("city"),
		Category:     req.FormValue("category"),
		Latitude:     req.FormValue("latitude"),
		Longitude:    req.FormValue("longitude"),
	}

	file, header, err := req.FormFile("image")
	if err == nil {
		defer file.Close()
		in.Image = &service.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	}

	res, err := h.svc.Submit(req.Context(), in)
	if err != nil {
		return writeError(c, err, "Server error during upload.")
	}
	return c.JSON(http.StatusCreated, UploadResponse{
		Message:   service.MsgItemPosted,
		ImagePath: res.ImagePath,
	})
}
