package http

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"portfolio-analyzer/internal/dto"
	"portfolio-analyzer/internal/faults"
)

func (h *HttpAPIHandler) SetupAnalyze(base *echo.Group) {
	analyzeGroup := base.Group("/analyze")
	analyzeGroup.POST("", h.analyze)
	analyzeGroup.GET("/sample", h.sampleAnalysis)
}

// analyzeParams carries the non-file form fields.
type analyzeParams struct {
	Format string `form:"format" validate:"omitempty,oneof=markdown json"`
}

func (h *HttpAPIHandler) analyze(c echo.Context) error {
	ctx := c.Request().Context()

	params := new(analyzeParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid request body", "bad_request"))
	}
	if err := h.validator.Struct(params); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("format must be markdown or json", "bad_request"))
	}
	if params.Format == "" {
		params.Format = dto.FormatMarkdown
	}

	fileHeaders, err := h.uploadedFiles(c)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("no image files provided", "invalid_input"))
	}

	images, err := readUploads(fileHeaders)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("uploaded file could not be read", "invalid_input"))
	}

	if params.Format == dto.FormatJSON {
		result, err := h.service.AnalysisService.AnalyzeStructured(ctx, images)
		if err != nil {
			return h.faultResponse(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}

	result, err := h.service.AnalysisService.AnalyzeMarkdown(ctx, images)
	if err != nil {
		return h.faultResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) sampleAnalysis(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.AnalysisService.SampleAnalysis())
}

// uploadedFiles collects the multipart file headers. The legacy
// single-file field is promoted into the list for older clients.
func (h *HttpAPIHandler) uploadedFiles(c echo.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	headers := form.File["files"]
	if legacy, ok := form.File["file"]; ok {
		headers = append(headers, legacy...)
	}
	if len(headers) == 0 {
		return nil, echo.ErrUnprocessableEntity
	}
	return headers, nil
}

func readUploads(headers []*multipart.FileHeader) ([]dto.UploadedImage, error) {
	images := make([]dto.UploadedImage, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, dto.UploadedImage{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return images, nil
}

// faultResponse maps a classified pipeline failure onto an HTTP status
// with its curated message. Unclassified errors say nothing specific.
func (h *HttpAPIHandler) faultResponse(c echo.Context, err error) error {
	kind := faults.KindOf(err)

	var status int
	switch kind {
	case faults.KindInvalidInput, faults.KindBadRequest, faults.KindSchemaMismatch:
		status = http.StatusBadRequest
	case faults.KindTimeout:
		status = http.StatusServiceUnavailable
	case faults.KindQuotaExceeded:
		status = http.StatusTooManyRequests
	default:
		status = http.StatusInternalServerError
	}

	return c.JSON(status, dto.NewErrorResponse(faults.UserMessage(err), kind.String()))
}
