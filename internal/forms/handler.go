package forms

import (
	"net/http"
	"strconv"

	"postcode_lookup/internal/field"
	"postcode_lookup/platform/apperr"
	"postcode_lookup/platform/httpkit"
	"postcode_lookup/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler exposes field rendering and validation to the page builder.
type Handler struct {
	catalog *Catalog
	val     *validator.Validator
}

func NewHandler(catalog *Catalog, val *validator.Validator) *Handler {
	return &Handler{catalog: catalog, val: val}
}

// ValuesRequest carries submitted or saved field values keyed by suffix.
type ValuesRequest struct {
	Values field.Values `json:"values" validate:"max=16,dive,keys,max=32,endkeys,max=512"`
}

// ValidateResponse reports the validation outcome and the export value.
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Export  string `json:"export"`
}

// EntryResponse is the formatted entry detail.
type EntryResponse struct {
	Format string `json:"format"`
	Detail string `json:"detail"`
}

type entryDetailer interface {
	EntryDetail(values field.Values, format field.EntryFormat) string
}

// Render handles POST /api/v1/forms/:formID/fields/:fieldID/render?mode=
func (h *Handler) Render(c *gin.Context) {
	descriptor, req, ok := h.bind(c)
	if !ok {
		return
	}

	if mode := field.Mode(c.Query("mode")); mode != "" {
		if err := h.val.Var(string(mode), field.ModeRule); err != nil {
			httpkit.HandleError(c, apperr.Validation("mode must be frontend, editor or entry"))
			return
		}
		if moder, ok := descriptor.(field.Moder); ok {
			descriptor = moder.WithMode(mode)
		}
	}

	markup, err := descriptor.Render(req.Values)
	if err != nil {
		_ = c.Error(err)
		httpkit.HandleError(c, apperr.Internal("failed to render field"))
		return
	}
	httpkit.HTML(c, http.StatusOK, string(markup))
}

// Validate handles POST /api/v1/forms/:formID/fields/:fieldID/validate
func (h *Handler) Validate(c *gin.Context) {
	descriptor, req, ok := h.bind(c)
	if !ok {
		return
	}

	result := descriptor.Validate(req.Values)
	httpkit.OK(c, ValidateResponse{
		Valid:   result.Valid,
		Message: result.Message,
		Export:  descriptor.ExportValue(req.Values),
	})
}

// Entry handles POST /api/v1/forms/:formID/fields/:fieldID/entry?format=html|text
func (h *Handler) Entry(c *gin.Context) {
	descriptor, req, ok := h.bind(c)
	if !ok {
		return
	}

	format := field.EntryFormat(c.DefaultQuery("format", string(field.FormatHTML)))
	if format != field.FormatHTML && format != field.FormatText {
		httpkit.HandleError(c, apperr.Validation("format must be html or text"))
		return
	}

	detailer, ok := descriptor.(entryDetailer)
	if !ok {
		httpkit.HandleError(c, apperr.BadRequest("field has no entry detail"))
		return
	}

	httpkit.OK(c, EntryResponse{Format: string(format), Detail: detailer.EntryDetail(req.Values, format)})
}

func (h *Handler) bind(c *gin.Context) (field.Descriptor, ValuesRequest, bool) {
	var req ValuesRequest

	formID, err := strconv.Atoi(c.Param("formID"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid form id"))
		return nil, req, false
	}
	fieldID, err := strconv.Atoi(c.Param("fieldID"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid field id"))
		return nil, req, false
	}

	descriptor, err := h.catalog.Field(formID, fieldID)
	if httpkit.HandleError(c, err) {
		return nil, req, false
	}

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
			return nil, req, false
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid field values").WithDetails(validator.Describe(err)))
		return nil, req, false
	}

	return descriptor, req, true
}
