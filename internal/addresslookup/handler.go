package addresslookup

import (
	"net/http"

	"postcode_lookup/internal/addresslookup/service"
	"postcode_lookup/internal/addresslookup/transport"
	"postcode_lookup/platform/apperr"
	"postcode_lookup/platform/logger"
	"postcode_lookup/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler exposes the postcode lookup endpoint.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

func NewHandler(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// Lookup handles POST /api/v1/postcode-lookup. The body is always an
// envelope and the HTTP status always equals the envelope status.
func (h *Handler) Lookup(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.log.WithContext(c.Request.Context()).Error("postcode lookup panicked", "panic", r)
			writeEnvelope(c, transport.FailureEnvelope(apperr.Internal(transport.UnexpectedFailureMessage)))
		}
	}()

	var req transport.LookupRequest
	if err := c.ShouldBind(&req); err != nil {
		writeEnvelope(c, transport.FailureEnvelope(apperr.Validation(service.MsgInvalidPostcode)))
		return
	}
	if err := h.val.Struct(req); err != nil {
		writeEnvelope(c, transport.FailureEnvelope(apperr.Validation(service.MsgInvalidPostcode)))
		return
	}

	writeEnvelope(c, transport.NewEnvelope(h.svc.Lookup(c.Request.Context(), req.Postcode)))
}

// RateLimited is the reject handler for the lookup route.
func RateLimited(c *gin.Context) {
	env := transport.FailureEnvelope(apperr.TooManyRequests("Too many lookups, please wait a moment and try again"))
	c.AbortWithStatusJSON(env.Status, env)
}

func writeEnvelope(c *gin.Context, env transport.Envelope) {
	if env.Status == 0 {
		env.Status = http.StatusInternalServerError
	}
	c.JSON(env.Status, env)
}
