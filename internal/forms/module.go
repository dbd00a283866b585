package forms

import (
	apphttp "postcode_lookup/internal/http"
	"postcode_lookup/platform/validator"
)

// Module wires the form field HTTP routes.
type Module struct {
	catalog *Catalog
	handler *Handler
}

func NewModule(catalog *Catalog, val *validator.Validator) *Module {
	return &Module{catalog: catalog, handler: NewHandler(catalog, val)}
}

// Catalog returns the loaded form definitions.
func (m *Module) Catalog() *Catalog {
	return m.catalog
}

func (m *Module) Name() string {
	return "forms"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/forms/:formID/fields/:fieldID")
	group.POST("/render", m.handler.Render)
	group.POST("/validate", m.handler.Validate)
	group.POST("/entry", m.handler.Entry)
}

var _ apphttp.Module = (*Module)(nil)
