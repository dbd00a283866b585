// Package transport provides DTOs for the address lookup domain.
package transport

import (
	"errors"
	"net/http"

	"postcode_lookup/platform/apperr"
)

// Address part names. They double as JSON keys on the wire and as the
// logical names in a field binding.
const (
	PartLine1    = "line_1"
	PartLine2    = "line_2"
	PartCity     = "city"
	PartCounty   = "county"
	PartPostcode = "postcode"
)

// Parts lists every address part in display order.
var Parts = []string{PartLine1, PartLine2, PartCity, PartCounty, PartPostcode}

// NoResultsMessage is returned when the provider has no addresses for a postcode.
const NoResultsMessage = "We weren't able to find any addresses for the given postcode"

// Candidate is one possible address for a postcode.
type Candidate struct {
	Line1    string `json:"line_1,omitempty"`
	Line2    string `json:"line_2,omitempty"`
	City     string `json:"city,omitempty"`
	County   string `json:"county,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

// Get returns the value of a named part.
func (c Candidate) Get(part string) string {
	switch part {
	case PartLine1:
		return c.Line1
	case PartLine2:
		return c.Line2
	case PartCity:
		return c.City
	case PartCounty:
		return c.County
	case PartPostcode:
		return c.Postcode
	default:
		return ""
	}
}

// Values returns the non-empty parts keyed by part name.
func (c Candidate) Values() map[string]string {
	values := make(map[string]string, len(Parts))
	for _, part := range Parts {
		if v := c.Get(part); v != "" {
			values[part] = v
		}
	}
	return values
}

// HasLine reports whether the candidate carries at least one address line.
func (c Candidate) HasLine() bool {
	return c.Line1 != "" || c.Line2 != ""
}

// LookupRequest is the inbound lookup body. Both form-encoded and JSON
// bodies bind to it; any other request field is ignored.
type LookupRequest struct {
	Postcode string `form:"postcode" json:"postcode" validate:"max=64"`
}

// Envelope is the uniform lookup response. Exactly one of Data and Message
// is set.
type Envelope struct {
	Status  int         `json:"status"`
	Data    []Candidate `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK reports whether the envelope carries candidates.
func (e Envelope) OK() bool {
	return e.Status == http.StatusOK && len(e.Data) > 0
}

// Result is the outcome of one lookup: Success, Empty or Failure.
type Result interface {
	isResult()
}

// Success carries one or more candidates in provider order.
type Success struct {
	Candidates []Candidate
}

// Empty means the provider answered but had no candidates.
type Empty struct{}

// Failure carries the reason a lookup could not complete.
type Failure struct {
	Err error
}

func (Success) isResult() {}
func (Empty) isResult()   {}
func (Failure) isResult() {}

// UnexpectedFailureMessage is shown when a lookup fails for a reason the
// caller cannot act on.
const UnexpectedFailureMessage = "Unable to look up addresses right now"

// NewEnvelope converts a lookup result into its wire form. This is the only
// place a Result becomes an Envelope.
func NewEnvelope(result Result) Envelope {
	switch r := result.(type) {
	case Success:
		if len(r.Candidates) == 0 {
			return NewEnvelope(Empty{})
		}
		return Envelope{Status: http.StatusOK, Data: r.Candidates}
	case Empty:
		return Envelope{Status: http.StatusNotFound, Message: NoResultsMessage}
	case Failure:
		return FailureEnvelope(r.Err)
	default:
		return Envelope{Status: http.StatusInternalServerError, Message: UnexpectedFailureMessage}
	}
}

// FailureEnvelope builds an error envelope. Typed errors keep their status
// and message; anything else becomes a generic 500.
func FailureEnvelope(err error) Envelope {
	var domainErr *apperr.Error
	if err == nil || !errors.As(err, &domainErr) || domainErr.Message == "" {
		return Envelope{Status: http.StatusInternalServerError, Message: UnexpectedFailureMessage}
	}
	return Envelope{Status: domainErr.HTTPStatus(), Message: domainErr.Message}
}
