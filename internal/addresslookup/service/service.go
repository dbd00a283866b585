// Package service provides business logic for postcode address lookups.
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"postcode_lookup/internal/addresslookup/cache"
	"postcode_lookup/internal/addresslookup/client"
	"postcode_lookup/internal/addresslookup/transport"
	"postcode_lookup/internal/postcode"
	"postcode_lookup/platform/apperr"
	"postcode_lookup/platform/logger"
)

// Messages shown to the end user for each failure.
const (
	MsgInvalidPostcode = "The postcode provided is not valid"
	MsgNotConfigured   = "Postcode lookup is not configured"
	MsgTimeout         = "The address service took too long to respond"
	MsgUpstream        = "The address service could not complete the lookup"
)

const defaultTimeout = 5 * time.Second

// Finder fetches the candidate addresses for a canonical postcode. A nil
// error with no candidates means the postcode has no addresses.
type Finder interface {
	Find(ctx context.Context, pc postcode.Postcode) ([]transport.Candidate, error)
}

// Service performs lookups: normalize, consult the cache, call the provider.
type Service struct {
	finder  Finder
	cache   cache.Cache
	timeout time.Duration
	log     *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the lookup cache. The default never caches.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a new lookup service.
func New(finder Finder, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		finder:  finder,
		cache:   cache.Nop{},
		timeout: defaultTimeout,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup resolves raw user input to a result. It never panics and never
// returns credentials in a failure message.
func (s *Service) Lookup(ctx context.Context, raw string) transport.Result {
	log := s.log.WithContext(ctx)

	pc, err := postcode.Normalize(raw)
	if err != nil {
		log.LookupEvent("", "invalid", http.StatusBadRequest, 0, false)
		return transport.Failure{Err: apperr.Validation(MsgInvalidPostcode).WithOp("lookup")}
	}

	key := pc.String()
	if candidates, ok := s.cache.Get(ctx, key); ok && len(candidates) > 0 {
		log.LookupEvent(key, "found", http.StatusOK, len(candidates), true)
		return transport.Success{Candidates: candidates}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	candidates, err := s.finder.Find(callCtx, pc)
	if err != nil {
		failure := classify(callCtx, err)
		log.LookupEvent(key, "failed", apperr.StatusOf(failure), 0, false)
		return transport.Failure{Err: failure}
	}

	if len(candidates) == 0 {
		log.LookupEvent(key, "empty", http.StatusNotFound, 0, false)
		return transport.Empty{}
	}

	s.cache.Set(ctx, key, candidates)
	log.LookupEvent(key, "found", http.StatusOK, len(candidates), false)
	return transport.Success{Candidates: candidates}
}

// classify maps a finder error to a typed application error.
func classify(callCtx context.Context, err error) error {
	var perr *client.ProviderError
	switch {
	case errors.Is(err, client.ErrNotConfigured):
		return apperr.Unavailable(MsgNotConfigured).WithOp("lookup")
	case errors.Is(err, postcode.ErrInvalidPostcode):
		return apperr.Validation(MsgInvalidPostcode).WithOp("lookup")
	case errors.As(err, &perr) && perr.Timeout,
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindTimeout, MsgTimeout, err).WithOp("lookup")
	case errors.As(err, &perr):
		message := perr.Message
		if message == "" {
			message = MsgUpstream
		}
		return apperr.Wrap(apperr.KindUpstream, message, err).WithOp("lookup")
	default:
		return apperr.Wrap(apperr.KindUpstream, MsgUpstream, err).WithOp("lookup")
	}
}
