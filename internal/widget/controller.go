package widget

import (
	"context"
	"net/http"
	"sync"

	"postcode_lookup/internal/addresslookup/transport"
	"postcode_lookup/internal/field"
	"postcode_lookup/internal/postcode"
	"postcode_lookup/platform/logger"
)

// State is the controller's lookup state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateResultsShown
	StateNoResultsNotified
	StateErrorNotified
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateResultsShown:
		return "results_shown"
	case StateNoResultsNotified:
		return "no_results_notified"
	case StateErrorNotified:
		return "error_notified"
	default:
		return "unknown"
	}
}

// Outcome reports what a single Trigger did.
type Outcome int

const (
	// OutcomeIgnored means a lookup was already in flight.
	OutcomeIgnored Outcome = iota
	// OutcomeInvalid means the postcode failed validation; nothing was sent.
	OutcomeInvalid
	OutcomeResults
	OutcomeNoResults
	OutcomeError
	// OutcomeStale means the response arrived after the lookup was superseded.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeResults:
		return "results"
	case OutcomeNoResults:
		return "no_results"
	case OutcomeError:
		return "error"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Controller drives one rendered field instance.
type Controller struct {
	page      Page
	transport Transport
	notifier  Notifier
	binding   field.Binding
	log       *logger.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	items      []ResultItem
	manual     bool
}

// NewController wires a controller to its page, transport and notifier.
// The binding maps address parts to the page's input ids.
func NewController(page Page, tr Transport, notifier Notifier, binding field.Binding, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	return &Controller{
		page:      page,
		transport: tr,
		notifier:  notifier,
		binding:   binding,
		log:       log,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns the currently listed results.
func (c *Controller) Items() []ResultItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ResultItem(nil), c.items...)
}

// Manual reports whether the address fields are shown instead of the search.
func (c *Controller) Manual() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manual
}

// Trigger runs one lookup for the postcode currently in the search input.
// It blocks until the response is handled. A trigger while another lookup
// is loading is ignored.
func (c *Controller) Trigger(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return OutcomeIgnored
	}

	// A new search always drops the previous candidates, even when the
	// input turns out to be invalid.
	c.items = nil
	c.state = StateIdle
	c.mu.Unlock()
	c.page.ClearResults()

	pc, err := postcode.Normalize(c.page.PostcodeValue())
	if err != nil {
		c.notify(StateErrorNotified, MsgInvalidPostcode)
		return OutcomeInvalid
	}

	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return OutcomeIgnored
	}
	c.generation++
	gen := c.generation
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = StateLoading
	c.mu.Unlock()
	defer cancel()

	c.page.SetTriggerEnabled(false)
	c.page.SetLoading(true)

	env, err := c.transport.Lookup(reqCtx, pc.String())

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.log.Debug("discarding stale lookup response", "postcode", pc.String())
		return OutcomeStale
	}
	c.cancel = nil

	found := err == nil && env.Status == http.StatusOK && len(env.Data) > 0
	var items []ResultItem
	if found {
		items = make([]ResultItem, 0, len(env.Data))
		for _, candidate := range env.Data {
			items = append(items, NewResultItem(candidate, pc.String()))
		}
		c.items = items
		c.state = StateResultsShown
	} else {
		c.state = StateIdle
	}
	c.mu.Unlock()

	c.page.SetLoading(false)
	c.page.SetTriggerEnabled(true)

	switch {
	case err != nil:
		c.log.Warn("postcode lookup request failed", "error", err)
		c.notify(StateErrorNotified, transport.UnexpectedFailureMessage)
		return OutcomeError
	case found:
		c.page.ShowResults(items)
		return OutcomeResults
	case env.Status == http.StatusOK || env.Status == http.StatusNotFound:
		c.notify(StateNoResultsNotified, messageOr(env.Message, MsgNoMatches))
		return OutcomeNoResults
	default:
		c.notify(StateErrorNotified, messageOr(env.Message, MsgNoMatches))
		return OutcomeError
	}
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

// notify shows a message while the controller sits in a notified state,
// then settles back to idle.
func (c *Controller) notify(state State, message string) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	c.notifier.Notify(message)

	c.mu.Lock()
	if c.state == state {
		c.state = StateIdle
	}
	c.mu.Unlock()
}

// KeyPress handles a key in the postcode input. Enter triggers a lookup;
// the returned bool reports whether the key was consumed.
func (c *Controller) KeyPress(ctx context.Context, key string) (Outcome, bool) {
	if key != KeyEnter {
		return OutcomeIgnored, false
	}
	return c.Trigger(ctx), true
}

// Select copies the parts of the i-th result into their bound inputs.
// Parts without a binding or without an input are skipped.
func (c *Controller) Select(i int) bool {
	c.mu.Lock()
	if i < 0 || i >= len(c.items) {
		c.mu.Unlock()
		return false
	}
	item := c.items[i]
	c.items = nil
	c.state = StateIdle
	c.mu.Unlock()

	for part, value := range item.Values {
		id, ok := c.binding[part]
		if !ok {
			continue
		}
		c.page.SetInput(id, value)
	}

	c.page.HideResults()
	c.page.ShowAddressFields(true)
	return true
}

// ToggleManual switches between the search UI and the address fields.
// Switching to manual entry abandons an in-flight lookup.
func (c *Controller) ToggleManual() bool {
	c.mu.Lock()
	c.manual = !c.manual
	manual := c.manual
	if manual && c.state == StateLoading {
		c.generation++
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		c.state = StateIdle
	}
	c.mu.Unlock()

	if manual {
		c.page.SetLoading(false)
		c.page.SetTriggerEnabled(true)
		c.page.SetToggleLabel(ToggleToSearch)
	} else {
		c.page.SetToggleLabel(ToggleToManual)
	}
	c.page.ShowSearch(!manual)
	c.page.ShowAddressFields(manual)
	return manual
}
