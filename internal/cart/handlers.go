package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/bandar-cart/internal/common"
	"github.com/noah-isme/bandar-cart/internal/i18n"
	"github.com/noah-isme/bandar-cart/internal/pricing"
	"github.com/noah-isme/bandar-cart/internal/session"
)

// Handler wires the session stores to HTTP.
type Handler struct {
	Registry *Registry
}

// State is the JSON body returned by every cart endpoint.
type State struct {
	Items    []LineItem      `json:"items"`
	Summary  pricing.Summary `json:"summary"`
	Currency string          `json:"currency"`
	View     View            `json:"view"`
	Change   *Change         `json:"change,omitempty"`
}

func stateOf(s *Store, change *Change) State {
	if change != nil {
		c := *change
		c.Items = nil
		change = &c
	}
	st := s.State()
	return State{
		Items:    st.Items,
		Summary:  st.Summary,
		Currency: s.Currency(),
		View:     st.View,
		Change:   change,
	}
}

// HTTPError maps store errors onto API errors with a localized message.
func HTTPError(err error, lang i18n.Language) error {
	msgs := i18n.For(lang)
	switch {
	case errors.Is(err, ErrInvalidProduct):
		return common.NewAppError("INVALID_PRODUCT", msgs.InvalidProduct, http.StatusUnprocessableEntity, err).
			WithDetails(map[string]string{"reason": err.Error()})
	case errors.Is(err, ErrEmptyCart):
		return &common.AppError{Code: "EMPTY_CART", Message: msgs.EmptyCheckout, HTTPStatus: http.StatusConflict, Err: err}
	case common.IsAppError(err):
		return err
	default:
		return &common.AppError{Code: "STORAGE_UNAVAILABLE", Message: "cart storage unavailable", HTTPStatus: http.StatusServiceUnavailable, Err: err}
	}
}

// Open resolves the request's session store and applies the requested language.
func (h *Handler) Open(r *http.Request) (*Store, error) {
	if h.Registry == nil {
		return nil, common.NewAppError("INTERNAL", "cart registry not configured", http.StatusInternalServerError, nil)
	}
	id, ok := session.FromContext(r.Context())
	if !ok {
		return nil, common.NewAppError("SESSION_REQUIRED", "cart session missing", http.StatusBadRequest, nil)
	}
	store, err := h.Registry.Open(r.Context(), id)
	if err != nil {
		return nil, err
	}
	store.SetLanguage(i18n.FromRequest(r, store.Language()))
	return store, nil
}

// Get returns the items, totals and rendered view of the session cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	store, err := h.Open(r)
	if err != nil {
		common.WriteError(w, HTTPError(err, i18n.FromRequest(r, i18n.Arabic)))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": stateOf(store, nil)})
}

// AddItem merges a product into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.Open(r)
	if err != nil {
		common.WriteError(w, HTTPError(err, i18n.FromRequest(r, i18n.Arabic)))
		return
	}
	var candidate Candidate
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&candidate); err != nil {
		common.WriteError(w, HTTPError(ErrInvalidProduct, store.Language()))
		return
	}
	change, err := store.AddItem(r.Context(), candidate)
	if err != nil {
		common.WriteError(w, HTTPError(err, store.Language()))
		return
	}
	status := http.StatusOK
	if change.Kind == ChangeItemAdded {
		status = http.StatusCreated
	}
	common.JSON(w, status, map[string]any{"data": stateOf(store, &change)})
}

// RemoveItem deletes a line. Unknown ids answer with the unchanged cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.Open(r)
	if err != nil {
		common.WriteError(w, HTTPError(err, i18n.FromRequest(r, i18n.Arabic)))
		return
	}
	change, err := store.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, HTTPError(err, store.Language()))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": stateOf(store, &change)})
}

// UpdateItem applies a signed quantity delta to a line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.Open(r)
	if err != nil {
		common.WriteError(w, HTTPError(err, i18n.FromRequest(r, i18n.Arabic)))
		return
	}
	var payload struct {
		Delta *int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Delta == nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "delta is required", nil)
		return
	}
	change, err := store.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *payload.Delta)
	if err != nil {
		common.WriteError(w, HTTPError(err, store.Language()))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": stateOf(store, &change)})
}
