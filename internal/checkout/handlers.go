package checkout

import (
	"errors"
	"net/http"

	"github.com/noah-isme/bandar-cart/internal/cart"
	"github.com/noah-isme/bandar-cart/internal/common"
	"github.com/noah-isme/bandar-cart/internal/i18n"
	"github.com/noah-isme/bandar-cart/internal/session"
)

// Handler exposes checkout over HTTP.
type Handler struct {
	Carts    *cart.Handler
	Svc      *Service
	Redirect *SessionRedirect
}

// Checkout snapshots the session cart and hands it to the configured channel.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil || h.Carts == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	store, err := h.Carts.Open(r)
	if err != nil {
		common.WriteError(w, cart.HTTPError(err, i18n.FromRequest(r, i18n.Arabic)))
		return
	}
	result, err := h.Svc.Checkout(r.Context(), store)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			common.WriteError(w, cart.HTTPError(err, store.Language()))
			return
		}
		common.JSONError(w, http.StatusBadGateway, "CHECKOUT_FAILED", "unable to hand off checkout", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Snapshot returns the pending snapshot written by the redirect channel.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "SESSION_REQUIRED", "cart session missing", nil)
		return
	}
	if h.Redirect == nil {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "no pending checkout", nil)
		return
	}
	snap, err := h.Redirect.Load(r.Context(), id)
	if errors.Is(err, ErrNoSnapshot) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "no pending checkout", nil)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "checkout storage unavailable", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}
