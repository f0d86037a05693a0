// Package checkout hands a cart snapshot to the channel that completes the order.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/noah-isme/bandar-cart/internal/cart"
	"github.com/noah-isme/bandar-cart/internal/session"
	"github.com/noah-isme/bandar-cart/internal/storage"
)

const (
	ChannelRedirect = "redirect"
	ChannelMessage  = "message"

	// DefaultSnapshotKey is the transient slot the redirect channel writes to.
	DefaultSnapshotKey = "checkoutData"
	// DefaultRedirectURL is the page that finishes a redirect checkout.
	DefaultRedirectURL = "checkout.html"
	// DefaultMessageBaseURL is the deep link prefix of MessageLink.
	DefaultMessageBaseURL = "https://wa.me/"
)

// ErrNoSnapshot is returned when no checkout snapshot is pending for a session.
var ErrNoSnapshot = errors.New("checkout: no pending snapshot")

// Result describes where the shopper goes next.
type Result struct {
	Channel     string        `json:"channel"`
	RedirectURL string        `json:"redirectUrl"`
	Message     string        `json:"message,omitempty"`
	Snapshot    cart.Snapshot `json:"snapshot"`
}

// Handoff delivers a snapshot to an external checkout channel.
type Handoff interface {
	Channel() string
	Handoff(ctx context.Context, snap cart.Snapshot) (Result, error)
}

// SessionRedirect stores the snapshot in a transient per-session slot and
// points the shopper at the checkout page that reads it back.
type SessionRedirect struct {
	Slot storage.Slot
	Key  string
	URL  string
}

// Channel reports ChannelRedirect.
func (h *SessionRedirect) Channel() string { return ChannelRedirect }

func (h *SessionRedirect) key(sessionID string) string {
	key := h.Key
	if key == "" {
		key = DefaultSnapshotKey
	}
	return session.PrefixKey(sessionID, key)
}

// Handoff saves snap under the session's checkout key and returns the
// checkout page URL.
func (h *SessionRedirect) Handoff(ctx context.Context, snap cart.Snapshot) (Result, error) {
	if h.Slot == nil {
		return Result{}, errors.New("checkout: redirect slot not configured")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return Result{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := h.Slot.Save(ctx, h.key(snap.Session), data); err != nil {
		return Result{}, fmt.Errorf("store snapshot: %w", err)
	}
	target := h.URL
	if target == "" {
		target = DefaultRedirectURL
	}
	return Result{Channel: ChannelRedirect, RedirectURL: target, Snapshot: snap}, nil
}

// Load returns the pending snapshot of sessionID.
func (h *SessionRedirect) Load(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	if h.Slot == nil {
		return cart.Snapshot{}, ErrNoSnapshot
	}
	data, err := h.Slot.Load(ctx, h.key(sessionID))
	if errors.Is(err, storage.ErrNotFound) {
		return cart.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return cart.Snapshot{}, err
	}
	var snap cart.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return cart.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// MessageLink renders the order as text and returns a chat deep link
// addressed to Phone.
type MessageLink struct {
	Phone   string
	BaseURL string
}

// Channel reports ChannelMessage.
func (h *MessageLink) Channel() string { return ChannelMessage }

// Handoff formats snap as an order message and returns the deep link that
// opens a chat with Phone prefilled with it.
func (h *MessageLink) Handoff(_ context.Context, snap cart.Snapshot) (Result, error) {
	phone := digits(h.Phone)
	if phone == "" {
		return Result{}, errors.New("checkout: message phone not configured")
	}
	base := h.BaseURL
	if base == "" {
		base = DefaultMessageBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	text := FormatOrderMessage(snap)
	link := base + phone + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return Result{Channel: ChannelMessage, RedirectURL: link, Message: text, Snapshot: snap}, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
