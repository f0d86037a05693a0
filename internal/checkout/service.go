package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/bandar-cart/internal/cart"
	"github.com/noah-isme/bandar-cart/internal/events"
	"github.com/noah-isme/bandar-cart/internal/obs"
)

var tracer = otel.Tracer("checkout")

// SnapshotSource is anything that can produce a checkout snapshot.
type SnapshotSource interface {
	BuildCheckoutSnapshot(ctx context.Context) (cart.Snapshot, error)
}

// Service builds the snapshot of a cart and passes it to the configured Handoff.
type Service struct {
	handoff Handoff
	events  *events.Bus
	logger  zerolog.Logger
}

// NewService wires a checkout service. bus and logger may be nil.
func NewService(handoff Handoff, bus *events.Bus, logger *zerolog.Logger) *Service {
	svc := &Service{handoff: handoff, events: bus, logger: zerolog.Nop()}
	if logger != nil {
		svc.logger = *logger
	}
	return svc
}

// Channel names the configured hand-off channel.
func (s *Service) Channel() string {
	if s.handoff == nil {
		return ""
	}
	return s.handoff.Channel()
}

// Checkout snapshots src and hands it off. The cart itself is left intact.
func (s *Service) Checkout(ctx context.Context, src SnapshotSource) (Result, error) {
	if s.handoff == nil {
		return Result{}, errors.New("checkout: handoff not configured")
	}
	channel := s.handoff.Channel()
	ctx, span := tracer.Start(ctx, "checkout.handoff")
	defer span.End()
	span.SetAttributes(attribute.String("checkout.channel", channel))

	snap, err := src.BuildCheckoutSnapshot(ctx)
	if errors.Is(err, cart.ErrEmptyCart) {
		record(channel, "empty")
		return Result{}, err
	}
	if err != nil {
		record(channel, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("build snapshot: %w", err)
	}

	result, err := s.handoff.Handoff(ctx, snap)
	if err != nil {
		record(channel, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error().Err(err).Str("channel", channel).Str("snapshot_id", snap.ID).Msg("checkout handoff failed")
		return Result{}, err
	}
	record(channel, "ok")

	if s.events != nil {
		payload := map[string]any{
			"snapshotId": snap.ID,
			"channel":    channel,
			"itemCount":  snap.ItemCount,
			"total":      snap.Total,
			"currency":   snap.Currency,
		}
		if _, err := s.events.Emit(ctx, events.TopicCheckoutHandoff, snap.Session, payload); err != nil {
			s.logger.Warn().Err(err).Str("snapshot_id", snap.ID).Msg("emit checkout event")
		}
	}
	s.logger.Info().
		Str("channel", channel).
		Str("snapshot_id", snap.ID).
		Int("item_count", snap.ItemCount).
		Str("total", snap.Total.String()).
		Msg("checkout handed off")
	return result, nil
}

func record(channel, result string) {
	if obs.CheckoutHandoffsTotal != nil {
		obs.CheckoutHandoffsTotal.WithLabelValues(channel, result).Inc()
	}
}
