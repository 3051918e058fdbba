package referrer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/event"
	"github.com/lott3ry/libxbit-go/logger"
)

// Registry maps referrer addresses to fee ratios.
type Registry struct {
	store  Store
	events event.Sink
	log    *slog.Logger
}

// NewRegistry creates a registry over store. A nil events or log discards.
func NewRegistry(store Store, events event.Sink, log *slog.Logger) *Registry {
	if events == nil {
		events = event.Discard
	}
	return &Registry{store: store, events: events, log: logger.OrNop(log)}
}

// Register sets caller's own ratio, overwriting any earlier one.
// Ratios above MaxRatio fail with chain.ErrInvalidParameter.
func (r *Registry) Register(ctx context.Context, caller chain.Address, ratio uint32) error {
	if err := ValidateRatio(ratio); err != nil {
		return err
	}
	if caller.IsZero() {
		return fmt.Errorf("%w: zero address cannot register", chain.ErrInvalidParameter)
	}
	if err := r.store.PutRatio(caller, ratio); err != nil {
		return fmt.Errorf("referrer: put %s: %w", caller, err)
	}
	r.events.Emit(event.ReferrerRegistered{Referrer: caller, RatioPerMillion: ratio})
	r.log.InfoContext(ctx, "referrer registered", "referrer", caller, "ratio_ppm", ratio)
	return nil
}

// Ratio returns addr's ratio, 0 for unregistered and zero addresses.
func (r *Registry) Ratio(_ context.Context, addr chain.Address) (uint32, error) {
	if addr.IsZero() {
		return 0, nil
	}
	ratio, _, err := r.store.GetRatio(addr)
	if err != nil {
		return 0, fmt.Errorf("referrer: get %s: %w", addr, err)
	}
	return ratio, nil
}

// Entries lists every registered referrer ordered by address.
func (r *Registry) Entries(_ context.Context) ([]Entry, error) {
	return r.store.ListEntries()
}

// Export serializes every entry for backup.
func (r *Registry) Export(ctx context.Context) ([]byte, error) {
	entries, err := r.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return SerializeSnapshot(entries)
}

// Import restores entries from an Export snapshot without emitting events,
// and returns how many were written. Zero-address entries are skipped.
func (r *Registry) Import(ctx context.Context, data []byte) (int, error) {
	entries, err := DeserializeSnapshot(data)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.Address.IsZero() {
			continue
		}
		if err := r.store.PutRatio(e.Address, e.RatioPerMillion); err != nil {
			return n, fmt.Errorf("referrer: put %s: %w", e.Address, err)
		}
		n++
	}
	r.log.InfoContext(ctx, "referrer snapshot imported", "entries", n)
	return n, nil
}
