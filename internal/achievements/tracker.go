// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package achievements

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/andariego-ec/andariego/internal/logging"
	"github.com/andariego-ec/andariego/internal/metrics"
)

// milestones are the visit counts at which a site earns a recognition badge.
var milestones = map[uint64]string{
	1:   "first_visit",
	10:  "local_favorite",
	50:  "rising_destination",
	100: "must_see",
}

// visitKeyPrefix namespaces visit counters in Badger.
const visitKeyPrefix = "visits:"

// Tracker consumes visit events and persists per-site visit counters.
//
// Counter updates run inside Badger transactions, so concurrent events for
// the same site never lose increments; Badger retries conflicting
// transactions internally via the Update API.
type Tracker struct {
	db  *badger.DB
	sub message.Subscriber
}

// NewTracker opens the counter store. An empty path uses an in-memory Badger
// instance, useful for tests and ephemeral deployments.
func NewTracker(path string, sub message.Subscriber) (*Tracker, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open achievements store: %w", err)
	}

	return &Tracker{db: db, sub: sub}, nil
}

// Run consumes visit events until the context is canceled or the bus closes.
func (t *Tracker) Run(ctx context.Context) error {
	messages, err := t.sub.Subscribe(ctx, TopicSiteVisited)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicSiteVisited, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			t.handle(msg)
		}
	}
}

// handle applies one visit event. Malformed events are acked and dropped;
// storage failures nack so the bus redelivers.
func (t *Tracker) handle(msg *message.Message) {
	var event VisitEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("Malformed visit event dropped")
		metrics.VisitEventsConsumed.WithLabelValues("error").Inc()
		msg.Ack()
		return
	}

	count, err := t.increment(event.SiteID)
	if err != nil {
		logging.Error().Err(err).Int64("site_id", event.SiteID).Msg("Visit counter update failed")
		metrics.VisitEventsConsumed.WithLabelValues("error").Inc()
		msg.Nack()
		return
	}

	metrics.VisitEventsConsumed.WithLabelValues("ok").Inc()
	if badge, ok := milestones[count]; ok {
		logging.Info().
			Int64("site_id", event.SiteID).
			Str("site", event.SiteName).
			Uint64("visits", count).
			Str("badge", badge).
			Msg("Site reached visit milestone")
	}
	msg.Ack()
}

// increment bumps a site's visit counter and returns the new value.
func (t *Tracker) increment(siteID int64) (uint64, error) {
	var count uint64

	err := t.db.Update(func(txn *badger.Txn) error {
		key := visitKey(siteID)

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			count = 0
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				if len(val) == 8 {
					count = binary.BigEndian.Uint64(val)
				}
				return nil
			}); err != nil {
				return err
			}
		}

		count++
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, count)
		return txn.Set(key, buf)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// VisitCount reads a site's visit counter, 0 when never visited.
func (t *Tracker) VisitCount(siteID int64) (uint64, error) {
	var count uint64

	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(visitKey(siteID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 8 {
				count = binary.BigEndian.Uint64(val)
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Close releases the counter store.
func (t *Tracker) Close() error {
	return t.db.Close()
}

func visitKey(siteID int64) []byte {
	return fmt.Appendf(nil, "%s%d", visitKeyPrefix, siteID)
}
