// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/andariego-ec/andariego/internal/logging"
	"github.com/andariego-ec/andariego/internal/metrics"
)

// NewBus creates the in-process pub/sub channel shared by the publisher and
// the tracker.
func NewBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 64,
		},
		logging.NewWatermillAdapter(),
	)
}

// Publisher emits visit events. It satisfies the engine's VisitPublisher
// interface.
type Publisher struct {
	pub message.Publisher
}

// NewPublisher wraps a bus publisher.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

// PublishVisit emits one visit event for a confirmed identification.
func (p *Publisher) PublishVisit(ctx context.Context, siteID int64, siteName string) error {
	event := VisitEvent{
		SiteID:     siteID,
		SiteName:   siteName,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal visit event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.pub.Publish(TopicSiteVisited, msg); err != nil {
		return fmt.Errorf("publish visit event: %w", err)
	}

	metrics.VisitEventsPublished.Inc()
	return nil
}
