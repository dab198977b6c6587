package integration

import (
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateTypeIntegration = "Integration"

	EventTypeChannelStatusChanged = "ChannelStatusChanged"
)

var channelNamespace = uuid.MustParse("1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed")

// ChannelAggregateID returns the fixed aggregate id of a channel
func ChannelAggregateID(ch Channel) uuid.UUID {
	return uuid.NewSHA1(channelNamespace, []byte(ch))
}

// ChannelStatusChangedEvent is raised on every status transition
type ChannelStatusChangedEvent struct {
	shared.BaseDomainEvent
	Previous Status        `json:"previous"`
	Current  ChannelStatus `json:"current"`
}

// NewChannelStatusChangedEvent creates a ChannelStatusChangedEvent
func NewChannelStatusChangedEvent(previous Status, current ChannelStatus) *ChannelStatusChangedEvent {
	return &ChannelStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeChannelStatusChanged,
			AggregateTypeIntegration,
			ChannelAggregateID(current.Channel),
		),
		Previous: previous,
		Current:  current,
	}
}
