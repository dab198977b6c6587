package integration

import (
	"fmt"
	"time"
)

// Status is the dispatch state of a channel or action
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusIdle, StatusLoading, StatusSuccess, StatusError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for success and error
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// CanTransitionTo reports whether the state machine allows moving to next
func (s Status) CanTransitionTo(next Status) bool {
	switch next {
	case StatusLoading:
		return s == StatusIdle || s.IsTerminal()
	case StatusSuccess, StatusError:
		return s == StatusLoading
	default:
		return false
	}
}

// ChannelStatus is one status entry. Entries are replaced whole, never edited.
type ChannelStatus struct {
	Channel   Channel   `json:"channel"`
	Action    Action    `json:"action,omitempty"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusBoard is an immutable snapshot of channel and action statuses.
// Transition methods return a new board and leave the receiver untouched.
type StatusBoard struct {
	channels map[Channel]ChannelStatus
	actions  map[Action]ChannelStatus
}

// NewStatusBoard creates a board with every channel and action idle
func NewStatusBoard(now time.Time) StatusBoard {
	b := StatusBoard{
		channels: make(map[Channel]ChannelStatus, len(AllChannels())),
		actions:  make(map[Action]ChannelStatus, len(AllActions())),
	}
	for _, ch := range AllChannels() {
		b.channels[ch] = ChannelStatus{Channel: ch, Status: StatusIdle, UpdatedAt: now}
	}
	for _, a := range AllActions() {
		b.actions[a] = ChannelStatus{Channel: a.Channel(), Action: a, Status: StatusIdle, UpdatedAt: now}
	}
	return b
}

// Channel returns the latest status reported on a channel
func (b StatusBoard) Channel(ch Channel) ChannelStatus {
	if cs, ok := b.channels[ch]; ok {
		return cs
	}
	return ChannelStatus{Channel: ch, Status: StatusIdle}
}

// Action returns the status of one action
func (b StatusBoard) Action(a Action) ChannelStatus {
	if cs, ok := b.actions[a]; ok {
		return cs
	}
	return ChannelStatus{Channel: a.Channel(), Action: a, Status: StatusIdle}
}

// InFlight reports whether the action is loading
func (b StatusBoard) InFlight(a Action) bool {
	return b.Action(a).Status == StatusLoading
}

// Channels returns the channel statuses in display order
func (b StatusBoard) Channels() []ChannelStatus {
	out := make([]ChannelStatus, 0, len(b.channels))
	for _, ch := range AllChannels() {
		out = append(out, b.Channel(ch))
	}
	return out
}

// Actions returns the action statuses in display order
func (b StatusBoard) Actions() []ChannelStatus {
	out := make([]ChannelStatus, 0, len(b.actions))
	for _, a := range AllActions() {
		out = append(out, b.Action(a))
	}
	return out
}

// Begin moves an action to loading. It fails with ErrDispatchInProgress when
// the action is already loading.
func (b StatusBoard) Begin(a Action, message string, now time.Time) (StatusBoard, ChannelStatus, error) {
	return b.transition(a, StatusLoading, message, now)
}

// Complete moves a loading action to success or error
func (b StatusBoard) Complete(a Action, next Status, message string, now time.Time) (StatusBoard, ChannelStatus, error) {
	if !next.IsTerminal() {
		return b, ChannelStatus{}, fmt.Errorf("%w: %s is not a terminal status", ErrInvalidTransition, next)
	}
	return b.transition(a, next, message, now)
}

func (b StatusBoard) transition(a Action, next Status, message string, now time.Time) (StatusBoard, ChannelStatus, error) {
	if !a.IsValid() {
		return b, ChannelStatus{}, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a)
	}
	current := b.Action(a)
	if !current.Status.CanTransitionTo(next) {
		if next == StatusLoading && current.Status == StatusLoading {
			return b, ChannelStatus{}, ErrDispatchInProgress
		}
		return b, ChannelStatus{}, fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, current.Status, next, a)
	}

	entry := ChannelStatus{
		Channel:   a.Channel(),
		Action:    a,
		Status:    next,
		Message:   message,
		UpdatedAt: now,
	}
	nb := b.clone()
	nb.actions[a] = entry
	nb.channels[entry.Channel] = entry
	return nb, entry, nil
}

func (b StatusBoard) clone() StatusBoard {
	nb := StatusBoard{
		channels: make(map[Channel]ChannelStatus, len(b.channels)),
		actions:  make(map[Action]ChannelStatus, len(b.actions)),
	}
	for k, v := range b.channels {
		nb.channels[k] = v
	}
	for k, v := range b.actions {
		nb.actions[k] = v
	}
	return nb
}
