// Package attention routes a restore signal to a desktop notification
// priority, channel, and acknowledgement requirement.
package attention

import "github.com/edhor1608/Nexum/internal/restoreplan"

// Priority is how urgently a routed attention event demands the user's focus.
type Priority string

const (
	PriorityBlocking Priority = "blocking"
	PriorityActive   Priority = "active"
	PriorityPassive  Priority = "passive"
)

// Channel is where a routed attention event surfaces.
type Channel string

const (
	ChannelBannerAndSound Channel = "banner_and_sound"
	ChannelBanner         Channel = "banner"
	ChannelFeed           Channel = "feed"
)

// Event is an unrouted attention signal from one capsule.
type Event struct {
	CapsuleID string             `json:"capsule_id"`
	Signal    restoreplan.Signal `json:"signal"`
	Summary   string             `json:"summary"`
}

// Routed is the policy's decision for one Event.
type Routed struct {
	CapsuleID   string   `json:"capsule_id"`
	Priority    Priority `json:"priority"`
	Channel     Channel  `json:"channel"`
	RequiresAck bool     `json:"requires_ack"`
	Summary     string   `json:"summary"`
}

// Route maps event.Signal to a priority, channel, and acknowledgement
// requirement. Critical failures block and demand a sound; decisions
// need a banner and an ack; passive completions land quietly in a feed.
func Route(event Event) Routed {
	var priority Priority
	var channel Channel
	var requiresAck bool

	switch event.Signal {
	case restoreplan.SignalCriticalFailure:
		priority, channel, requiresAck = PriorityBlocking, ChannelBannerAndSound, true
	case restoreplan.SignalNeedsDecision:
		priority, channel, requiresAck = PriorityActive, ChannelBanner, true
	case restoreplan.SignalPassiveCompletion:
		priority, channel, requiresAck = PriorityPassive, ChannelFeed, false
	}

	return Routed{
		CapsuleID:   event.CapsuleID,
		Priority:    priority,
		Channel:     channel,
		RequiresAck: requiresAck,
		Summary:     event.Summary,
	}
}
