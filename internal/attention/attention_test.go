package attention

import (
	"testing"

	"github.com/edhor1608/Nexum/internal/restoreplan"
	"github.com/stretchr/testify/require"
)

func TestRouteCriticalFailureIsBlocking(t *testing.T) {
	routed := Route(Event{CapsuleID: "cp-1", Signal: restoreplan.SignalCriticalFailure, Summary: "build broke"})
	require.Equal(t, PriorityBlocking, routed.Priority)
	require.Equal(t, ChannelBannerAndSound, routed.Channel)
	require.True(t, routed.RequiresAck)
}

func TestRouteNeedsDecisionIsActive(t *testing.T) {
	routed := Route(Event{CapsuleID: "cp-2", Signal: restoreplan.SignalNeedsDecision})
	require.Equal(t, PriorityActive, routed.Priority)
	require.Equal(t, ChannelBanner, routed.Channel)
	require.True(t, routed.RequiresAck)
}

func TestRoutePassiveCompletionIsPassive(t *testing.T) {
	routed := Route(Event{CapsuleID: "cp-3", Signal: restoreplan.SignalPassiveCompletion})
	require.Equal(t, PriorityPassive, routed.Priority)
	require.Equal(t, ChannelFeed, routed.Channel)
	require.False(t, routed.RequiresAck)
}
