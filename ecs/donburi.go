// Package ecs provides ECS adapters for ripple.
package ecs

import (
	"github.com/phanxgames/ripple"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SegmentEventType is the Donburi event type for timeline segment crossings.
// Subscribe to this in your ECS systems to react when the scroll passes a
// segment's start or end.
var SegmentEventType = events.NewEventType[ripple.SegmentEvent]()

// NewDonburiSink returns a ScrollTimeline.OnSegment callback that publishes
// every event to SegmentEventType on world. Events are queued until
// SegmentEventType.ProcessEvents runs.
func NewDonburiSink(world donburi.World) func(ripple.SegmentEvent) {
	return func(ev ripple.SegmentEvent) {
		SegmentEventType.Publish(world, ev)
	}
}

// Attach routes st's segment events into world. An OnSegment callback
// already set on st keeps running, before the publish.
func Attach(world donburi.World, st *ripple.ScrollTimeline) {
	sink := NewDonburiSink(world)
	prev := st.OnSegment
	if prev == nil {
		st.OnSegment = sink
		return
	}
	st.OnSegment = func(ev ripple.SegmentEvent) {
		prev(ev)
		sink(ev)
	}
}
