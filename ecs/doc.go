// Package ecs provides ECS adapters for ripple's timeline notifications.
//
// The primary adapter is [Attach], which bridges a ScrollTimeline's segment
// events (started, completed, reverse-complete) into a [Donburi] world as
// typed events. Subscribe to [SegmentEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	page, _ := ripple.NewPage(ripple.DefaultConfig())
//	ecs.Attach(world, page.Timeline)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
