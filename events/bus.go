// Package events defines the out-of-scope event bus collaborator the
// driver registry, tick engine, and metric reactor all publish onto.
package events

// Bus is a minimal named pub/sub interface. Payloads are plain strings,
// either empty or a short human-readable body.
type Bus interface {
	Publish(name string, payload string)
	Subscribe(name string, fn func(payload string)) (unsubscribe func())
}
