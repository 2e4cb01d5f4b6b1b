// Package events provides the listener registry used to fan inbound
// protocol events out to internal consumers and external subscribers.
package events
