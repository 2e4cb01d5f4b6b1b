// Package api provides the REST client for the conversation service's
// management surface: conversations, participants, invite links, and
// message history. Listings use opaque cursor pagination; an empty
// cursor means the listing is exhausted.
package api
