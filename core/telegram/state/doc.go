// Package state keeps per-user conversation sessions between updates.
//
// A Session names the active wizard and carries its JSON-encoded flow.
// Stores evict idle sessions on their own: the memory store through a TTL
// cache and the Redis store through key expiry.
package state
