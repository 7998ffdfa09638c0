// Package image fetches Roon artwork over the Core's HTTP image
// service — a plain GET, not part of the MOO/1 WebSocket channel.
package image
