// Moderation decision-and-sanction pipeline for chat messages.
//
// This package (`github.com/chatwarden/warden/moderation`) classifies each inbound message for policy violations, maintains a persistent per-user reputation ("rating"), and enforces escalating, time-bounded consequences: message removal, a warning notice, a temporary mute, and automatic unmute with partial rating restoration. Classification backends (a lexical blocklist and judge-backed AI providers) sit behind one Classifier capability; persistence sits behind a plain get/put user store; the chat platform sits behind a gateway interface.
//
// See `cmd/warden` for a daemon built on this package.
package moderation
