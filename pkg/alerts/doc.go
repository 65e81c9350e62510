/*
Package alerts implements the in-memory alert lifecycle with
fingerprint-based deduplication.

An alert is identified by its fingerprint (service + condition). At most
one open alert exists per fingerprint at any time: sweeping the same
detector candidates repeatedly opens each alert once, no matter how many
cycles the underlying condition persists for.

# Lifecycle

	candidate ──► open ──► acknowledged
	     │          │
	     └── dup ───┘  (same fingerprint already open: ignored)

Acknowledging an alert closes it and releases its fingerprint, so the
same condition detected later opens a fresh alert with a new ID. Under
concurrent acknowledgment of the same alert exactly one caller wins;
the rest get ErrNotFound.

All state lives in memory under a single mutex. Persistence of opened
and acknowledged alerts is the caller's concern.
*/
package alerts
