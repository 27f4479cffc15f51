// Package store provides the single persistent address space that all
// ledger tables live in.
//
// The address space is one SQLite database file. It is carved into
// regions identified by a small SegmentID:
//
//	regions(segment_id, key, value)  PRIMARY KEY (segment_id, key)
//
// Because segment_id leads the primary key, two segments can never
// overlap, and every region grows independently of the others. Keys are
// opaque byte strings compared with memcmp, so callers that encode
// integers big-endian get numeric ordering for free.
//
// # Segment registry
//
// Each segment id is registered under a name in the segments table. The
// mapping is permanent: re-opening an image with a different layout
// fails with ErrSegmentMismatch instead of silently reading another
// table's bytes. Writes into an unregistered segment are rejected by a
// foreign key.
//
// # Cells
//
// A Cell is a single 8-byte integer stored at key 0 of a region. The
// identifier counter is a Cell.
//
// # Database Configuration
//
//   - WAL mode: readers do not block the writer
//   - synchronous=FULL: a committed counter increment survives power loss
//   - busy_timeout: configurable, 5000ms by default
//   - foreign_keys=ON: region rows must name a registered segment
package store
