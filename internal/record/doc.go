// Package record defines the four ledger entities and their bounded
// binary encoding.
//
// Every record encodes to the layout
//
//	[kind:1][version:1][fields...][murmur3:4]
//
// Text fields are a uvarint length followed by the raw bytes. Integer
// fields are 8 bytes big-endian. The trailing checksum is murmur3-32
// over everything before it.
//
// Encoding never fails. Decoding fails with ErrCorruptRecord when the
// bytes were not produced by the same entity's codec. Each codec
// declares a MaxSize ceiling; the table layer refuses to persist an
// encoding above it (ErrRecordTooLarge).
package record
