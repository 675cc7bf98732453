// Package datum defines the structured payloads attached to protocol and
// project state records, their deterministic CBOR encoding, and the shared
// supply arithmetic both the project validator and the grey-token minting
// policy are bound by.
//
// The supply arithmetic lives here, in one pure module, precisely so the
// two units cannot drift: both compute headroom from the same functions.
package datum
