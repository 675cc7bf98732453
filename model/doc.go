// Package model defines stable boundary types for API layers.
//
// On-chain identity (canonical datum bytes and their CIDs) is unaffected
// by any projection. These structs are the only types intended for direct
// JSON serialization by consumers; everything else in the repo is a Go
// API.
package model
