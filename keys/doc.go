// Package keys provides the wallet-key helpers used around the validation
// core: signing suites, key hashing, and local key management.
//
// Stable (SemVer-protected):
//   - Pure, deterministic primitives: wallet-key formatting, key hashing,
//     role-seed derivation, signing and verification.
//
// Experimental:
//   - Filesystem-backed key storage (KeyStore and related functions).
//     These are local-first utilities for operators and tests, not part of
//     the long-term protocol contract.
//
// The validation core itself never verifies signatures; the host ledger
// does. These helpers exist for the off-chain side: constructing
// transactions, running the ledger simulator, and operating the CLI.
package keys
