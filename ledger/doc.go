// Package ledger defines the transaction view the validation units operate
// on: multi-asset values, single-consumption outputs, the script context
// presented per evaluation, and the shared resolution and rule machinery.
//
// Everything in this package is pure data plus deterministic helpers. The
// host ledger guarantees signature verification, record uniqueness, and
// atomic per-transaction evaluation; nothing here re-implements those.
package ledger
