package datum

import (
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// Bounds on the protocol datum. A protocol record carrying more than these
// is rejected outright; there is no soft limit.
const (
	MaxAdminKeys = 10
	MaxProjects  = 10
)

// ProtocolDatum is the protocol-wide configuration: fee, oracle reference,
// the authorized-project list, and the admin keys gating project creation.
//
// Created once by the protocol authorization pairing; mutated only via
// UpdateProtocol; destroyed only via EndProtocol.
type ProtocolDatum struct {
	_         struct{} `cbor:",toarray"`
	AdminKeys []ledger.KeyHash
	Fee       int64
	OracleID  []byte
	Projects  [][]byte
}

// Validate enforces the static protocol-datum bounds: fee >= 0, the
// admin/project list caps, and admin keys forming a set. No field is
// otherwise pinned; fee, oracle id, and the lists may change freely
// within these bounds.
func (d *ProtocolDatum) Validate() error {
	if d.Fee < 0 {
		return ledger.NewError(ledger.KindArithmetic, "DATUM-ARITH-001",
			fmt.Sprintf("protocol fee must be non-negative, got %d", d.Fee))
	}
	if len(d.AdminKeys) > MaxAdminKeys {
		return ledger.NewError(ledger.KindStructural, "DATUM-STR-002",
			fmt.Sprintf("at most %d admin keys, got %d", MaxAdminKeys, len(d.AdminKeys)))
	}
	if len(d.Projects) > MaxProjects {
		return ledger.NewError(ledger.KindStructural, "DATUM-STR-003",
			fmt.Sprintf("at most %d projects, got %d", MaxProjects, len(d.Projects)))
	}
	seen := make(map[ledger.KeyHash]struct{}, len(d.AdminKeys))
	for _, k := range d.AdminKeys {
		if _, ok := seen[k]; ok {
			return ledger.NewError(ledger.KindStructural, "DATUM-STR-004",
				fmt.Sprintf("duplicate admin key %s", k))
		}
		seen[k] = struct{}{}
	}
	return nil
}

// IsAdmin reports whether kh is one of the protocol admin keys.
func (d *ProtocolDatum) IsAdmin(kh ledger.KeyHash) bool {
	for _, k := range d.AdminKeys {
		if k == kh {
			return true
		}
	}
	return false
}
