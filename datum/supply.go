package datum

import (
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// This file is the single source of the supply arithmetic. Both the
// project validator and the grey-token minting policy bound circulating
// supply through these functions; neither carries its own copy.

// ParticipationSum returns the sum of all stakeholder participations.
func ParticipationSum(d *ProjectDatum) int64 {
	var sum int64
	for _, sh := range d.Stakeholders {
		sum += sh.Participation
	}
	return sum
}

// PlannedSum returns the sum of all planned certification quantities.
func PlannedSum(d *ProjectDatum) int64 {
	var sum int64
	for _, c := range d.Certifications {
		sum += c.PlannedQty
	}
	return sum
}

// FreeMintAmount is the open-sale pool: the part of total supply not
// allocated to any stakeholder. It is mintable exactly once, on the
// StateInitialized to StateDistributed transition.
func FreeMintAmount(d *ProjectDatum) int64 {
	return d.Token.TotalSupply - ParticipationSum(d)
}

// MintedSoFar returns the supply already accounted as minted by the datum:
// the free-mint pool once the project is distributed, plus every claimed
// stakeholder participation.
//
// The grey-token policy derives its headroom from this; the project
// validator flips the claim flags that feed it. Agreement between the two
// is by construction.
func MintedSoFar(d *ProjectDatum) int64 {
	var sum int64
	if d.Params.State >= StateDistributed {
		sum = FreeMintAmount(d)
	}
	for _, sh := range d.Stakeholders {
		if sh.Claimed {
			sum += sh.Participation
		}
	}
	return sum
}

// Headroom returns the quantity still mintable under total supply.
func Headroom(d *ProjectDatum) int64 {
	return d.Token.TotalSupply - MintedSoFar(d)
}

// CheckInvariants enforces the static project-datum invariants:
//
//   - total supply and every participation are non-negative
//   - sum(participation) <= total supply
//   - sum(planned certification qty) == total supply
//   - actual certification fields are zero while state < certified, and
//     never exceed that period's planned quantity
//   - claim flags are unset while the project is initialized
//
// Transition rules (monotone state, pinned fields) live with the project
// validator; this checks a single datum in isolation.
func CheckInvariants(d *ProjectDatum) error {
	if !d.Params.State.Valid() {
		return ledger.NewError(ledger.KindStructural, "DATUM-STR-100",
			fmt.Sprintf("invalid project state %d", d.Params.State))
	}
	if d.Token.TotalSupply < 0 {
		return ledger.NewError(ledger.KindArithmetic, "DATUM-ARITH-101",
			fmt.Sprintf("total supply must be non-negative, got %d", d.Token.TotalSupply))
	}
	seen := make(map[string]bool, len(d.Stakeholders))
	for _, sh := range d.Stakeholders {
		if sh.Name == "" {
			return ledger.NewError(ledger.KindStructural, "DATUM-STR-102", "stakeholder name must be non-empty")
		}
		if seen[sh.Name] {
			return ledger.NewError(ledger.KindStructural, "DATUM-STR-103",
				fmt.Sprintf("duplicate stakeholder %q", sh.Name))
		}
		seen[sh.Name] = true
		if sh.Participation < 0 {
			return ledger.NewError(ledger.KindArithmetic, "DATUM-ARITH-104",
				fmt.Sprintf("stakeholder %q participation must be non-negative, got %d", sh.Name, sh.Participation))
		}
		if d.Params.State == StateInitialized && sh.Claimed {
			return ledger.NewError(ledger.KindImmutability, "DATUM-IMM-105",
				fmt.Sprintf("stakeholder %q claimed before distribution", sh.Name))
		}
	}
	if sum := ParticipationSum(d); sum > d.Token.TotalSupply {
		return ledger.NewError(ledger.KindArithmetic, "DATUM-ARITH-106",
			fmt.Sprintf("participation sum %d exceeds total supply %d", sum, d.Token.TotalSupply))
	}
	if sum := PlannedSum(d); sum != d.Token.TotalSupply {
		return ledger.NewError(ledger.KindArithmetic, "DATUM-ARITH-107",
			fmt.Sprintf("planned certification sum %d must equal total supply %d", sum, d.Token.TotalSupply))
	}
	for i, c := range d.Certifications {
		if c.PlannedQty < 0 {
			return ledger.NewError(ledger.KindArithmetic, "DATUM-ARITH-108",
				fmt.Sprintf("certification %d planned qty must be non-negative, got %d", i, c.PlannedQty))
		}
		if c.ActualQty < 0 || c.ActualDate < 0 {
			return ledger.NewError(ledger.KindArithmetic, "DATUM-ARITH-109",
				fmt.Sprintf("certification %d actual fields must be non-negative", i))
		}
		if d.Params.State < StateCertified && (c.ActualQty != 0 || c.ActualDate != 0) {
			return ledger.NewError(ledger.KindImmutability, "DATUM-IMM-110",
				fmt.Sprintf("certification %d actual fields must stay zero before certification", i))
		}
		if c.ActualQty > c.PlannedQty {
			return ledger.NewError(ledger.KindArithmetic, "DATUM-ARITH-111",
				fmt.Sprintf("certification %d actual qty %d exceeds planned qty %d", i, c.ActualQty, c.PlannedQty))
		}
	}
	return nil
}
