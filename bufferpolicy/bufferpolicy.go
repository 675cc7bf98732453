// Package bufferpolicy implements buffer/redemption accounting: per
// certification period, the planned quantity is reconciled against the
// externally certified actual quantity. A shortfall is covered by burning
// an equal amount from the dedicated buffer stakeholder; a surplus is
// released from the buffer to an agreed subset of stakeholders.
//
// The release-split rule on surplus is deliberately NOT fixed by the
// protocol: it is a project-level configuration, modeled as a pluggable
// ReleasePolicy and optionally declared in a small text policy document
// (see Parse). EqualSplit is the illustrated example, nothing more.
//
// Reconciliation produces a plan of UpdateToken burns and releases; it is
// planning arithmetic for the transaction builder, not an on-chain unit.
package bufferpolicy

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// DefaultBufferName is the conventional name of the buffer stakeholder.
const DefaultBufferName = "Buffer"

// Disbursement credits one stakeholder with part of a released surplus.
type Disbursement struct {
	Stakeholder string
	Amount      int64
}

// ReleasePolicy decides how a surplus released from the buffer is split.
//
// Implementations MUST be deterministic and MUST disburse exactly the
// surplus they are given; Reconcile rejects anything else.
type ReleasePolicy func(surplus int64, d *datum.ProjectDatum) ([]Disbursement, error)

// Plan is the reconciliation outcome for one certification period.
//
// BufferDebit is the amount to burn from the buffer allocation (shortfall
// cover). Releases are the surplus disbursements. At most one side is
// non-zero.
type Plan struct {
	Period      int
	BufferDebit int64
	Releases    []Disbursement
}

// Reconcile compares one certification period's planned and actual
// quantities and returns the buffer plan.
//
// Requires a certified project. A shortfall larger than the buffer
// allocation is unrecoverable and rejected; so is a surplus larger than
// the buffer (nothing left to release it from).
func Reconcile(d *datum.ProjectDatum, period int, bufferName string, release ReleasePolicy) (*Plan, error) {
	if d.Params.State < datum.StateCertified {
		return nil, ledger.NewError(ledger.KindStructural, "BUF-STR-001",
			fmt.Sprintf("reconciliation requires a certified project, state is %s", d.Params.State))
	}
	if period < 0 || period >= len(d.Certifications) {
		return nil, ledger.NewError(ledger.KindStructural, "BUF-STR-002",
			fmt.Sprintf("no certification period %d", period))
	}
	if bufferName == "" {
		bufferName = DefaultBufferName
	}
	idx, status := datum.FindStakeholder(d, bufferName)
	if status != ledger.ResolutionFound {
		return nil, ledger.NewError(ledger.KindStructural, "BUF-STR-003",
			fmt.Sprintf("buffer stakeholder %q resolution: %s", bufferName, status))
	}
	buffer := d.Stakeholders[idx]

	c := d.Certifications[period]
	switch {
	case c.ActualQty < c.PlannedQty:
		shortfall := c.PlannedQty - c.ActualQty
		if shortfall > buffer.Participation {
			return nil, ledger.NewError(ledger.KindArithmetic, "BUF-ARITH-004",
				fmt.Sprintf("shortfall %d exceeds buffer allocation %d", shortfall, buffer.Participation))
		}
		return &Plan{Period: period, BufferDebit: shortfall}, nil

	case c.ActualQty > c.PlannedQty:
		surplus := c.ActualQty - c.PlannedQty
		if surplus > buffer.Participation {
			return nil, ledger.NewError(ledger.KindArithmetic, "BUF-ARITH-005",
				fmt.Sprintf("surplus %d exceeds buffer allocation %d", surplus, buffer.Participation))
		}
		if release == nil {
			return nil, ledger.NewError(ledger.KindStructural, "BUF-STR-006",
				"surplus release requires a configured release policy")
		}
		releases, err := release(surplus, d)
		if err != nil {
			return nil, err
		}
		if err := checkReleases(d, bufferName, surplus, releases); err != nil {
			return nil, err
		}
		return &Plan{Period: period, Releases: releases}, nil

	default:
		return &Plan{Period: period}, nil
	}
}

func checkReleases(d *datum.ProjectDatum, bufferName string, surplus int64, releases []Disbursement) error {
	var sum int64
	for _, r := range releases {
		if r.Amount <= 0 {
			return ledger.NewError(ledger.KindArithmetic, "BUF-ARITH-007",
				fmt.Sprintf("release to %q must be positive, got %d", r.Stakeholder, r.Amount))
		}
		if r.Stakeholder == bufferName {
			return ledger.NewError(ledger.KindStructural, "BUF-STR-008",
				"buffer may not release to itself")
		}
		if _, status := datum.FindStakeholder(d, r.Stakeholder); status != ledger.ResolutionFound {
			return ledger.NewError(ledger.KindStructural, "BUF-STR-009",
				fmt.Sprintf("release names unknown stakeholder %q", r.Stakeholder))
		}
		sum += r.Amount
	}
	if sum != surplus {
		return ledger.NewError(ledger.KindArithmetic, "BUF-ARITH-010",
			fmt.Sprintf("releases sum to %d, surplus is %d", sum, surplus))
	}
	return nil
}

// EqualSplit returns the illustrated example policy: the surplus is split
// equally between the named roles, any remainder going to the earlier
// names in the list.
func EqualSplit(roles ...string) ReleasePolicy {
	return func(surplus int64, d *datum.ProjectDatum) ([]Disbursement, error) {
		if len(roles) == 0 {
			return nil, ledger.NewError(ledger.KindStructural, "BUF-STR-011", "equal split needs at least one role")
		}
		n := int64(len(roles))
		share := surplus / n
		rem := surplus % n
		out := make([]Disbursement, 0, len(roles))
		for i, role := range roles {
			amt := share
			if int64(i) < rem {
				amt++
			}
			if amt == 0 {
				continue
			}
			out = append(out, Disbursement{Stakeholder: role, Amount: amt})
		}
		return out, nil
	}
}

// WeightedSplit splits the surplus proportionally to integer weights using
// deterministic largest-remainder allocation: remainders are handed out by
// descending remainder, ties broken by declaration order.
func WeightedSplit(splits []Split) ReleasePolicy {
	return func(surplus int64, d *datum.ProjectDatum) ([]Disbursement, error) {
		if len(splits) == 0 {
			return nil, ledger.NewError(ledger.KindStructural, "BUF-STR-012", "weighted split needs at least one role")
		}
		var total int64
		for _, s := range splits {
			if s.Weight <= 0 {
				return nil, ledger.NewError(ledger.KindArithmetic, "BUF-ARITH-013",
					fmt.Sprintf("weight of %q must be positive, got %d", s.Role, s.Weight))
			}
			total += s.Weight
		}

		type alloc struct {
			idx  int
			amt  int64
			frac int64
		}
		allocs := make([]alloc, len(splits))
		var assigned int64
		bigTotal := big.NewInt(total)
		for i, s := range splits {
			// surplus*weight can exceed int64; the quotient and remainder
			// are bounded by surplus and total, so they fit.
			exact := new(big.Int).Mul(big.NewInt(surplus), big.NewInt(s.Weight))
			quo, rem := new(big.Int).QuoRem(exact, bigTotal, new(big.Int))
			allocs[i] = alloc{idx: i, amt: quo.Int64(), frac: rem.Int64()}
			assigned += allocs[i].amt
		}
		rest := surplus - assigned
		order := make([]alloc, len(allocs))
		copy(order, allocs)
		sort.SliceStable(order, func(a, b int) bool { return order[a].frac > order[b].frac })
		for i := int64(0); i < rest; i++ {
			allocs[order[i].idx].amt++
		}

		out := make([]Disbursement, 0, len(splits))
		for i, s := range splits {
			if allocs[i].amt == 0 {
				continue
			}
			out = append(out, Disbursement{Stakeholder: s.Role, Amount: allocs[i].amt})
		}
		return out, nil
	}
}
