// Package projectstate implements the project state validator: the unit
// owning one project's configuration, token economics, stakeholder claim
// ledger, and certification schedule.
//
// The validator reads protocol state but never mutates it; the only record
// it progresses is its own.
package projectstate

import (
	"bytes"
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// Redeemer is the closed set of actions this validator accepts.
type Redeemer interface{ isProjectRedeemer() }

// UpdateProject progresses the project record under the state-dependent
// update policy: free (invariant-bounded) while initialized, pinned to
// state/re-keying/certification-actuals afterwards.
type UpdateProject struct{}

// UpdateToken progresses the project record through a stakeholder claim:
// the grey tokens for exactly one stakeholder's participation are minted
// (claim) or burned (draw-down) in the same transaction.
type UpdateToken struct {
	Stakeholder string
}

// EndProject terminates the project record.
type EndProject struct{}

func (UpdateProject) isProjectRedeemer() {}
func (UpdateToken) isProjectRedeemer()   {}
func (EndProject) isProjectRedeemer()    {}

// ActionName is the receipt action label for this redeemer.
func (UpdateProject) ActionName() string { return "update" }

// ActionName is the receipt action label for this redeemer.
func (UpdateToken) ActionName() string { return "update-token" }

// ActionName is the receipt action label for this redeemer.
func (EndProject) ActionName() string { return "end" }

// Validator is the project state validator, parameterized by the project
// authorization-pair policy.
type Validator struct {
	authPolicy ledger.PolicyID
}

// New returns a validator bound to the project pairing's policy id.
func New(authPolicy ledger.PolicyID) *Validator {
	return &Validator{authPolicy: authPolicy}
}

// Validate evaluates one transaction. Accept is nil; any rejection fails
// the whole transaction with no partial effect.
func (v *Validator) Validate(ctx *ledger.ScriptContext, red Redeemer) error {
	switch r := red.(type) {
	case UpdateProject:
		return v.update(ctx)
	case UpdateToken:
		return v.updateToken(ctx, r)
	case EndProject:
		return v.end(ctx)
	default:
		return ledger.NewError(ledger.KindStructural, "PROJ-STR-000", "missing redeemer")
	}
}

func (v *Validator) progress(ctx *ledger.ScriptContext) (suffix string, old, next *datum.ProjectDatum, err error) {
	prog, err := authtoken.ResolveProgression(ctx, v.authPolicy)
	if err != nil {
		return "", nil, nil, err
	}
	old, err = datum.DecodeProject(prog.In.Output.Datum)
	if err != nil {
		return "", nil, nil, ledger.WrapError(ledger.KindStructural, "PROJ-STR-101",
			"consumed record carries no readable project datum", err)
	}
	next, err = datum.DecodeProject(prog.Out.Datum)
	if err != nil {
		return "", nil, nil, ledger.WrapError(ledger.KindStructural, "PROJ-STR-102",
			"produced record carries no readable project datum", err)
	}
	return prog.Suffix, old, next, nil
}

func (v *Validator) update(ctx *ledger.ScriptContext) error {
	suffix, old, next, err := v.progress(ctx)
	if err != nil {
		return err
	}
	if err := authtoken.RequireUserHolder(ctx, v.authPolicy, suffix); err != nil {
		return err
	}
	if next.Params.State < old.Params.State {
		return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-201",
			fmt.Sprintf("project state may not decrease (%s to %s)", old.Params.State, next.Params.State))
	}
	if err := datum.CheckInvariants(next); err != nil {
		return err
	}
	if old.Params.State == datum.StateInitialized {
		// Everything may change while initialized, subject to the datum
		// invariants already checked. Claim flags are the one exception:
		// they only ever flip through UpdateToken, even on the transition
		// out of the initialized state.
		for _, sh := range next.Stakeholders {
			if sh.Claimed {
				return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-209",
					fmt.Sprintf("stakeholder %q claim flag may only flip through a token update", sh.Name))
			}
		}
		return nil
	}
	return checkPinnedUpdate(old, next)
}

// checkPinnedUpdate enforces the state >= 1 update policy: only the state
// itself (forward), stakeholder re-keying, and advancing certification
// actuals may change.
func checkPinnedUpdate(old, next *datum.ProjectDatum) error {
	if string(next.Params.ProjectID) != string(old.Params.ProjectID) ||
		string(next.Params.MetadataRef) != string(old.Params.MetadataRef) {
		return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-202",
			"project identity is pinned after distribution")
	}
	if next.Token != old.Token {
		return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-203",
			"token config is pinned after distribution")
	}
	if len(next.Stakeholders) != len(old.Stakeholders) {
		return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-204",
			"stakeholder ledger may be re-keyed, not resized")
	}
	for i := range old.Stakeholders {
		o, n := old.Stakeholders[i], next.Stakeholders[i]
		if n.Name != o.Name || n.Participation != o.Participation || n.Claimed != o.Claimed {
			return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-205",
				fmt.Sprintf("stakeholder %q may only change its key after distribution", o.Name))
		}
	}
	if len(next.Certifications) != len(old.Certifications) {
		return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-206",
			"certification schedule is pinned after distribution")
	}
	for i := range old.Certifications {
		o, n := old.Certifications[i], next.Certifications[i]
		if n.PlannedDate != o.PlannedDate || n.PlannedQty != o.PlannedQty {
			return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-207",
				fmt.Sprintf("certification %d planned fields are pinned", i))
		}
		if n.ActualDate < o.ActualDate || n.ActualQty < o.ActualQty {
			return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-208",
				fmt.Sprintf("certification %d actual fields advance, never retreat", i))
		}
	}
	return nil
}

func (v *Validator) updateToken(ctx *ledger.ScriptContext, red UpdateToken) error {
	_, old, next, err := v.progress(ctx)
	if err != nil {
		return err
	}
	if old.Params.State < datum.StateDistributed {
		return ledger.NewError(ledger.KindStructural, "PROJ-STR-220",
			"token claims require a distributed project")
	}
	idx, status := datum.FindStakeholder(old, red.Stakeholder)
	if status != ledger.ResolutionFound {
		return ledger.NewError(ledger.KindStructural, "PROJ-STR-221",
			fmt.Sprintf("stakeholder %q resolution: %s", red.Stakeholder, status))
	}
	sh := old.Stakeholders[idx]
	// The open investor pool has no registered key and claims
	// permissionlessly; every other stakeholder signs.
	if sh.KeyHash != "" && !ctx.SignedBy(sh.KeyHash) {
		return ledger.NewError(ledger.KindAuthorization, "PROJ-AUTHZ-222",
			fmt.Sprintf("missing signature of stakeholder %q", sh.Name))
	}
	if sh.Participation <= 0 {
		return ledger.NewError(ledger.KindArithmetic, "PROJ-ARITH-223",
			fmt.Sprintf("stakeholder %q has no participation to move", sh.Name))
	}

	amount := ctx.Mint.Qty(old.Token.PolicyID, old.Token.TokenName)
	switch amount {
	case sh.Participation:
		// One-shot claim: the full participation, never partial.
		if sh.Claimed {
			return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-224",
				fmt.Sprintf("stakeholder %q already claimed", sh.Name))
		}
		want := sh
		want.Claimed = true
		return checkTokenTransition(old, next, idx, want)
	case -sh.Participation:
		// Draw-down: the claim is extinguished without cash refund.
		if !sh.Claimed {
			return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-225",
				fmt.Sprintf("stakeholder %q has not claimed", sh.Name))
		}
		want := sh
		want.Claimed = false
		want.Participation = 0
		return checkTokenTransition(old, next, idx, want)
	default:
		return ledger.NewError(ledger.KindArithmetic, "PROJ-ARITH-226",
			fmt.Sprintf("moved amount %d must equal stakeholder %q participation %d exactly",
				amount, sh.Name, sh.Participation))
	}
}

// checkTokenTransition pins every datum field across an UpdateToken except
// the single stakeholder entry, which must change to exactly want.
//
// Note: total-supply headroom against circulating amount is deliberately
// not re-verified here; that cross-check belongs to the grey-token policy,
// and both draw their arithmetic from the datum package.
func checkTokenTransition(old, next *datum.ProjectDatum, idx int, want datum.Stakeholder) error {
	if !equalParams(&next.Params, &old.Params) {
		return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-227",
			"project params are pinned across a token update")
	}
	if next.Token != old.Token {
		return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-228",
			"token config is pinned across a token update")
	}
	if len(next.Stakeholders) != len(old.Stakeholders) {
		return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-229",
			"stakeholder ledger is pinned across a token update")
	}
	for i := range old.Stakeholders {
		expect := old.Stakeholders[i]
		if i == idx {
			expect = want
		}
		if next.Stakeholders[i] != expect {
			return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-230",
				fmt.Sprintf("stakeholder %q transition does not match the claim", expect.Name))
		}
	}
	if len(next.Certifications) != len(old.Certifications) {
		return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-231",
			"certification schedule is pinned across a token update")
	}
	for i := range old.Certifications {
		if next.Certifications[i] != old.Certifications[i] {
			return ledger.NewError(ledger.KindImmutability, "PROJ-IMM-231",
				"certification schedule is pinned across a token update")
		}
	}
	return nil
}

func equalParams(a, b *datum.ProjectParams) bool {
	return bytes.Equal(a.ProjectID, b.ProjectID) &&
		bytes.Equal(a.MetadataRef, b.MetadataRef) &&
		a.State == b.State
}

func (v *Validator) end(ctx *ledger.ScriptContext) error {
	res := ledger.ResolveSingleInput(ctx.Inputs, func(i ledger.Input) bool {
		for name, qty := range i.Output.Value.TokensOf(v.authPolicy) {
			if authtoken.IsRefName(name) && qty > 0 {
				return true
			}
		}
		return false
	})
	if res.Status != ledger.ResolutionFound {
		return ledger.NewError(ledger.KindStructural, "PROJ-STR-240",
			"project record input resolution: "+res.Status.String())
	}
	var suffix string
	for name := range res.Input.Output.Value.TokensOf(v.authPolicy) {
		if s, ok := authtoken.Suffix(name); ok && authtoken.IsRefName(name) {
			suffix = s
			break
		}
	}
	return authtoken.RequireUserHolder(ctx, v.authPolicy, suffix)
}
