// Package greytoken implements the minting policy of a project's grey
// token: the fungible asset promising one unverified, estimated future
// carbon credit.
//
// The policy is parameterized by the project's identity (its
// authorization-pair policy) and reads the project's current record for
// every decision. Cumulative minted-minus-burned never exceeds the
// project's total supply and never goes negative; the arithmetic feeding
// that bound is the datum package's, shared with the project validator, so
// the two units cannot disagree by drift. Genuine disagreement between the
// project transition and the requested mint rejects with a
// cross-validator error.
package greytoken

import (
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// Redeemer is the closed set of actions this policy accepts.
type Redeemer interface{ isGreyRedeemer() }

// Mint requests creating grey tokens through one of two disjoint paths:
// the one-time free mint funding the open-sale pool, or a stakeholder
// claim driven by the project validator's UpdateToken transition.
type Mint struct{}

// Burn requests destroying grey tokens. Full-destruction only: the
// transaction may not send any token of this policy to an output.
type Burn struct{}

func (Mint) isGreyRedeemer() {}
func (Burn) isGreyRedeemer() {}

// ActionName is the receipt action label for this redeemer.
func (Mint) ActionName() string { return "mint" }

// ActionName is the receipt action label for this redeemer.
func (Burn) ActionName() string { return "burn" }

// Policy is one project's grey-token minting policy.
type Policy struct {
	project ledger.PolicyID
}

// New returns the policy for the project identified by its
// authorization-pair policy id.
func New(project ledger.PolicyID) *Policy {
	return &Policy{project: project}
}

// projectView is the project record as seen by this transaction: cur is
// the record's current datum; next is non-nil when the record is being
// consumed and progressed in the same transaction (claims and the
// distribution transition), nil when it is only referenced.
type projectView struct {
	cur  *datum.ProjectDatum
	next *datum.ProjectDatum
}

func (w projectView) effective() *datum.ProjectDatum {
	if w.next != nil {
		return w.next
	}
	return w.cur
}

// Validate evaluates one transaction. Accept is nil; any rejection fails
// the whole transaction with no partial effect.
func (p *Policy) Validate(ctx *ledger.ScriptContext, red Redeemer) error {
	own := ctx.Purpose.Minting
	if own == "" {
		return ledger.NewError(ledger.KindStructural, "GREY-STR-001", "not evaluated as a minting policy")
	}

	view, err := p.resolveProject(ctx)
	if err != nil {
		return err
	}
	if view.cur.Token.PolicyID != own {
		return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-002",
			"project datum names a different grey-token policy")
	}

	minted := ctx.MintOf(own)
	if len(minted) != 1 {
		return ledger.NewError(ledger.KindStructural, "GREY-STR-003",
			fmt.Sprintf("exactly one token name per transaction, got %d", len(minted)))
	}
	amount, ok := minted[view.cur.Token.TokenName]
	if !ok {
		return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-004",
			"minted token name does not match the project's grey token")
	}

	if st := view.effective().Params.State; st < datum.StateDistributed {
		return ledger.NewError(ledger.KindStructural, "GREY-STR-005",
			fmt.Sprintf("grey tokens require a distributed project, state is %s", st))
	}

	switch red.(type) {
	case Mint:
		return p.mint(view, amount)
	case Burn:
		return p.burn(ctx, view, amount)
	default:
		return ledger.NewError(ledger.KindStructural, "GREY-STR-000", "missing redeemer")
	}
}

// resolveProject locates the project record: the single reference input
// carrying the project's REF_ token, or, when the record is consumed and
// progressed in this transaction, the linear input/output pair.
func (p *Policy) resolveProject(ctx *ledger.ScriptContext) (projectView, error) {
	ref := ledger.ResolveSingleInput(ctx.Reference, func(in ledger.Input) bool {
		return carriesRef(in.Output.Value, p.project)
	})
	switch ref.Status {
	case ledger.ResolutionAmbiguous:
		return projectView{}, ledger.NewError(ledger.KindStructural, "GREY-STR-010",
			"project reference input resolution: ambiguous")
	case ledger.ResolutionFound:
		cur, err := datum.DecodeProject(ref.Input.Output.Datum)
		if err != nil {
			return projectView{}, ledger.WrapError(ledger.KindStructural, "GREY-STR-011",
				"project reference input carries no readable project datum", err)
		}
		return projectView{cur: cur}, nil
	}

	// Not referenced: the record must be consumed and re-created here.
	prog, err := authtoken.ResolveProgression(ctx, p.project)
	if err != nil {
		return projectView{}, ledger.WrapError(ledger.KindStructural, "GREY-STR-012",
			"project record neither referenced nor progressed", err)
	}
	cur, err := datum.DecodeProject(prog.In.Output.Datum)
	if err != nil {
		return projectView{}, ledger.WrapError(ledger.KindStructural, "GREY-STR-013",
			"consumed project record carries no readable project datum", err)
	}
	next, err := datum.DecodeProject(prog.Out.Datum)
	if err != nil {
		return projectView{}, ledger.WrapError(ledger.KindStructural, "GREY-STR-014",
			"produced project record carries no readable project datum", err)
	}
	return projectView{cur: cur, next: next}, nil
}

func (p *Policy) mint(view projectView, amount int64) error {
	if amount <= 0 {
		return ledger.NewError(ledger.KindArithmetic, "GREY-ARITH-020",
			fmt.Sprintf("mint amount must be positive, got %d", amount))
	}
	if view.next != nil &&
		view.cur.Params.State == datum.StateInitialized &&
		view.next.Params.State == datum.StateDistributed {
		return p.freeMint(view, amount)
	}
	return p.claimMint(view, amount)
}

// freeMint is the one-time distribution mint: the unallocated part of the
// total supply, permitted only on the transition to StateDistributed.
//
// The distributed datum is the binding one: a project may still reshape
// its economics while initialized, so the pool is measured after the
// transition.
func (p *Policy) freeMint(view projectView, amount int64) error {
	free := datum.FreeMintAmount(view.next)
	if amount != free {
		return ledger.NewError(ledger.KindArithmetic, "GREY-ARITH-022",
			fmt.Sprintf("free mint must equal the unallocated supply %d, got %d", free, amount))
	}
	for _, sh := range view.next.Stakeholders {
		if sh.Claimed {
			return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-023",
				"distribution transition may not flip claim flags")
		}
	}
	return nil
}

// claimMint is the UpdateToken-driven path: exactly one stakeholder's
// claim flag flips in the same transaction, and the mint equals that
// stakeholder's full participation.
func (p *Policy) claimMint(view projectView, amount int64) error {
	if view.cur.Params.State != datum.StateDistributed {
		return ledger.NewError(ledger.KindStructural, "GREY-STR-024",
			fmt.Sprintf("claims are only open while distributed, state is %s", view.cur.Params.State))
	}
	if view.next == nil {
		return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-025",
			"claim mint requires the project record to progress in the same transaction")
	}
	// The cumulative bound holds regardless of the claimed path: minted
	// never exceeds total supply minus what the datum already accounts.
	if headroom := datum.Headroom(view.cur); amount > headroom {
		return ledger.NewError(ledger.KindArithmetic, "GREY-ARITH-021",
			fmt.Sprintf("mint amount %d exceeds remaining headroom %d", amount, headroom))
	}
	if len(view.next.Stakeholders) != len(view.cur.Stakeholders) {
		return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-026",
			"claim mint may not resize the stakeholder ledger")
	}
	flipped := -1
	for i := range view.cur.Stakeholders {
		was, is := view.cur.Stakeholders[i].Claimed, view.next.Stakeholders[i].Claimed
		if was == is {
			continue
		}
		if was || !is || flipped >= 0 {
			return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-027",
				"claim mint must flip exactly one stakeholder to claimed")
		}
		flipped = i
	}
	if flipped < 0 {
		return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-027",
			"claim mint must flip exactly one stakeholder to claimed")
	}
	if part := view.cur.Stakeholders[flipped].Participation; amount != part {
		return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-028",
			fmt.Sprintf("mint amount %d disagrees with claimed participation %d", amount, part))
	}
	return nil
}

func (p *Policy) burn(ctx *ledger.ScriptContext, view projectView, amount int64) error {
	if amount >= 0 {
		return ledger.NewError(ledger.KindArithmetic, "GREY-ARITH-030",
			fmt.Sprintf("burn amount must be negative, got %d", amount))
	}
	magnitude := -amount
	if circulating := datum.MintedSoFar(view.cur); magnitude > circulating {
		return ledger.NewError(ledger.KindArithmetic, "GREY-ARITH-031",
			fmt.Sprintf("burn magnitude %d exceeds circulating supply %d", magnitude, circulating))
	}
	own := ctx.Purpose.Minting
	for _, out := range ctx.Outputs {
		if out.Value.HasPolicy(own) {
			return ledger.NewError(ledger.KindStructural, "GREY-STR-032",
				"full-destruction burns only: no token of this policy may reach an output")
		}
	}
	if view.next != nil {
		return p.checkDrawDown(view, magnitude)
	}
	return nil
}

// checkDrawDown cross-checks a burn that progresses the project record in
// the same transaction: if a claim flag flips back, it must be exactly one
// claimed stakeholder drawn down to zero, matching the burn magnitude.
func (p *Policy) checkDrawDown(view projectView, magnitude int64) error {
	if len(view.next.Stakeholders) != len(view.cur.Stakeholders) {
		return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-033",
			"burn may not resize the stakeholder ledger")
	}
	flipped := -1
	for i := range view.cur.Stakeholders {
		was, is := view.cur.Stakeholders[i].Claimed, view.next.Stakeholders[i].Claimed
		if was == is {
			continue
		}
		if !was || is || flipped >= 0 {
			return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-034",
				"draw-down must flip exactly one stakeholder back from claimed")
		}
		flipped = i
	}
	if flipped < 0 {
		return nil
	}
	if part := view.cur.Stakeholders[flipped].Participation; magnitude != part {
		return ledger.NewError(ledger.KindCrossValidator, "GREY-XV-035",
			fmt.Sprintf("burn magnitude %d disagrees with drawn-down participation %d", magnitude, part))
	}
	return nil
}

func carriesRef(v ledger.Value, policy ledger.PolicyID) bool {
	for name, qty := range v.TokensOf(policy) {
		if authtoken.IsRefName(name) && qty > 0 {
			return true
		}
	}
	return false
}
