package greytoken

import (
	"testing"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

const (
	projectAuth ledger.PolicyID  = "projauth"
	ownPolicy   ledger.PolicyID  = "greypolicy"
	greyName    ledger.TokenName = "GREYCO2"
	suffix                       = "projsuffix"
)

var validatorAddr = ledger.Address{Script: "project-validator"}

// project is a partially allocated project: 700 of 1000 assigned to two
// stakeholders, leaving a 300-token open-sale pool.
func project(state datum.ProjectState) *datum.ProjectDatum {
	return &datum.ProjectDatum{
		Params: datum.ProjectParams{
			ProjectID: []byte("proj-1"),
			State:     state,
		},
		Token: datum.TokenConfig{
			PolicyID:    ownPolicy,
			TokenName:   greyName,
			TotalSupply: 1000,
		},
		Stakeholders: []datum.Stakeholder{
			{Name: "Owner", KeyHash: "kh-owner", Participation: 500},
			{Name: "Buffer", KeyHash: "kh-buffer", Participation: 200},
		},
		Certifications: []datum.Certification{
			{PlannedDate: 1767225600, PlannedQty: 1000},
		},
	}
}

func mustEncode(t *testing.T, d *datum.ProjectDatum) []byte {
	t.Helper()
	b, err := datum.EncodeProject(d)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func refValue() ledger.Value {
	v := ledger.Value{}
	v.Add(projectAuth, authtoken.RefName(suffix), 1)
	return v
}

// referencedCtx builds a transaction that reads the project record as a
// reference input and moves amount grey tokens.
func referencedCtx(t *testing.T, cur *datum.ProjectDatum, amount int64) *ledger.ScriptContext {
	t.Helper()
	mint := ledger.Value{}
	mint.Add(ownPolicy, greyName, amount)
	return &ledger.ScriptContext{
		Reference: []ledger.Input{{
			Ref:    ledger.OutRef{TxID: "proj", Index: 0},
			Output: ledger.Output{Address: validatorAddr, Value: refValue(), Datum: mustEncode(t, cur)},
		}},
		Mint:    mint,
		Purpose: ledger.Purpose{Minting: ownPolicy},
	}
}

// progressedCtx builds a transaction that consumes and re-creates the
// project record while moving amount grey tokens.
func progressedCtx(t *testing.T, cur, next *datum.ProjectDatum, amount int64) *ledger.ScriptContext {
	t.Helper()
	mint := ledger.Value{}
	mint.Add(ownPolicy, greyName, amount)
	return &ledger.ScriptContext{
		Inputs: []ledger.Input{{
			Ref:    ledger.OutRef{TxID: "proj", Index: 0},
			Output: ledger.Output{Address: validatorAddr, Value: refValue(), Datum: mustEncode(t, cur)},
		}},
		Outputs: []ledger.Output{{
			Address: validatorAddr,
			Value:   refValue(),
			Datum:   mustEncode(t, next),
		}},
		Mint:    mint,
		Purpose: ledger.Purpose{Minting: ownPolicy},
	}
}

func TestFreeMintOnDistribution(t *testing.T) {
	p := New(projectAuth)
	cur := project(datum.StateInitialized)
	next := project(datum.StateDistributed)

	if err := p.Validate(progressedCtx(t, cur, next, 300), Mint{}); err != nil {
		t.Fatalf("free mint of the open pool rejected: %v", err)
	}

	t.Run("wrong pool size", func(t *testing.T) {
		err := p.Validate(progressedCtx(t, cur, next, 299), Mint{})
		if ledger.RuleID(err) != "GREY-ARITH-022" || !ledger.IsKind(err, ledger.KindArithmetic) {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("pool measured after the transition", func(t *testing.T) {
		// The initialized record may still reshape its economics; the
		// distributed datum is the binding one.
		reshaped := project(datum.StateDistributed)
		reshaped.Stakeholders[0].Participation = 600
		if err := p.Validate(progressedCtx(t, cur, reshaped, 200), Mint{}); err != nil {
			t.Fatalf("reshaped pool rejected: %v", err)
		}
	})
	t.Run("claim flag smuggled through distribution", func(t *testing.T) {
		smuggled := project(datum.StateDistributed)
		smuggled.Stakeholders[1].Claimed = true
		err := p.Validate(progressedCtx(t, cur, smuggled, 300), Mint{})
		if ledger.RuleID(err) != "GREY-XV-023" || !ledger.IsKind(err, ledger.KindCrossValidator) {
			t.Fatalf("got %v", err)
		}
	})
}

func TestClaimMint(t *testing.T) {
	p := New(projectAuth)
	cur := project(datum.StateDistributed)

	t.Run("full participation claim", func(t *testing.T) {
		next := project(datum.StateDistributed)
		next.Stakeholders[0].Claimed = true
		if err := p.Validate(progressedCtx(t, cur, next, 500), Mint{}); err != nil {
			t.Fatalf("owner claim rejected: %v", err)
		}
	})
	t.Run("record only referenced", func(t *testing.T) {
		err := p.Validate(referencedCtx(t, cur, 500), Mint{})
		if ledger.RuleID(err) != "GREY-XV-025" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("amount disagrees with participation", func(t *testing.T) {
		next := project(datum.StateDistributed)
		next.Stakeholders[0].Claimed = true
		err := p.Validate(progressedCtx(t, cur, next, 400), Mint{})
		if ledger.RuleID(err) != "GREY-XV-028" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("two flips in one transaction", func(t *testing.T) {
		next := project(datum.StateDistributed)
		next.Stakeholders[0].Claimed = true
		next.Stakeholders[1].Claimed = true
		err := p.Validate(progressedCtx(t, cur, next, 700), Mint{})
		if ledger.RuleID(err) != "GREY-XV-027" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("no flip at all", func(t *testing.T) {
		err := p.Validate(progressedCtx(t, cur, project(datum.StateDistributed), 500), Mint{})
		if ledger.RuleID(err) != "GREY-XV-027" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("ledger resized", func(t *testing.T) {
		next := project(datum.StateDistributed)
		next.Stakeholders = next.Stakeholders[:1]
		next.Stakeholders[0].Claimed = true
		err := p.Validate(progressedCtx(t, cur, next, 500), Mint{})
		if ledger.RuleID(err) != "GREY-XV-026" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("headroom exhausted", func(t *testing.T) {
		// Pool minted and both stakeholders claimed: nothing left under
		// total supply, so any further mint breaks the cumulative bound.
		drained := project(datum.StateDistributed)
		drained.Stakeholders[0].Claimed = true
		drained.Stakeholders[1].Claimed = true
		err := p.Validate(progressedCtx(t, drained, drained, 100), Mint{})
		if ledger.RuleID(err) != "GREY-ARITH-021" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("claims closed after certification", func(t *testing.T) {
		certified := project(datum.StateCertified)
		next := project(datum.StateCertified)
		next.Stakeholders[0].Claimed = true
		err := p.Validate(progressedCtx(t, certified, next, 500), Mint{})
		if ledger.RuleID(err) != "GREY-STR-024" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("non-positive amount", func(t *testing.T) {
		next := project(datum.StateDistributed)
		err := p.Validate(progressedCtx(t, cur, next, 0), Mint{})
		if ledger.RuleID(err) != "GREY-STR-003" {
			// A zero mint never reaches the policy as an entry; the single
			// token-name rule fires first.
			t.Fatalf("got %v", err)
		}
	})
}

func TestBurn(t *testing.T) {
	p := New(projectAuth)
	// Distributed with the pool minted and Owner claimed: 800 circulating.
	cur := project(datum.StateDistributed)
	cur.Stakeholders[0].Claimed = true

	t.Run("retirement burn against a referenced record", func(t *testing.T) {
		if err := p.Validate(referencedCtx(t, cur, -250), Burn{}); err != nil {
			t.Fatalf("retirement rejected: %v", err)
		}
	})
	t.Run("positive amount under Burn", func(t *testing.T) {
		err := p.Validate(referencedCtx(t, cur, 5), Burn{})
		if ledger.RuleID(err) != "GREY-ARITH-030" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("burn beyond circulating supply", func(t *testing.T) {
		err := p.Validate(referencedCtx(t, cur, -801), Burn{})
		if ledger.RuleID(err) != "GREY-ARITH-031" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("policy token leaking to an output", func(t *testing.T) {
		ctx := referencedCtx(t, cur, -250)
		leak := ledger.Value{}
		leak.Add(ownPolicy, greyName, 10)
		ctx.Outputs = append(ctx.Outputs, ledger.Output{
			Address: ledger.Address{Key: "kh-anyone"}, Value: leak,
		})
		err := p.Validate(ctx, Burn{})
		if ledger.RuleID(err) != "GREY-STR-032" {
			t.Fatalf("got %v", err)
		}
	})
}

func TestBurnDrawDown(t *testing.T) {
	p := New(projectAuth)
	cur := project(datum.StateDistributed)
	cur.Stakeholders[0].Claimed = true

	t.Run("draw-down matches participation", func(t *testing.T) {
		next := project(datum.StateDistributed)
		next.Stakeholders[0].Claimed = false
		next.Stakeholders[0].Participation = 0
		if err := p.Validate(progressedCtx(t, cur, next, -500), Burn{}); err != nil {
			t.Fatalf("draw-down rejected: %v", err)
		}
	})
	t.Run("magnitude disagrees with participation", func(t *testing.T) {
		next := project(datum.StateDistributed)
		next.Stakeholders[0].Claimed = false
		next.Stakeholders[0].Participation = 0
		err := p.Validate(progressedCtx(t, cur, next, -400), Burn{})
		if ledger.RuleID(err) != "GREY-XV-035" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("flip in the wrong direction", func(t *testing.T) {
		next := project(datum.StateDistributed)
		next.Stakeholders[0].Claimed = true
		next.Stakeholders[1].Claimed = true
		err := p.Validate(progressedCtx(t, cur, next, -500), Burn{})
		if ledger.RuleID(err) != "GREY-XV-034" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("progression without any flip", func(t *testing.T) {
		next := project(datum.StateDistributed)
		next.Stakeholders[0].Claimed = true
		if err := p.Validate(progressedCtx(t, cur, next, -300), Burn{}); err != nil {
			t.Fatalf("plain burn with progression rejected: %v", err)
		}
	})
	t.Run("resized ledger", func(t *testing.T) {
		next := project(datum.StateDistributed)
		next.Stakeholders = next.Stakeholders[:1]
		err := p.Validate(progressedCtx(t, cur, next, -500), Burn{})
		if ledger.RuleID(err) != "GREY-XV-033" {
			t.Fatalf("got %v", err)
		}
	})
}

func TestResolutionAndShapeRejections(t *testing.T) {
	p := New(projectAuth)
	cur := project(datum.StateDistributed)

	t.Run("no minting purpose", func(t *testing.T) {
		ctx := referencedCtx(t, cur, 1)
		ctx.Purpose = ledger.Purpose{}
		if err := p.Validate(ctx, Mint{}); ledger.RuleID(err) != "GREY-STR-001" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("ambiguous reference", func(t *testing.T) {
		ctx := referencedCtx(t, cur, 1)
		ctx.Reference = append(ctx.Reference, ctx.Reference[0])
		if err := p.Validate(ctx, Mint{}); ledger.RuleID(err) != "GREY-STR-010" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("neither referenced nor progressed", func(t *testing.T) {
		ctx := referencedCtx(t, cur, 1)
		ctx.Reference = nil
		if err := p.Validate(ctx, Mint{}); ledger.RuleID(err) != "GREY-STR-012" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("unreadable referenced datum", func(t *testing.T) {
		ctx := referencedCtx(t, cur, 1)
		ctx.Reference[0].Output.Datum = []byte("junk")
		if err := p.Validate(ctx, Mint{}); ledger.RuleID(err) != "GREY-STR-011" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("foreign grey policy in the datum", func(t *testing.T) {
		foreign := project(datum.StateDistributed)
		foreign.Token.PolicyID = "someone-else"
		err := p.Validate(referencedCtx(t, foreign, 1), Mint{})
		if ledger.RuleID(err) != "GREY-XV-002" || !ledger.IsKind(err, ledger.KindCrossValidator) {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("two token names", func(t *testing.T) {
		ctx := referencedCtx(t, cur, 1)
		ctx.Mint.Add(ownPolicy, "OTHER", 1)
		if err := p.Validate(ctx, Mint{}); ledger.RuleID(err) != "GREY-STR-003" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("wrong token name", func(t *testing.T) {
		ctx := referencedCtx(t, cur, 1)
		ctx.Mint = ledger.Value{}
		ctx.Mint.Add(ownPolicy, "OTHER", 1)
		if err := p.Validate(ctx, Mint{}); ledger.RuleID(err) != "GREY-XV-004" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("project not yet distributed", func(t *testing.T) {
		initialized := project(datum.StateInitialized)
		err := p.Validate(referencedCtx(t, initialized, 1), Mint{})
		if ledger.RuleID(err) != "GREY-STR-005" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("missing redeemer", func(t *testing.T) {
		if err := p.Validate(referencedCtx(t, cur, 1), nil); ledger.RuleID(err) != "GREY-STR-000" {
			t.Fatalf("got %v", err)
		}
	})
}
