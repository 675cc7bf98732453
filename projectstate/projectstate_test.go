package projectstate

import (
	"testing"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

const (
	authPolicy ledger.PolicyID = "projauth"
	greyPolicy ledger.PolicyID = "greypolicy"
	suffix                     = "projsuffix"
)

var (
	validatorAddr = ledger.Address{Script: "project-validator"}
	holderAddr    = ledger.Address{Key: "kh-holder"}
	recordRef     = ledger.OutRef{TxID: "prev", Index: 0}
)

// baseProject is a small fully-allocated project: an open investor pool
// with no registered key plus a keyed owner.
func baseProject() *datum.ProjectDatum {
	return &datum.ProjectDatum{
		Params: datum.ProjectParams{
			ProjectID:   []byte("proj-1"),
			MetadataRef: []byte("bafy-meta"),
			State:       datum.StateInitialized,
		},
		Token: datum.TokenConfig{
			PolicyID:    greyPolicy,
			TokenName:   "GREYCO2",
			TotalSupply: 1000,
		},
		Stakeholders: []datum.Stakeholder{
			{Name: "Investors", Participation: 400},
			{Name: "Owner", KeyHash: "kh-owner", Participation: 600},
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

func tokenValue(name ledger.TokenName) ledger.Value {
	v := ledger.Value{}
	v.Add(authPolicy, name, 1)
	return v
}

// progressCtx builds the canonical project-record progression with the
// USER_ holder's wallet input and signature.
func progressCtx(t *testing.T, old, next *datum.ProjectDatum) *ledger.ScriptContext {
	t.Helper()
	ref := recordRef
	return &ledger.ScriptContext{
		Inputs: []ledger.Input{
			{Ref: ref, Output: ledger.Output{
				Address: validatorAddr,
				Value:   tokenValue(authtoken.RefName(suffix)),
				Datum:   mustEncode(t, old),
			}},
			{Ref: ledger.OutRef{TxID: "wallet", Index: 0}, Output: ledger.Output{
				Address: holderAddr,
				Value:   tokenValue(authtoken.UserName(suffix)),
			}},
		},
		Outputs: []ledger.Output{{
			Address: validatorAddr,
			Value:   tokenValue(authtoken.RefName(suffix)),
			Datum:   mustEncode(t, next),
		}},
		Signers: []ledger.KeyHash{holderAddr.Key},
		Purpose: ledger.Purpose{Spending: &ref},
	}
}

func TestUpdateProjectFreeWhileInitialized(t *testing.T) {
	old := baseProject()
	next := baseProject()
	next.Token.TotalSupply = 2000
	next.Stakeholders = append(next.Stakeholders, datum.Stakeholder{
		Name: "Buffer", KeyHash: "kh-buffer", Participation: 1000,
	})
	next.Certifications[0].PlannedQty = 2000

	v := New(authPolicy)
	if err := v.Validate(progressCtx(t, old, next), UpdateProject{}); err != nil {
		t.Fatalf("initialized-state reshape rejected: %v", err)
	}
}

func TestUpdateProjectNeverFlipsClaims(t *testing.T) {
	v := New(authPolicy)

	t.Run("while initialized", func(t *testing.T) {
		old := baseProject()
		next := baseProject()
		next.Stakeholders[1].Claimed = true
		err := v.Validate(progressCtx(t, old, next), UpdateProject{})
		if ledger.RuleID(err) != "DATUM-IMM-105" || !ledger.IsKind(err, ledger.KindImmutability) {
			t.Fatalf("got %v", err)
		}
	})
	// Distribution would count a pre-set flag as already minted supply,
	// so the transition itself may not smuggle one in.
	t.Run("on the distribution transition", func(t *testing.T) {
		old := baseProject()
		next := baseProject()
		next.Params.State = datum.StateDistributed
		next.Stakeholders[1].Claimed = true
		err := v.Validate(progressCtx(t, old, next), UpdateProject{})
		if ledger.RuleID(err) != "PROJ-IMM-209" || !ledger.IsKind(err, ledger.KindImmutability) {
			t.Fatalf("got %v", err)
		}
	})
}

func TestUpdateProjectStateNeverDecreases(t *testing.T) {
	old := baseProject()
	old.Params.State = datum.StateDistributed
	next := baseProject()
	next.Params.State = datum.StateInitialized

	err := New(authPolicy).Validate(progressCtx(t, old, next), UpdateProject{})
	if ledger.RuleID(err) != "PROJ-IMM-201" || !ledger.IsKind(err, ledger.KindImmutability) {
		t.Fatalf("got %v", err)
	}
}

func TestUpdateProjectEnforcesDatumInvariants(t *testing.T) {
	old := baseProject()
	next := baseProject()
	next.Stakeholders[1].Name = "Investors"
	err := New(authPolicy).Validate(progressCtx(t, old, next), UpdateProject{})
	if ledger.RuleID(err) != "DATUM-STR-103" {
		t.Fatalf("got %v", err)
	}
}

func TestUpdateProjectPinnedAfterDistribution(t *testing.T) {
	distributed := func() *datum.ProjectDatum {
		d := baseProject()
		d.Params.State = datum.StateDistributed
		return d
	}

	tests := []struct {
		name   string
		mutate func(*datum.ProjectDatum)
		rule   string
	}{
		{"identity", func(d *datum.ProjectDatum) { d.Params.ProjectID = []byte("proj-2") }, "PROJ-IMM-202"},
		{"metadata ref", func(d *datum.ProjectDatum) { d.Params.MetadataRef = []byte("other") }, "PROJ-IMM-202"},
		{"token config", func(d *datum.ProjectDatum) { d.Token.TokenName = "OTHER" }, "PROJ-IMM-203"},
		{"stakeholder resize", func(d *datum.ProjectDatum) { d.Stakeholders = d.Stakeholders[:1] }, "PROJ-IMM-204"},
		{"participation change", func(d *datum.ProjectDatum) {
			d.Stakeholders[0].Participation = 500
			d.Stakeholders[1].Participation = 500
		}, "PROJ-IMM-205"},
		{"claim flag flip", func(d *datum.ProjectDatum) { d.Stakeholders[1].Claimed = true }, "PROJ-IMM-205"},
		{"certification resize", func(d *datum.ProjectDatum) {
			d.Certifications = append(d.Certifications, datum.Certification{})
		}, "PROJ-IMM-206"},
		{"planned change", func(d *datum.ProjectDatum) { d.Certifications[0].PlannedDate = 1 }, "PROJ-IMM-207"},
	}
	v := New(authPolicy)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := distributed()
			next := distributed()
			tt.mutate(next)
			err := v.Validate(progressCtx(t, old, next), UpdateProject{})
			if ledger.RuleID(err) != tt.rule {
				t.Fatalf("rule = %q (%v), want %s", ledger.RuleID(err), err, tt.rule)
			}
		})
	}

	t.Run("re-keying allowed", func(t *testing.T) {
		old := distributed()
		next := distributed()
		next.Stakeholders[1].KeyHash = "kh-owner-rotated"
		if err := v.Validate(progressCtx(t, old, next), UpdateProject{}); err != nil {
			t.Fatalf("re-key rejected: %v", err)
		}
	})
	t.Run("state advance allowed", func(t *testing.T) {
		old := distributed()
		next := distributed()
		next.Params.State = datum.StateCertified
		if err := v.Validate(progressCtx(t, old, next), UpdateProject{}); err != nil {
			t.Fatalf("certification advance rejected: %v", err)
		}
	})
	t.Run("actuals advance, never retreat", func(t *testing.T) {
		old := distributed()
		old.Params.State = datum.StateCertified
		old.Certifications[0].ActualDate = 100
		old.Certifications[0].ActualQty = 500

		next := distributed()
		next.Params.State = datum.StateCertified
		next.Certifications[0].ActualDate = 200
		next.Certifications[0].ActualQty = 800
		if err := v.Validate(progressCtx(t, old, next), UpdateProject{}); err != nil {
			t.Fatalf("advancing actuals rejected: %v", err)
		}

		retreat := distributed()
		retreat.Params.State = datum.StateCertified
		retreat.Certifications[0].ActualDate = 100
		retreat.Certifications[0].ActualQty = 400
		err := v.Validate(progressCtx(t, old, retreat), UpdateProject{})
		if ledger.RuleID(err) != "PROJ-IMM-208" {
			t.Fatalf("got %v", err)
		}
	})
}

// claimCtx builds an UpdateToken transaction for stakeholder idx moving
// amount grey tokens, with next as the produced datum.
func claimCtx(t *testing.T, old, next *datum.ProjectDatum, amount int64, signers ...ledger.KeyHash) *ledger.ScriptContext {
	t.Helper()
	ctx := progressCtx(t, old, next)
	ctx.Signers = signers
	ctx.Mint = ledger.Value{}
	ctx.Mint.Add(greyPolicy, old.Token.TokenName, amount)
	return ctx
}

func TestUpdateTokenClaim(t *testing.T) {
	v := New(authPolicy)
	old := baseProject()
	old.Params.State = datum.StateDistributed

	t.Run("keyed stakeholder claims with signature", func(t *testing.T) {
		next := baseProject()
		next.Params.State = datum.StateDistributed
		next.Stakeholders[1].Claimed = true
		ctx := claimCtx(t, old, next, 600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"}); err != nil {
			t.Fatalf("owner claim rejected: %v", err)
		}
	})
	t.Run("keyless pool claims permissionlessly", func(t *testing.T) {
		next := baseProject()
		next.Params.State = datum.StateDistributed
		next.Stakeholders[0].Claimed = true
		ctx := claimCtx(t, old, next, 400)
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Investors"}); err != nil {
			t.Fatalf("pool claim rejected: %v", err)
		}
	})
	t.Run("keyed stakeholder without signature", func(t *testing.T) {
		next := baseProject()
		next.Params.State = datum.StateDistributed
		next.Stakeholders[1].Claimed = true
		ctx := claimCtx(t, old, next, 600)
		err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"})
		if ledger.RuleID(err) != "PROJ-AUTHZ-222" || !ledger.IsKind(err, ledger.KindAuthorization) {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("before distribution", func(t *testing.T) {
		init := baseProject()
		ctx := claimCtx(t, init, init, 600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"}); ledger.RuleID(err) != "PROJ-STR-220" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("unknown stakeholder", func(t *testing.T) {
		ctx := claimCtx(t, old, old, 600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Nobody"}); ledger.RuleID(err) != "PROJ-STR-221" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("partial claim", func(t *testing.T) {
		next := baseProject()
		next.Params.State = datum.StateDistributed
		next.Stakeholders[1].Claimed = true
		ctx := claimCtx(t, old, next, 599, "kh-owner")
		err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"})
		if ledger.RuleID(err) != "PROJ-ARITH-226" || !ledger.IsKind(err, ledger.KindArithmetic) {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("double claim", func(t *testing.T) {
		claimed := baseProject()
		claimed.Params.State = datum.StateDistributed
		claimed.Stakeholders[1].Claimed = true
		ctx := claimCtx(t, claimed, claimed, 600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"}); ledger.RuleID(err) != "PROJ-IMM-224" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("claim flag not flipped", func(t *testing.T) {
		ctx := claimCtx(t, old, old, 600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"}); ledger.RuleID(err) != "PROJ-IMM-230" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("state smuggled through a claim", func(t *testing.T) {
		next := baseProject()
		next.Params.State = datum.StateCertified
		next.Stakeholders[1].Claimed = true
		ctx := claimCtx(t, old, next, 600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"}); ledger.RuleID(err) != "PROJ-IMM-227" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("token config smuggled through a claim", func(t *testing.T) {
		next := baseProject()
		next.Params.State = datum.StateDistributed
		next.Stakeholders[1].Claimed = true
		next.Token.TotalSupply = 2000
		ctx := claimCtx(t, old, next, 600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"}); ledger.RuleID(err) != "PROJ-IMM-228" {
			t.Fatalf("got %v", err)
		}
	})
}

func TestUpdateTokenDrawDown(t *testing.T) {
	v := New(authPolicy)
	claimed := func() *datum.ProjectDatum {
		d := baseProject()
		d.Params.State = datum.StateDistributed
		d.Stakeholders[1].Claimed = true
		return d
	}

	t.Run("draw-down extinguishes the claim", func(t *testing.T) {
		next := claimed()
		next.Stakeholders[1].Claimed = false
		next.Stakeholders[1].Participation = 0
		ctx := claimCtx(t, claimed(), next, -600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"}); err != nil {
			t.Fatalf("draw-down rejected: %v", err)
		}
	})
	t.Run("draw-down before claim", func(t *testing.T) {
		old := baseProject()
		old.Params.State = datum.StateDistributed
		ctx := claimCtx(t, old, old, -600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"}); ledger.RuleID(err) != "PROJ-IMM-225" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("draw-down keeping the participation", func(t *testing.T) {
		next := claimed()
		next.Stakeholders[1].Claimed = false
		ctx := claimCtx(t, claimed(), next, -600, "kh-owner")
		if err := v.Validate(ctx, UpdateToken{Stakeholder: "Owner"}); ledger.RuleID(err) != "PROJ-IMM-230" {
			t.Fatalf("got %v", err)
		}
	})
}

func TestEndProject(t *testing.T) {
	v := New(authPolicy)
	ref := recordRef
	base := func() *ledger.ScriptContext {
		return &ledger.ScriptContext{
			Inputs: []ledger.Input{
				{Ref: ref, Output: ledger.Output{
					Address: validatorAddr,
					Value:   tokenValue(authtoken.RefName(suffix)),
				}},
				{Ref: ledger.OutRef{TxID: "wallet", Index: 0}, Output: ledger.Output{
					Address: holderAddr,
					Value:   tokenValue(authtoken.UserName(suffix)),
				}},
			},
			Signers: []ledger.KeyHash{holderAddr.Key},
			Purpose: ledger.Purpose{Spending: &ref},
		}
	}

	if err := v.Validate(base(), EndProject{}); err != nil {
		t.Fatalf("termination rejected: %v", err)
	}

	noRecord := base()
	noRecord.Inputs = noRecord.Inputs[1:]
	if err := v.Validate(noRecord, EndProject{}); ledger.RuleID(err) != "PROJ-STR-240" {
		t.Fatalf("missing record: %v", err)
	}

	unsigned := base()
	unsigned.Signers = nil
	if err := v.Validate(unsigned, EndProject{}); ledger.RuleID(err) != "AUTH-AUTHZ-032" {
		t.Fatalf("unsigned termination: %v", err)
	}
}

func TestProgressRejectsUnreadableDatums(t *testing.T) {
	v := New(authPolicy)
	old := baseProject()

	ctx := progressCtx(t, old, old)
	ctx.Inputs[0].Output.Datum = []byte("junk")
	if err := v.Validate(ctx, UpdateProject{}); ledger.RuleID(err) != "PROJ-STR-101" {
		t.Fatalf("unreadable old datum: %v", err)
	}

	ctx = progressCtx(t, old, old)
	ctx.Outputs[0].Datum = []byte("junk")
	if err := v.Validate(ctx, UpdateProject{}); ledger.RuleID(err) != "PROJ-STR-102" {
		t.Fatalf("unreadable next datum: %v", err)
	}
}

func TestMissingRedeemer(t *testing.T) {
	if err := New(authPolicy).Validate(&ledger.ScriptContext{}, nil); ledger.RuleID(err) != "PROJ-STR-000" {
		t.Fatal("nil redeemer must reject")
	}
}
