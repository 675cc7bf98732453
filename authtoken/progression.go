package authtoken

import (
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// Progression is a resolved linear progression of a state record: the one
// consumed input and the one produced output carrying the same REF_ token
// at the same address.
type Progression struct {
	In       ledger.Input
	Out      ledger.Output
	OutIndex int

	// RefToken is the REF_ token both sides carry; Suffix its pair suffix.
	RefToken ledger.TokenName
	Suffix   string
}

// ResolveProgression resolves the linear one-in/one-out progression of the
// REF_ token under policy.
//
// Ambiguous resolution rejects: offering two qualifying inputs or outputs
// is never admitted, so two transactions racing to update the same record
// are mutually exclusive through record consumption alone.
func ResolveProgression(ctx *ledger.ScriptContext, policy ledger.PolicyID) (Progression, error) {
	in := ledger.ResolveSingleInput(ctx.Inputs, func(i ledger.Input) bool {
		return carriesRef(i.Output.Value, policy)
	})
	if in.Status != ledger.ResolutionFound {
		return Progression{}, ledger.NewError(ledger.KindStructural, "AUTH-STR-020",
			fmt.Sprintf("reference-token input resolution: %s", in.Status))
	}
	refToken, qty := refTokenOf(in.Input.Output.Value, policy)
	if qty != 1 {
		return Progression{}, ledger.NewError(ledger.KindStructural, "AUTH-STR-021",
			"consumed record must carry exactly one reference token")
	}
	if sp := ctx.Purpose.Spending; sp != nil && *sp != in.Input.Ref {
		return Progression{}, ledger.NewError(ledger.KindStructural, "AUTH-STR-022",
			"reference-token input is not the record under evaluation")
	}

	out := ledger.ResolveSingleOutput(ctx.Outputs, func(o ledger.Output) bool {
		return carriesRef(o.Value, policy)
	})
	if out.Status != ledger.ResolutionFound {
		return Progression{}, ledger.NewError(ledger.KindStructural, "AUTH-STR-023",
			fmt.Sprintf("reference-token output resolution: %s", out.Status))
	}
	if out.Output.Value.Qty(policy, refToken) != 1 {
		return Progression{}, ledger.NewError(ledger.KindStructural, "AUTH-STR-024",
			"produced record must carry exactly one reference token")
	}
	if out.Output.Address != in.Input.Output.Address {
		return Progression{}, ledger.NewError(ledger.KindStructural, "AUTH-STR-025",
			"record must progress at the same address")
	}

	suffix, _ := Suffix(refToken)
	return Progression{
		In:       in.Input,
		Out:      out.Output,
		OutIndex: out.Index,
		RefToken: refToken,
		Suffix:   suffix,
	}, nil
}

// RequireUserHolder requires the transaction to be signed by the holder of
// the USER_ token paired with suffix: the single consumed input carrying
// that token must sit at a key address whose key is a required signer.
func RequireUserHolder(ctx *ledger.ScriptContext, policy ledger.PolicyID, suffix string) error {
	userToken := UserName(suffix)
	res := ledger.ResolveSingleInput(ctx.Inputs, func(i ledger.Input) bool {
		return i.Output.Value.Qty(policy, userToken) > 0
	})
	if res.Status != ledger.ResolutionFound {
		return ledger.NewError(ledger.KindAuthorization, "AUTH-AUTHZ-030",
			fmt.Sprintf("user-token input resolution: %s", res.Status))
	}
	addr := res.Input.Output.Address
	if !addr.IsKey() {
		return ledger.NewError(ledger.KindAuthorization, "AUTH-AUTHZ-031",
			"user token must be spent from a key address")
	}
	if !ctx.SignedBy(addr.Key) {
		return ledger.NewError(ledger.KindAuthorization, "AUTH-AUTHZ-032",
			"missing signature of the user-token holder")
	}
	return nil
}

func carriesRef(v ledger.Value, policy ledger.PolicyID) bool {
	for name, qty := range v.TokensOf(policy) {
		if IsRefName(name) && qty > 0 {
			return true
		}
	}
	return false
}

func refTokenOf(v ledger.Value, policy ledger.PolicyID) (ledger.TokenName, int64) {
	for name, qty := range v.TokensOf(policy) {
		if IsRefName(name) && qty > 0 {
			return name, qty
		}
	}
	return "", 0
}
