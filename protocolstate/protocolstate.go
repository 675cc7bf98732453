// Package protocolstate implements the protocol state validator: the unit
// owning the protocol-wide configuration record.
package protocolstate

import (
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// Redeemer is the closed set of actions this validator accepts.
type Redeemer interface{ isProtocolRedeemer() }

// UpdateProtocol progresses the protocol record: one consumed input, one
// produced output, both carrying the REF_ token at the same address,
// signed by the USER_ holder, new datum within bounds.
type UpdateProtocol struct{}

// EndProtocol destroys the protocol record; the pair must be fully burned
// (destruction itself is validated by the authorization-pair policy).
type EndProtocol struct{}

func (UpdateProtocol) isProtocolRedeemer() {}
func (EndProtocol) isProtocolRedeemer()    {}

// ActionName is the receipt action label for this redeemer.
func (UpdateProtocol) ActionName() string { return "update" }

// ActionName is the receipt action label for this redeemer.
func (EndProtocol) ActionName() string { return "end" }

// Validator is the protocol state validator, parameterized by the protocol
// authorization-pair policy.
type Validator struct {
	authPolicy ledger.PolicyID
}

// New returns a validator bound to the protocol pairing's policy id.
func New(authPolicy ledger.PolicyID) *Validator {
	return &Validator{authPolicy: authPolicy}
}

// Validate evaluates one transaction. Accept is nil; any rejection fails
// the whole transaction with no partial effect.
func (v *Validator) Validate(ctx *ledger.ScriptContext, red Redeemer) error {
	switch red.(type) {
	case UpdateProtocol:
		return v.update(ctx)
	case EndProtocol:
		return v.end(ctx)
	default:
		return ledger.NewError(ledger.KindStructural, "PROT-STR-000", "missing redeemer")
	}
}

func (v *Validator) update(ctx *ledger.ScriptContext) error {
	prog, err := authtoken.ResolveProgression(ctx, v.authPolicy)
	if err != nil {
		return err
	}
	if err := authtoken.RequireUserHolder(ctx, v.authPolicy, prog.Suffix); err != nil {
		return err
	}
	if len(prog.Out.Datum) == 0 {
		return ledger.NewError(ledger.KindStructural, "PROT-STR-101", "produced record carries no datum")
	}
	next, err := datum.DecodeProtocol(prog.Out.Datum)
	if err != nil {
		return ledger.WrapError(ledger.KindStructural, "PROT-STR-102", "produced record datum is not a protocol datum", err)
	}
	// No field is pinned: fee, oracle id, admins and projects may change
	// freely within the datum bounds.
	return next.Validate()
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
		return ledger.NewError(ledger.KindStructural, "PROT-STR-110", "protocol record input resolution: "+res.Status.String())
	}
	var suffix string
	for name := range res.Input.Output.Value.TokensOf(v.authPolicy) {
		if s, ok := authtoken.Suffix(name); ok && authtoken.IsRefName(name) {
			suffix = s
			break
		}
	}
	if err := authtoken.RequireUserHolder(ctx, v.authPolicy, suffix); err != nil {
		return err
	}
	minted := ctx.MintOf(v.authPolicy)
	if minted[authtoken.RefName(suffix)] != -1 || minted[authtoken.UserName(suffix)] != -1 {
		return ledger.NewError(ledger.KindStructural, "PROT-STR-111",
			"ending the protocol must burn the full authorization pair")
	}
	return nil
}
