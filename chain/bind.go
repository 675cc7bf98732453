package chain

import (
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/greytoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/projectstate"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/protocolstate"
)

// Adapters from the typed validation units to the simulator's redeemer
// plumbing. Each rejects a redeemer of the wrong type before the unit
// runs, mirroring how a host ledger fails script arguments it cannot
// decode.

func badRedeemer(unit string, red any) error {
	return ledger.NewError(ledger.KindEncoding, "LEDGER-ENC-030",
		fmt.Sprintf("%s: redeemer type %T not accepted", unit, red))
}

// BindAuthPolicy adapts an authorization-pair minting policy.
func BindAuthPolicy(p *authtoken.Policy) MintFunc {
	return func(ctx *ledger.ScriptContext, red any) error {
		r, ok := red.(authtoken.Redeemer)
		if !ok {
			return badRedeemer("authtoken", red)
		}
		return p.Validate(ctx, r)
	}
}

// BindProtocolValidator adapts the protocol state validator.
func BindProtocolValidator(v *protocolstate.Validator) SpendFunc {
	return func(ctx *ledger.ScriptContext, red any) error {
		r, ok := red.(protocolstate.Redeemer)
		if !ok {
			return badRedeemer("protocolstate", red)
		}
		return v.Validate(ctx, r)
	}
}

// BindProjectValidator adapts the project state validator.
func BindProjectValidator(v *projectstate.Validator) SpendFunc {
	return func(ctx *ledger.ScriptContext, red any) error {
		r, ok := red.(projectstate.Redeemer)
		if !ok {
			return badRedeemer("projectstate", red)
		}
		return v.Validate(ctx, r)
	}
}

// BindGreyPolicy adapts the grey-token minting policy.
func BindGreyPolicy(p *greytoken.Policy) MintFunc {
	return func(ctx *ledger.ScriptContext, red any) error {
		r, ok := red.(greytoken.Redeemer)
		if !ok {
			return badRedeemer("greytoken", red)
		}
		return p.Validate(ctx, r)
	}
}
