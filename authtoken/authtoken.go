// Package authtoken implements the authorization-token minting policy: a
// bound pair of unique tokens minted from one consumed record.
//
// The pair shares a suffix derived from the consumed record's identity.
// The REF_ token is locked forever at the paired validator's address and
// marks "this is the one official record of kind X"; the USER_ token is
// freely held and marks "the holder may administer X". Because the seed
// record is consumed, the same pair can never be minted twice.
//
// The policy is used twice with different parameters: protocol scope (the
// one protocol record) and project scope (one pairing per project, gated
// by a protocol admin signature).
package authtoken

import (
	"fmt"
	"strings"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/cidutil"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// Token-name prefixes of the pair. The shared suffix is
// cidutil.TokenSuffix over the seed record's canonical identity.
const (
	RefPrefix  = "REF_"
	UserPrefix = "USER_"
)

// PairSuffix returns the suffix both tokens of a pair carry, derived from
// the seed record.
func PairSuffix(seed ledger.OutRef) string {
	return cidutil.TokenSuffix([]byte(seed.String()))
}

// RefName returns the reference-token name for a suffix.
func RefName(suffix string) ledger.TokenName {
	return ledger.TokenName(RefPrefix + suffix)
}

// UserName returns the user-token name for a suffix.
func UserName(suffix string) ledger.TokenName {
	return ledger.TokenName(UserPrefix + suffix)
}

// IsRefName reports whether name carries the REF_ prefix.
func IsRefName(name ledger.TokenName) bool {
	return strings.HasPrefix(string(name), RefPrefix)
}

// IsUserName reports whether name carries the USER_ prefix.
func IsUserName(name ledger.TokenName) bool {
	return strings.HasPrefix(string(name), UserPrefix)
}

// Suffix strips the pair prefix from a token name. ok is false when name
// carries neither prefix.
func Suffix(name ledger.TokenName) (suffix string, ok bool) {
	s := string(name)
	switch {
	case strings.HasPrefix(s, RefPrefix):
		return s[len(RefPrefix):], true
	case strings.HasPrefix(s, UserPrefix):
		return s[len(UserPrefix):], true
	default:
		return "", false
	}
}

// UserFor returns the USER_ name paired with a REF_ name, and ok=false
// when ref is not a REF_ name.
func UserFor(ref ledger.TokenName) (ledger.TokenName, bool) {
	if !IsRefName(ref) {
		return "", false
	}
	return UserName(string(ref)[len(RefPrefix):]), true
}

// Scope selects the pairing variant.
type Scope int

const (
	// ScopeProtocol mints the one protocol pairing.
	ScopeProtocol Scope = iota
	// ScopeProject mints a project pairing; requires a reference input
	// carrying the current protocol datum and an admin signature.
	ScopeProject
)

// Redeemer is the closed set of actions this policy accepts.
type Redeemer interface{ isAuthRedeemer() }

// MintPair requests minting the REF_/USER_ pair from the seed record.
type MintPair struct{}

// BurnPair requests destroying the pair. Full destruction only: no token
// of this policy may remain in any output.
type BurnPair struct{}

func (MintPair) isAuthRedeemer() {}
func (BurnPair) isAuthRedeemer() {}

// ActionName is the receipt action label for this redeemer.
func (MintPair) ActionName() string { return "mint-pair" }

// ActionName is the receipt action label for this redeemer.
func (BurnPair) ActionName() string { return "burn-pair" }

// Params fix one policy instance.
type Params struct {
	Scope Scope

	// Seed is the record whose consumption makes the pair unique.
	Seed ledger.OutRef

	// ValidatorAddr is the paired validator's address; the REF_ token's
	// output must be locked there.
	ValidatorAddr ledger.Address

	// ProtocolPolicy is the protocol pairing's policy id. Project scope
	// only; it identifies the reference input carrying the protocol datum.
	ProtocolPolicy ledger.PolicyID
}

// Policy is one parameterized instance of the authorization-pair policy.
type Policy struct {
	params Params
}

// New validates params and returns the policy instance.
func New(params Params) (*Policy, error) {
	if !params.ValidatorAddr.IsScript() {
		return nil, ledger.NewError(ledger.KindInternal, "AUTH-INTERNAL-001",
			"paired validator address must be a script address")
	}
	if params.Scope == ScopeProject && params.ProtocolPolicy == "" {
		return nil, ledger.NewError(ledger.KindInternal, "AUTH-INTERNAL-002",
			"project scope requires the protocol policy id")
	}
	return &Policy{params: params}, nil
}

// Validate evaluates one transaction against the policy. Any deviation
// rejects the whole transaction.
func (p *Policy) Validate(ctx *ledger.ScriptContext, red Redeemer) error {
	switch red.(type) {
	case MintPair:
		return ledger.ValidateRules(ctx, p.mintRules())
	case BurnPair:
		return ledger.ValidateRules(ctx, p.burnRules())
	default:
		return ledger.NewError(ledger.KindStructural, "AUTH-STR-000", "missing redeemer")
	}
}

func (p *Policy) own(ctx *ledger.ScriptContext) ledger.PolicyID {
	return ctx.Purpose.Minting
}

func (p *Policy) mintRules() []ledger.Rule {
	suffix := PairSuffix(p.params.Seed)
	refName := RefName(suffix)
	userName := UserName(suffix)

	rules := []ledger.Rule{
		{ID: "AUTH-STR-001", Apply: func(ctx *ledger.ScriptContext) error {
			if p.own(ctx) == "" {
				return ledger.NewError(ledger.KindStructural, "AUTH-STR-001", "not evaluated as a minting policy")
			}
			return nil
		}},
		{ID: "AUTH-STR-002", Apply: func(ctx *ledger.ScriptContext) error {
			if !ctx.Consumes(p.params.Seed) {
				return ledger.NewError(ledger.KindStructural, "AUTH-STR-002",
					fmt.Sprintf("seed record %s must be consumed", p.params.Seed))
			}
			return nil
		}},
		{ID: "AUTH-STR-003", Apply: func(ctx *ledger.ScriptContext) error {
			minted := ctx.MintOf(p.own(ctx))
			if len(minted) != 2 || minted[refName] != 1 || minted[userName] != 1 {
				return ledger.NewError(ledger.KindStructural, "AUTH-STR-003",
					"mint must be exactly one REF_ and one USER_ token sharing the seed suffix")
			}
			return nil
		}},
		{ID: "AUTH-STR-004", Apply: func(ctx *ledger.ScriptContext) error {
			own := p.own(ctx)
			res := ledger.ResolveSingleOutput(ctx.Outputs, func(o ledger.Output) bool {
				return o.Value.Qty(own, refName) > 0
			})
			if res.Status != ledger.ResolutionFound {
				return ledger.NewError(ledger.KindStructural, "AUTH-STR-004",
					fmt.Sprintf("reference-token output resolution: %s", res.Status))
			}
			if res.Output.Address != p.params.ValidatorAddr {
				return ledger.NewError(ledger.KindStructural, "AUTH-STR-005",
					"reference token must be locked at the paired validator address")
			}
			if res.Output.Value.Qty(own, refName) != 1 {
				return ledger.NewError(ledger.KindStructural, "AUTH-STR-006",
					"reference-token output must carry exactly one token")
			}
			return nil
		}},
	}

	if p.params.Scope == ScopeProject {
		rules = append(rules, ledger.Rule{ID: "AUTH-AUTHZ-007", Apply: p.checkAdminSignature})
	}
	return rules
}

// checkAdminSignature resolves the protocol reference input and requires a
// protocol admin among the transaction's signers.
func (p *Policy) checkAdminSignature(ctx *ledger.ScriptContext) error {
	res := ledger.ResolveSingleInput(ctx.Reference, func(in ledger.Input) bool {
		for name, qty := range in.Output.Value.TokensOf(p.params.ProtocolPolicy) {
			if IsRefName(name) && qty > 0 {
				return true
			}
		}
		return false
	})
	if res.Status != ledger.ResolutionFound {
		return ledger.NewError(ledger.KindStructural, "AUTH-STR-008",
			fmt.Sprintf("protocol reference input resolution: %s", res.Status))
	}
	pd, err := datum.DecodeProtocol(res.Input.Output.Datum)
	if err != nil {
		return ledger.WrapError(ledger.KindStructural, "AUTH-STR-009",
			"protocol reference input carries no readable protocol datum", err)
	}
	for _, kh := range ctx.Signers {
		if pd.IsAdmin(kh) {
			return nil
		}
	}
	return ledger.NewError(ledger.KindAuthorization, "AUTH-AUTHZ-007",
		"project pairing requires a protocol admin signature")
}

func (p *Policy) burnRules() []ledger.Rule {
	return []ledger.Rule{
		{ID: "AUTH-STR-010", Apply: func(ctx *ledger.ScriptContext) error {
			minted := ctx.MintOf(p.own(ctx))
			if len(minted) == 0 {
				return ledger.NewError(ledger.KindStructural, "AUTH-STR-010", "burn must destroy at least one token")
			}
			for name, qty := range minted {
				if qty > 0 {
					return ledger.NewError(ledger.KindStructural, "AUTH-STR-010",
						fmt.Sprintf("burn may not mint %s", name))
				}
			}
			return nil
		}},
		{ID: "AUTH-STR-011", Apply: func(ctx *ledger.ScriptContext) error {
			own := p.own(ctx)
			for _, out := range ctx.Outputs {
				if out.Value.HasPolicy(own) {
					return ledger.NewError(ledger.KindStructural, "AUTH-STR-011",
						"no token of this policy may remain in any output")
				}
			}
			return nil
		}},
	}
}
