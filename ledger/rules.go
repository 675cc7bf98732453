package ledger

// Rule is an explicit, named validation rule over a script context.
//
// ID must be stable across versions.
// Apply must be deterministic and side-effect free.
type Rule struct {
	ID    string
	Apply func(*ScriptContext) error
}

func (r Rule) apply(c *ScriptContext) error {
	if r.Apply == nil {
		return NewError(KindInternal, "LEDGER-INTERNAL-001", "nil rule Apply")
	}
	return r.Apply(c)
}

// ValidateRules runs rules in order, returning the first failure.
//
// This is the on-chain semantics: one rejection fails the whole
// transaction. Rule order is the evaluation order; keep it stable.
func ValidateRules(c *ScriptContext, rules []Rule) error {
	for _, r := range rules {
		if err := r.apply(c); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRulesAll runs all rules in order, returning a deterministically
// ordered slice of every violation. Intended for tooling diagnostics, not
// for acceptance decisions.
func ValidateRulesAll(c *ScriptContext, rules []Rule) []error {
	var out []error
	for _, r := range rules {
		if err := r.apply(c); err != nil {
			out = append(out, err)
		}
	}
	return out
}

// Mode selects how aggressively rule evaluation reports failures.
//
// FirstFailure mirrors on-chain evaluation: the first rejection is the
// answer. CollectAll surfaces every violation and exists for off-chain
// diagnosis only; acceptance is identical under both modes.
type Mode int

const (
	FirstFailure Mode = iota
	CollectAll
)

// Evaluate runs rules under the given mode. The returned slice is nil
// exactly when the transaction is accepted.
func Evaluate(c *ScriptContext, rules []Rule, mode Mode) []error {
	if mode == CollectAll {
		return ValidateRulesAll(c, rules)
	}
	if err := ValidateRules(c, rules); err != nil {
		return []error{err}
	}
	return nil
}
