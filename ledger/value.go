package ledger

// PolicyID identifies a minting policy. Token quantities are always keyed by
// policy plus name; two tokens with the same name under different policies
// are unrelated assets.
type PolicyID string

// TokenName is the per-policy asset name.
type TokenName string

// AssetClass is the (policy, name) pair a quantity is keyed by.
type AssetClass struct {
	Policy PolicyID
	Name   TokenName
}

// Value is a multi-asset quantity map.
//
// A missing entry and a zero entry are equivalent; Equal and IsZero treat
// them identically. Mint values may carry negative quantities (burns);
// output values must not.
type Value map[AssetClass]int64

// Qty returns the quantity of the given asset, zero when absent.
func (v Value) Qty(policy PolicyID, name TokenName) int64 {
	return v[AssetClass{Policy: policy, Name: name}]
}

// Add adds qty to the asset, removing the entry when it reaches zero.
func (v Value) Add(policy PolicyID, name TokenName, qty int64) {
	ac := AssetClass{Policy: policy, Name: name}
	next := v[ac] + qty
	if next == 0 {
		delete(v, ac)
		return
	}
	v[ac] = next
}

// Clone returns an independent copy.
func (v Value) Clone() Value {
	out := make(Value, len(v))
	for ac, q := range v {
		if q != 0 {
			out[ac] = q
		}
	}
	return out
}

// TokensOf returns the non-zero quantities under one policy, keyed by name.
func (v Value) TokensOf(policy PolicyID) map[TokenName]int64 {
	out := make(map[TokenName]int64)
	for ac, q := range v {
		if ac.Policy == policy && q != 0 {
			out[ac.Name] = q
		}
	}
	return out
}

// HasPolicy reports whether any non-zero quantity exists under policy.
func (v Value) HasPolicy(policy PolicyID) bool {
	for ac, q := range v {
		if ac.Policy == policy && q != 0 {
			return true
		}
	}
	return false
}

// NonNegative reports whether no quantity is negative.
func (v Value) NonNegative() bool {
	for _, q := range v {
		if q < 0 {
			return false
		}
	}
	return true
}

// IsZero reports whether all quantities are zero.
func (v Value) IsZero() bool {
	for _, q := range v {
		if q != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether v and o carry the same quantities, ignoring
// explicit zero entries.
func (v Value) Equal(o Value) bool {
	for ac, q := range v {
		if q != o[ac] {
			return false
		}
	}
	for ac, q := range o {
		if q != v[ac] {
			return false
		}
	}
	return true
}
