package ledger

import "fmt"

// KeyHash is the hash of a payment verification key, as produced by
// keys.HashPubKey. The host ledger verifies the underlying signatures; the
// validation units only ever compare hashes.
type KeyHash string

// ScriptHash identifies a validator script address.
type ScriptHash string

// Address is the controlling party of an output: a public key (Key set) or
// a validator script (Script set). Exactly one side is set; the zero
// Address is invalid.
type Address struct {
	Key    KeyHash
	Script ScriptHash
}

// IsKey reports whether the address is controlled by a public key.
func (a Address) IsKey() bool { return a.Key != "" && a.Script == "" }

// IsScript reports whether the address is controlled by a validator script.
func (a Address) IsScript() bool { return a.Script != "" && a.Key == "" }

// OutRef names one output of one transaction. It is the unit of
// single-consumption: the host ledger admits at most one consumer of any
// OutRef, ever.
type OutRef struct {
	TxID  string
	Index uint32
}

func (r OutRef) String() string {
	return fmt.Sprintf("%s#%d", r.TxID, r.Index)
}

// Output is a state record as produced by a transaction: a value, an
// optional attached datum, and a controlling address.
//
// Datum carries canonical datum bytes inline. DatumHash may carry the CID
// of the datum instead, to be resolved through a datum store before
// evaluation; validators only ever see resolved bytes.
type Output struct {
	Address   Address
	Value     Value
	Datum     []byte
	DatumHash string
}

// Input is a consumed or referenced output together with the OutRef it was
// created under.
type Input struct {
	Ref    OutRef
	Output Output
}

// Purpose names the script being evaluated: a minting policy (Minting set)
// or a spending validator (Spending set).
type Purpose struct {
	Minting  PolicyID
	Spending *OutRef
}

// ScriptContext is the entire input of one validation unit: consumed
// inputs, read-only reference inputs, produced outputs, required signer key
// hashes, and the mint multiset. It is presented once per transaction with
// no suspension or retry; the unit answers accept (nil) or reject (error)
// and nothing else.
type ScriptContext struct {
	Inputs    []Input
	Reference []Input
	Outputs   []Output
	Signers   []KeyHash
	Mint      Value
	Purpose   Purpose
}

// SignedBy reports whether kh is among the required signers.
func (c *ScriptContext) SignedBy(kh KeyHash) bool {
	for _, s := range c.Signers {
		if s == kh {
			return true
		}
	}
	return false
}

// Consumes reports whether ref is among the consumed inputs.
func (c *ScriptContext) Consumes(ref OutRef) bool {
	for _, in := range c.Inputs {
		if in.Ref == ref {
			return true
		}
	}
	return false
}

// MintOf returns the non-zero minted (positive) and burned (negative)
// quantities under one policy, keyed by token name.
func (c *ScriptContext) MintOf(policy PolicyID) map[TokenName]int64 {
	return c.Mint.TokensOf(policy)
}
