// Package chain is a minimal host-ledger simulator for exercising the
// validation units end to end.
//
// It keeps the live record set, enforces single consumption of every
// OutRef, verifies witness signatures, resolves hashed datums through a
// datum store, runs every registered script a transaction triggers, and
// applies the transaction atomically. Accepted transactions optionally
// emit canonical receipts.
package chain

import (
	"crypto/ed25519"
	"fmt"
	"sort"
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/cidutil"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/keys"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/receipt"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage"
)

// Witness is a payment-key signature over the transaction id.
type Witness struct {
	PubKey    ed25519.PublicKey
	Signature []byte
}

// Tx is a transaction submitted to the simulator.
type Tx struct {
	Inputs    []ledger.OutRef
	Reference []ledger.OutRef
	Outputs   []ledger.Output
	Mint      ledger.Value

	// SpendRedeemers carries the redeemer for each consumed script input.
	// MintRedeemers carries the redeemer for each minting policy in Mint.
	SpendRedeemers map[ledger.OutRef]any
	MintRedeemers  map[ledger.PolicyID]any

	Witnesses []Witness
}

// SpendFunc evaluates a spending validator against a script context.
type SpendFunc func(ctx *ledger.ScriptContext, redeemer any) error

// MintFunc evaluates a minting policy against a script context.
type MintFunc func(ctx *ledger.ScriptContext, redeemer any) error

type spendEntry struct {
	name string
	fn   SpendFunc
}

type mintEntry struct {
	name string
	fn   MintFunc
}

// Options configures a Ledger.
type Options struct {
	// Datums resolves output DatumHash references before evaluation.
	// Nil disables resolution; hashed datums then fail to evaluate.
	Datums storage.Store

	// EmitReceipts enables canonical receipt emission per script run.
	EmitReceipts bool

	// Receipt configures receipt rendering (emitter id, signing key).
	Receipt receipt.RenderOptions
}

// Ledger is the in-memory host ledger. Safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	utxos map[ledger.OutRef]ledger.Output
	spent map[ledger.OutRef]string // OutRef -> consuming tx id

	spenders map[ledger.ScriptHash]spendEntry
	minters  map[ledger.PolicyID]mintEntry

	opts    Options
	genesis uint32

	receipts []*receipt.Document
}

// New returns an empty ledger.
func New(opts Options) *Ledger {
	return &Ledger{
		utxos:    make(map[ledger.OutRef]ledger.Output),
		spent:    make(map[ledger.OutRef]string),
		spenders: make(map[ledger.ScriptHash]spendEntry),
		minters:  make(map[ledger.PolicyID]mintEntry),
		opts:     opts,
	}
}

// RegisterSpender registers the validator controlling outputs at script
// hash h. name labels the validation unit in receipts.
func (l *Ledger) RegisterSpender(h ledger.ScriptHash, name string, fn SpendFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spenders[h] = spendEntry{name: name, fn: fn}
}

// RegisterMinter registers the minting policy for policy id p. name labels
// the validation unit in receipts.
func (l *Ledger) RegisterMinter(p ledger.PolicyID, name string, fn MintFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minters[p] = mintEntry{name: name, fn: fn}
}

// Fund creates a genesis output outside transaction validation. Intended
// for test and bootstrap setup only.
func (l *Ledger) Fund(out ledger.Output) ledger.OutRef {
	l.mu.Lock()
	defer l.mu.Unlock()
	ref := ledger.OutRef{TxID: "genesis", Index: l.genesis}
	l.genesis++
	l.utxos[ref] = out
	return ref
}

// Output returns the live output at ref.
func (l *Ledger) Output(ref ledger.OutRef) (ledger.Output, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out, ok := l.utxos[ref]
	return out, ok
}

// Receipts returns all receipts emitted so far, in acceptance order.
func (l *Ledger) Receipts() []*receipt.Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*receipt.Document(nil), l.receipts...)
}

// SignTx produces a witness over a transaction id.
func SignTx(txID string, priv ed25519.PrivateKey) Witness {
	return Witness{
		PubKey:    priv.Public().(ed25519.PublicKey),
		Signature: ed25519.Sign(priv, []byte(txID)),
	}
}

// Result reports an accepted transaction.
type Result struct {
	TxID     string
	Produced []ledger.OutRef
	Receipts []*receipt.Document
}

// Apply validates and applies a transaction atomically.
//
// Every script the transaction triggers runs against the same fully
// resolved context; on the first rejection nothing is applied. Record
// consumption is final: a second transaction naming an already consumed
// OutRef is rejected no matter what its scripts would say.
func (l *Ledger) Apply(tx *Tx) (*Result, error) {
	if len(tx.Inputs) == 0 {
		return nil, ledger.NewError(ledger.KindStructural, "LEDGER-STR-002", "transaction consumes no inputs")
	}
	for i, o := range tx.Outputs {
		if !o.Value.NonNegative() {
			return nil, ledger.NewError(ledger.KindStructural, "LEDGER-STR-003",
				fmt.Sprintf("output %d carries a negative quantity", i))
		}
		if !o.Address.IsKey() && !o.Address.IsScript() {
			return nil, ledger.NewError(ledger.KindStructural, "LEDGER-STR-004",
				fmt.Sprintf("output %d has an invalid address", i))
		}
	}

	txID, err := tx.TxID()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	inputs, err := l.resolveRefs(tx.Inputs)
	if err != nil {
		return nil, err
	}
	reference, err := l.resolveRefs(tx.Reference)
	if err != nil {
		return nil, err
	}

	signers, err := verifyWitnesses(txID, tx.Witnesses)
	if err != nil {
		return nil, err
	}

	base := ledger.ScriptContext{
		Inputs:    inputs,
		Reference: reference,
		Outputs:   tx.Outputs,
		Signers:   signers,
		Mint:      tx.Mint.Clone(),
	}

	var docs []*receipt.Document

	for _, in := range inputs {
		if !in.Output.Address.IsScript() {
			continue
		}
		entry, ok := l.spenders[in.Output.Address.Script]
		if !ok {
			return nil, ledger.NewError(ledger.KindStructural, "LEDGER-STR-008",
				fmt.Sprintf("no validator registered for script %s", in.Output.Address.Script))
		}
		ctx := base
		ref := in.Ref
		ctx.Purpose = ledger.Purpose{Spending: &ref}
		red := tx.SpendRedeemers[in.Ref]
		if err := entry.fn(&ctx, red); err != nil {
			return nil, err
		}
		if l.opts.EmitReceipts {
			doc, err := l.spendReceipt(txID, entry.name, red, in, tx)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}

	for _, policy := range mintPolicies(tx.Mint) {
		entry, ok := l.minters[policy]
		if !ok {
			return nil, ledger.NewError(ledger.KindStructural, "LEDGER-STR-009",
				fmt.Sprintf("no minting policy registered for %s", policy))
		}
		ctx := base
		ctx.Purpose = ledger.Purpose{Minting: policy}
		red := tx.MintRedeemers[policy]
		if err := entry.fn(&ctx, red); err != nil {
			return nil, err
		}
		if l.opts.EmitReceipts {
			doc, err := l.mintReceipt(txID, entry.name, red, tx)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}

	// Commit.
	for _, in := range inputs {
		delete(l.utxos, in.Ref)
		l.spent[in.Ref] = txID
	}
	produced := make([]ledger.OutRef, 0, len(tx.Outputs))
	for i, o := range tx.Outputs {
		ref := ledger.OutRef{TxID: txID, Index: uint32(i)}
		l.utxos[ref] = o
		produced = append(produced, ref)
	}
	l.receipts = append(l.receipts, docs...)

	return &Result{TxID: txID, Produced: produced, Receipts: docs}, nil
}

func (l *Ledger) resolveRefs(refs []ledger.OutRef) ([]ledger.Input, error) {
	seen := make(map[ledger.OutRef]bool, len(refs))
	out := make([]ledger.Input, 0, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			return nil, ledger.NewError(ledger.KindStructural, "LEDGER-STR-005",
				fmt.Sprintf("duplicate reference to %s", ref))
		}
		seen[ref] = true
		o, ok := l.utxos[ref]
		if !ok {
			if by, spent := l.spent[ref]; spent {
				return nil, ledger.NewError(ledger.KindStructural, "LEDGER-STR-006",
					fmt.Sprintf("%s already consumed by %s", ref, by))
			}
			return nil, ledger.NewError(ledger.KindStructural, "LEDGER-STR-007",
				fmt.Sprintf("unknown output %s", ref))
		}
		o, err := l.withDatum(o)
		if err != nil {
			return nil, err
		}
		out = append(out, ledger.Input{Ref: ref, Output: o})
	}
	return out, nil
}

// withDatum resolves a hashed datum to inline bytes through the store.
func (l *Ledger) withDatum(o ledger.Output) (ledger.Output, error) {
	if len(o.Datum) > 0 || o.DatumHash == "" {
		return o, nil
	}
	if l.opts.Datums == nil {
		return o, ledger.NewError(ledger.KindEncoding, "LEDGER-ENC-010",
			"hashed datum present but no datum store configured")
	}
	id, err := cid.Decode(o.DatumHash)
	if err != nil || !id.Defined() {
		return o, ledger.WrapError(ledger.KindEncoding, "LEDGER-ENC-011",
			fmt.Sprintf("invalid datum hash %q", o.DatumHash), err)
	}
	b, err := l.opts.Datums.Get(id)
	if err != nil {
		return o, ledger.WrapError(ledger.KindEncoding, "LEDGER-ENC-012",
			fmt.Sprintf("datum %s not resolvable", o.DatumHash), err)
	}
	o.Datum = b
	return o, nil
}

func verifyWitnesses(txID string, ws []Witness) ([]ledger.KeyHash, error) {
	seen := make(map[ledger.KeyHash]bool, len(ws))
	out := make([]ledger.KeyHash, 0, len(ws))
	for i, w := range ws {
		if len(w.PubKey) != ed25519.PublicKeySize {
			return nil, ledger.NewError(ledger.KindAuthorization, "LEDGER-AUTH-020",
				fmt.Sprintf("witness %d has an invalid public key", i))
		}
		if !ed25519.Verify(w.PubKey, []byte(txID), w.Signature) {
			return nil, ledger.NewError(ledger.KindAuthorization, "LEDGER-AUTH-021",
				fmt.Sprintf("witness %d signature did not verify", i))
		}
		kh, err := keys.HashPubKey(w.PubKey)
		if err != nil {
			return nil, ledger.WrapError(ledger.KindAuthorization, "LEDGER-AUTH-022",
				fmt.Sprintf("witness %d key hash failed", i), err)
		}
		if !seen[kh] {
			seen[kh] = true
			out = append(out, kh)
		}
	}
	return out, nil
}

func mintPolicies(v ledger.Value) []ledger.PolicyID {
	seen := make(map[ledger.PolicyID]bool)
	var out []ledger.PolicyID
	for ac, q := range v {
		if q != 0 && !seen[ac.Policy] {
			seen[ac.Policy] = true
			out = append(out, ac.Policy)
		}
	}
	// Deterministic run order.
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func actionName(red any) string {
	if n, ok := red.(interface{ ActionName() string }); ok {
		return n.ActionName()
	}
	return "spend"
}

func mintLines(v ledger.Value) []receipt.MintLine {
	var out []receipt.MintLine
	for _, a := range sortedAssets(v) {
		out = append(out, receipt.MintLine{PolicyID: a.Policy, TokenName: a.Name, Amount: a.Qty})
	}
	return out
}

func (l *Ledger) spendReceipt(txID, unit string, red any, in ledger.Input, tx *Tx) (*receipt.Document, error) {
	tr := &receipt.Transition{
		TxID:          txID,
		Unit:          unit,
		Action:        actionName(red),
		ConsumedRef:   in.Ref.String(),
		ProducedIndex: -1,
		Mint:          mintLines(tx.Mint),
		Signers:       signerStrings(tx),
	}
	if len(in.Output.Datum) > 0 {
		tr.DatumBeforeCID = cidutil.CIDv1RawSHA256(in.Output.Datum)
	}
	for i, o := range tx.Outputs {
		if o.Address == in.Output.Address && len(o.Datum) > 0 {
			tr.ProducedIndex = i
			tr.DatumAfterCID = cidutil.CIDv1RawSHA256(o.Datum)
			break
		}
	}
	return receipt.RenderDocument(tr, l.opts.Receipt)
}

func (l *Ledger) mintReceipt(txID, unit string, red any, tx *Tx) (*receipt.Document, error) {
	action := "mint"
	if n, ok := red.(interface{ ActionName() string }); ok {
		action = n.ActionName()
	}
	tr := &receipt.Transition{
		TxID:          txID,
		Unit:          unit,
		Action:        action,
		ProducedIndex: -1,
		Mint:          mintLines(tx.Mint),
		Signers:       signerStrings(tx),
	}
	return receipt.RenderDocument(tr, l.opts.Receipt)
}

func signerStrings(tx *Tx) []string {
	var out []string
	for _, w := range tx.Witnesses {
		kh, err := keys.HashPubKey(w.PubKey)
		if err != nil {
			continue
		}
		out = append(out, string(kh))
	}
	return out
}
