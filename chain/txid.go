package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

var txEncMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	txEncMode = em
}

// txBody is the deterministic serialization a transaction id is derived
// from. Witnesses are excluded so signatures can cover the id.
type txBody struct {
	_         struct{} `cbor:",toarray"`
	Inputs    []string
	Reference []string
	Outputs   []txOut
	Mint      []txAsset
}

type txOut struct {
	_         struct{} `cbor:",toarray"`
	Key       string
	Script    string
	Assets    []txAsset
	Datum     []byte
	DatumHash string
}

type txAsset struct {
	_      struct{} `cbor:",toarray"`
	Policy string
	Name   string
	Qty    int64
}

func sortedAssets(v ledger.Value) []txAsset {
	out := make([]txAsset, 0, len(v))
	for ac, q := range v {
		if q != 0 {
			out = append(out, txAsset{Policy: string(ac.Policy), Name: string(ac.Name), Qty: q})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Policy == out[j].Policy {
			return out[i].Name < out[j].Name
		}
		return out[i].Policy < out[j].Policy
	})
	return out
}

func refStrings(refs []ledger.OutRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.String())
	}
	sort.Strings(out)
	return out
}

// TxID derives the deterministic hex transaction id for a transaction.
// Witnesses do not contribute; the id is what witnesses sign.
func (tx *Tx) TxID() (string, error) {
	body := txBody{
		Inputs:    refStrings(tx.Inputs),
		Reference: refStrings(tx.Reference),
		Mint:      sortedAssets(tx.Mint),
	}
	for _, o := range tx.Outputs {
		body.Outputs = append(body.Outputs, txOut{
			Key:       string(o.Address.Key),
			Script:    string(o.Address.Script),
			Assets:    sortedAssets(o.Value),
			Datum:     o.Datum,
			DatumHash: o.DatumHash,
		})
	}
	b, err := txEncMode.Marshal(body)
	if err != nil {
		return "", ledger.WrapError(ledger.KindEncoding, "LEDGER-ENC-001", "transaction body encoding failed", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
