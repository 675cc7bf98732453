package model

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/chain"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/greytoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/projectstate"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/protocolstate"
)

// BuildTx converts a TxRequest into a simulator transaction.
func BuildTx(req *TxRequest) (*chain.Tx, error) {
	if req == nil {
		return nil, NewError(ErrInvalidRequest, "nil request")
	}
	if len(req.Inputs) == 0 {
		return nil, NewError(ErrInvalidRequest, "transaction consumes no inputs")
	}

	tx := &chain.Tx{
		Mint:           assetsToValue(req.Mint),
		SpendRedeemers: make(map[ledger.OutRef]any),
		MintRedeemers:  make(map[ledger.PolicyID]any),
	}
	for _, r := range req.Inputs {
		tx.Inputs = append(tx.Inputs, outRef(r))
	}
	for _, r := range req.Reference {
		tx.Reference = append(tx.Reference, outRef(r))
	}
	for i, o := range req.Outputs {
		out, err := buildOutput(o)
		if err != nil {
			return nil, NewError(ErrInvalidRequest, fmt.Sprintf("output %d: %v", i, err))
		}
		tx.Outputs = append(tx.Outputs, out)
	}
	for _, sr := range req.SpendRedeemers {
		red, err := parseRedeemer(sr.Redeemer)
		if err != nil {
			return nil, err
		}
		tx.SpendRedeemers[outRef(sr.Input)] = red
	}
	for _, mr := range req.MintRedeemers {
		red, err := parseRedeemer(mr.Redeemer)
		if err != nil {
			return nil, err
		}
		tx.MintRedeemers[ledger.PolicyID(mr.PolicyID)] = red
	}
	for i, w := range req.Witnesses {
		wit, err := parseWitness(w)
		if err != nil {
			return nil, NewError(ErrInvalidRequest, fmt.Sprintf("witness %d: %v", i, err))
		}
		tx.Witnesses = append(tx.Witnesses, wit)
	}
	return tx, nil
}

// TxID derives the transaction id a witness must sign, without applying
// the transaction.
func TxID(req *TxRequest) (string, error) {
	tx, err := BuildTx(req)
	if err != nil {
		return "", err
	}
	id, err := tx.TxID()
	if err != nil {
		return "", NewError(ErrInternal, err.Error())
	}
	return id, nil
}

// Apply builds the transaction and applies it against the ledger,
// projecting structured rejections into coded errors.
func Apply(l *chain.Ledger, req *TxRequest) (*TxResponse, error) {
	tx, err := BuildTx(req)
	if err != nil {
		return nil, err
	}
	res, err := l.Apply(tx)
	if err != nil {
		var le *ledger.Error
		if errors.As(err, &le) {
			return nil, &CodedError{Code: ErrRejected, Message: le.Message, RuleID: le.RuleID}
		}
		return nil, NewError(ErrInternal, err.Error())
	}

	resp := &TxResponse{TxID: res.TxID}
	for _, ref := range res.Produced {
		resp.Produced = append(resp.Produced, OutRefDTO{TxID: ref.TxID, Index: ref.Index})
	}
	for _, doc := range res.Receipts {
		resp.Receipts = append(resp.Receipts, ReceiptDTO{CID: doc.CID, Bytes: string(doc.Bytes)})
	}
	return resp, nil
}

func outRef(r OutRefDTO) ledger.OutRef {
	return ledger.OutRef{TxID: r.TxID, Index: r.Index}
}

func assetsToValue(assets []AssetDTO) ledger.Value {
	v := make(ledger.Value, len(assets))
	for _, a := range assets {
		v.Add(ledger.PolicyID(a.PolicyID), ledger.TokenName(a.TokenName), a.Amount)
	}
	return v
}

func buildOutput(o OutputDTO) (ledger.Output, error) {
	addr := ledger.Address{Key: ledger.KeyHash(o.Address.Key), Script: ledger.ScriptHash(o.Address.Script)}
	if !addr.IsKey() && !addr.IsScript() {
		return ledger.Output{}, fmt.Errorf("address must set exactly one of key, script")
	}
	out := ledger.Output{
		Address:   addr,
		Value:     assetsToValue(o.Assets),
		DatumHash: o.DatumCID,
	}
	if o.DatumHex != "" {
		if o.DatumCID != "" {
			return ledger.Output{}, fmt.Errorf("datum_hex and datum_cid are mutually exclusive")
		}
		b, err := hex.DecodeString(o.DatumHex)
		if err != nil {
			return ledger.Output{}, fmt.Errorf("invalid datum_hex: %v", err)
		}
		out.Datum = b
	}
	return out, nil
}

func parseRedeemer(r RedeemerDTO) (any, error) {
	switch r.Unit {
	case "auth":
		switch r.Action {
		case "mint-pair":
			return authtoken.MintPair{}, nil
		case "burn-pair":
			return authtoken.BurnPair{}, nil
		}
	case "protocol":
		switch r.Action {
		case "update":
			return protocolstate.UpdateProtocol{}, nil
		case "end":
			return protocolstate.EndProtocol{}, nil
		}
	case "project":
		switch r.Action {
		case "update":
			return projectstate.UpdateProject{}, nil
		case "update-token":
			return projectstate.UpdateToken{Stakeholder: r.Stakeholder}, nil
		case "end":
			return projectstate.EndProject{}, nil
		}
	case "grey":
		switch r.Action {
		case "mint":
			return greytoken.Mint{}, nil
		case "burn":
			return greytoken.Burn{}, nil
		}
	}
	return nil, NewError(ErrInvalidRedeemer,
		fmt.Sprintf("no redeemer for unit %q action %q", r.Unit, r.Action))
}

func parseWitness(w WitnessDTO) (chain.Witness, error) {
	pub, err := base64.StdEncoding.DecodeString(w.PubKey)
	if err != nil {
		return chain.Witness{}, fmt.Errorf("invalid pub_key encoding: %v", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return chain.Witness{}, fmt.Errorf("invalid pub_key length %d", len(pub))
	}
	sig, err := base64.StdEncoding.DecodeString(w.Signature)
	if err != nil {
		return chain.Witness{}, fmt.Errorf("invalid signature encoding: %v", err)
	}
	return chain.Witness{PubKey: ed25519.PublicKey(pub), Signature: sig}, nil
}
