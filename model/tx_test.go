package model

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/chain"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/greytoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/projectstate"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/protocolstate"
)

func validRequest() *TxRequest {
	return &TxRequest{
		Inputs: []OutRefDTO{{TxID: "genesis", Index: 0}},
		Outputs: []OutputDTO{{
			Address: AddressDTO{Key: "kh-wallet"},
			Assets:  []AssetDTO{{PolicyID: "p", TokenName: "T", Amount: 5}},
		}},
	}
}

func codeOf(t *testing.T, err error) ErrorCode {
	t.Helper()
	var ce *CodedError
	if !errors.As(err, &ce) {
		t.Fatalf("not a coded error: %v", err)
	}
	return ce.Code
}

func TestBuildTxValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *TxRequest
		code ErrorCode
	}{
		{"nil request", nil, ErrInvalidRequest},
		{"no inputs", &TxRequest{Outputs: validRequest().Outputs}, ErrInvalidRequest},
		{
			"addressless output",
			func() *TxRequest {
				r := validRequest()
				r.Outputs[0].Address = AddressDTO{}
				return r
			}(),
			ErrInvalidRequest,
		},
		{
			"key and script both set",
			func() *TxRequest {
				r := validRequest()
				r.Outputs[0].Address = AddressDTO{Key: "kh", Script: "sh"}
				return r
			}(),
			ErrInvalidRequest,
		},
		{
			"datum_hex and datum_cid together",
			func() *TxRequest {
				r := validRequest()
				r.Outputs[0].DatumHex = "deadbeef"
				r.Outputs[0].DatumCID = "bafkreibogus"
				return r
			}(),
			ErrInvalidRequest,
		},
		{
			"invalid datum_hex",
			func() *TxRequest {
				r := validRequest()
				r.Outputs[0].DatumHex = "not hex"
				return r
			}(),
			ErrInvalidRequest,
		},
		{
			"unknown redeemer",
			func() *TxRequest {
				r := validRequest()
				r.MintRedeemers = []MintRedeemerDTO{{
					PolicyID: "p",
					Redeemer: RedeemerDTO{Unit: "grey", Action: "reissue"},
				}}
				return r
			}(),
			ErrInvalidRedeemer,
		},
		{
			"witness pub_key not base64",
			func() *TxRequest {
				r := validRequest()
				r.Witnesses = []WitnessDTO{{PubKey: "***", Signature: ""}}
				return r
			}(),
			ErrInvalidRequest,
		},
		{
			"witness pub_key wrong length",
			func() *TxRequest {
				r := validRequest()
				r.Witnesses = []WitnessDTO{{
					PubKey:    base64.StdEncoding.EncodeToString([]byte("short")),
					Signature: "",
				}}
				return r
			}(),
			ErrInvalidRequest,
		},
		{
			"witness signature not base64",
			func() *TxRequest {
				pub, _, err := ed25519.GenerateKey(rand.Reader)
				if err != nil {
					t.Fatal(err)
				}
				r := validRequest()
				r.Witnesses = []WitnessDTO{{
					PubKey:    base64.StdEncoding.EncodeToString(pub),
					Signature: "***",
				}}
				return r
			}(),
			ErrInvalidRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTx(tt.req)
			if err == nil {
				t.Fatal("invalid request accepted")
			}
			if got := codeOf(t, err); got != tt.code {
				t.Fatalf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestBuildTxMapsFields(t *testing.T) {
	req := validRequest()
	req.Reference = []OutRefDTO{{TxID: "other", Index: 2}}
	req.Mint = []AssetDTO{{PolicyID: "grey", TokenName: "GREYCO2", Amount: -7}}
	req.Outputs[0].DatumHex = "a101"
	req.SpendRedeemers = []SpendRedeemerDTO{{
		Input:    req.Inputs[0],
		Redeemer: RedeemerDTO{Unit: "project", Action: "update-token", Stakeholder: "Owner"},
	}}
	req.MintRedeemers = []MintRedeemerDTO{{
		PolicyID: "grey",
		Redeemer: RedeemerDTO{Unit: "grey", Action: "burn"},
	}}

	tx, err := BuildTx(req)
	if err != nil {
		t.Fatal(err)
	}
	if tx.Reference[0] != (ledger.OutRef{TxID: "other", Index: 2}) {
		t.Fatalf("reference = %v", tx.Reference)
	}
	if got := tx.Mint.Qty("grey", "GREYCO2"); got != -7 {
		t.Fatalf("mint qty = %d", got)
	}
	if got := string(tx.Outputs[0].Datum); got != "\xa1\x01" {
		t.Fatalf("datum = %x", got)
	}
	in := ledger.OutRef{TxID: "genesis", Index: 0}
	if red, ok := tx.SpendRedeemers[in].(projectstate.UpdateToken); !ok || red.Stakeholder != "Owner" {
		t.Fatalf("spend redeemer = %#v", tx.SpendRedeemers[in])
	}
	if _, ok := tx.MintRedeemers["grey"].(greytoken.Burn); !ok {
		t.Fatalf("mint redeemer = %#v", tx.MintRedeemers["grey"])
	}
}

func TestParseRedeemer(t *testing.T) {
	tests := []struct {
		unit, action string
		want         any
	}{
		{"auth", "mint-pair", authtoken.MintPair{}},
		{"auth", "burn-pair", authtoken.BurnPair{}},
		{"protocol", "update", protocolstate.UpdateProtocol{}},
		{"protocol", "end", protocolstate.EndProtocol{}},
		{"project", "update", projectstate.UpdateProject{}},
		{"project", "update-token", projectstate.UpdateToken{Stakeholder: "Buffer"}},
		{"project", "end", projectstate.EndProject{}},
		{"grey", "mint", greytoken.Mint{}},
		{"grey", "burn", greytoken.Burn{}},
	}
	for _, tt := range tests {
		t.Run(tt.unit+"/"+tt.action, func(t *testing.T) {
			got, err := parseRedeemer(RedeemerDTO{Unit: tt.unit, Action: tt.action, Stakeholder: "Buffer"})
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("parseRedeemer = %#v, want %#v", got, tt.want)
			}
		})
	}

	for _, bad := range []RedeemerDTO{
		{Unit: "auth", Action: "mint"},
		{Unit: "grey", Action: "mint-pair"},
		{Unit: "oracle", Action: "update"},
		{},
	} {
		if _, err := parseRedeemer(bad); err == nil {
			t.Fatalf("accepted %+v", bad)
		} else if codeOf(t, err) != ErrInvalidRedeemer {
			t.Fatalf("code for %+v: %v", bad, err)
		}
	}
}

func TestTxIDAgreesWithChain(t *testing.T) {
	req := validRequest()
	id, err := TxID(req)
	if err != nil {
		t.Fatal(err)
	}
	tx, err := BuildTx(req)
	if err != nil {
		t.Fatal(err)
	}
	want, err := tx.TxID()
	if err != nil {
		t.Fatal(err)
	}
	if id != want {
		t.Fatalf("TxID = %s, want %s", id, want)
	}
}

func TestApplyProjectsRejections(t *testing.T) {
	l := chain.New(chain.Options{})

	req := &TxRequest{
		Inputs:  []OutRefDTO{{TxID: "nowhere", Index: 9}},
		Outputs: validRequest().Outputs,
	}
	_, err := Apply(l, req)
	var ce *CodedError
	if !errors.As(err, &ce) {
		t.Fatalf("not a coded error: %v", err)
	}
	if ce.Code != ErrRejected || ce.RuleID != "LEDGER-STR-007" {
		t.Fatalf("coded error = %+v", ce)
	}
}

func TestApplyRoundtrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	l := chain.New(chain.Options{})
	funded := l.Fund(ledger.Output{Address: ledger.Address{Key: "kh-wallet"}, Value: ledger.Value{}})

	req := &TxRequest{
		Inputs:  []OutRefDTO{{TxID: funded.TxID, Index: funded.Index}},
		Outputs: []OutputDTO{{Address: AddressDTO{Key: "kh-receiver"}}},
	}
	id, err := TxID(req)
	if err != nil {
		t.Fatal(err)
	}
	req.Witnesses = []WitnessDTO{{
		PubKey:    base64.StdEncoding.EncodeToString(pub),
		Signature: base64.StdEncoding.EncodeToString(ed25519.Sign(priv, []byte(id))),
	}}

	resp, err := Apply(l, req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.TxID != id {
		t.Fatalf("response tx id = %s, want %s", resp.TxID, id)
	}
	if len(resp.Produced) != 1 || resp.Produced[0].TxID != id {
		t.Fatalf("produced = %+v", resp.Produced)
	}
	if _, ok := l.Output(ledger.OutRef{TxID: id, Index: 0}); !ok {
		t.Fatal("produced output not live on the ledger")
	}
}
