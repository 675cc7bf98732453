// Command txvectors prints a deterministic transaction-request vector:
// the protocol pairing as a signed JSON request, plus its transaction id.
// Useful as a fixture for clients speaking the model JSON boundary.
package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/keys"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/model"
)

func mustKeypair(seedByte byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = seedByte
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return pub, priv
}

func main() {
	adminPub, adminPriv := mustKeypair(0xA1)
	adminKH, err := keys.HashPubKey(adminPub)
	if err != nil {
		panic(err)
	}

	seed := ledger.OutRef{TxID: "genesis", Index: 0}
	suffix := authtoken.PairSuffix(seed)

	pd, err := datum.EncodeProtocol(&datum.ProtocolDatum{
		AdminKeys: []ledger.KeyHash{adminKH},
		Fee:       10,
		OracleID:  []byte("oracle-vector"),
	})
	if err != nil {
		panic(err)
	}

	const authPolicy = "auth-protocol-vector"
	req := &model.TxRequest{
		Inputs: []model.OutRefDTO{{TxID: seed.TxID, Index: seed.Index}},
		Outputs: []model.OutputDTO{
			{
				Address:  model.AddressDTO{Script: "protocol-validator"},
				Assets:   []model.AssetDTO{{PolicyID: authPolicy, TokenName: string(authtoken.RefName(suffix)), Amount: 1}},
				DatumHex: hex.EncodeToString(pd),
			},
			{
				Address: model.AddressDTO{Key: string(adminKH)},
				Assets:  []model.AssetDTO{{PolicyID: authPolicy, TokenName: string(authtoken.UserName(suffix)), Amount: 1}},
			},
		},
		Mint: []model.AssetDTO{
			{PolicyID: authPolicy, TokenName: string(authtoken.RefName(suffix)), Amount: 1},
			{PolicyID: authPolicy, TokenName: string(authtoken.UserName(suffix)), Amount: 1},
		},
		MintRedeemers: []model.MintRedeemerDTO{{
			PolicyID: authPolicy,
			Redeemer: model.RedeemerDTO{Unit: "auth", Action: "mint-pair"},
		}},
	}

	id, err := model.TxID(req)
	if err != nil {
		panic(err)
	}
	req.Witnesses = []model.WitnessDTO{{
		PubKey:    base64.StdEncoding.EncodeToString(adminPub),
		Signature: base64.StdEncoding.EncodeToString(ed25519.Sign(adminPriv, []byte(id))),
	}}

	out, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		panic(err)
	}

	fmt.Printf("TxID=%s\n", id)
	fmt.Printf("---BEGIN---\n%s\n---END---\n", out)
}
