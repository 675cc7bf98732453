package model

// OutRefDTO names one output of one transaction.
type OutRefDTO struct {
	TxID  string `json:"tx_id"`
	Index uint32 `json:"index"`
}

// AddressDTO is a key or script address; exactly one field is set.
type AddressDTO struct {
	Key    string `json:"key,omitempty"`
	Script string `json:"script,omitempty"`
}

// AssetDTO is one (policy, name, quantity) entry of a value or mint field.
type AssetDTO struct {
	PolicyID  string `json:"policy_id"`
	TokenName string `json:"token_name"`
	Amount    int64  `json:"amount"`
}

// OutputDTO is a produced output. DatumHex carries canonical datum bytes
// inline; DatumCID defers them to the datum store.
type OutputDTO struct {
	Address  AddressDTO `json:"address"`
	Assets   []AssetDTO `json:"assets,omitempty"`
	DatumHex string     `json:"datum_hex,omitempty"`
	DatumCID string     `json:"datum_cid,omitempty"`
}

// RedeemerDTO names the validation unit and the action it is asked to
// authorize. Stakeholder is only meaningful for project update-token.
type RedeemerDTO struct {
	Unit        string `json:"unit"`
	Action      string `json:"action"`
	Stakeholder string `json:"stakeholder,omitempty"`
}

// SpendRedeemerDTO attaches a redeemer to a consumed input.
type SpendRedeemerDTO struct {
	Input    OutRefDTO   `json:"input"`
	Redeemer RedeemerDTO `json:"redeemer"`
}

// MintRedeemerDTO attaches a redeemer to a minting policy.
type MintRedeemerDTO struct {
	PolicyID string      `json:"policy_id"`
	Redeemer RedeemerDTO `json:"redeemer"`
}

// WitnessDTO is a payment-key witness: base64 ed25519 public key and
// base64 signature over the transaction id.
type WitnessDTO struct {
	PubKey    string `json:"pub_key"`
	Signature string `json:"signature"`
}

// TxRequest is the JSON transaction submitted to the simulator.
type TxRequest struct {
	Inputs         []OutRefDTO        `json:"inputs"`
	Reference      []OutRefDTO        `json:"reference,omitempty"`
	Outputs        []OutputDTO        `json:"outputs"`
	Mint           []AssetDTO         `json:"mint,omitempty"`
	SpendRedeemers []SpendRedeemerDTO `json:"spend_redeemers,omitempty"`
	MintRedeemers  []MintRedeemerDTO  `json:"mint_redeemers,omitempty"`
	Witnesses      []WitnessDTO       `json:"witnesses,omitempty"`
}

// ReceiptDTO is one emitted receipt: canonical bytes plus bound CID.
type ReceiptDTO struct {
	CID   string `json:"cid"`
	Bytes string `json:"bytes"` // canonical receipt text
}

// TxResponse reports an accepted transaction.
type TxResponse struct {
	TxID     string       `json:"tx_id"`
	Produced []OutRefDTO  `json:"produced"`
	Receipts []ReceiptDTO `json:"receipts,omitempty"`
}
