// Package receipt implements the canonical transition receipt format.
//
// A receipt is a line-oriented text document binding one accepted state
// transition to its transaction, the datums it consumed and produced, and
// the tokens it minted or burned. Receipts are rendered canonically so
// identical transitions always produce identical bytes, and therefore
// identical CIDs.
package receipt

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	Preamble  = "-----BEGIN TERRASACHA RECEIPT-----"
	Postamble = "-----END TERRASACHA RECEIPT-----"
)

// MintLine records one asset moved by the transition's mint field.
// Amount is negative for burns.
type MintLine struct {
	PolicyID  string
	TokenName string
	Amount    int64
}

// Transition describes one accepted validator or policy transition.
type Transition struct {
	TxID   string // hex transaction id
	Unit   string // validation unit name, e.g. "protocol", "project", "grey"
	Action string // redeemer action, e.g. "update", "end", "mint", "burn"

	// Suffix is the authorization pair suffix when the transition involves
	// an authorized state record; empty otherwise.
	Suffix string

	// ConsumedRef is the consumed state input (tx#idx) when the transition
	// spends a record; empty for pure reference-input transitions.
	ConsumedRef string

	// ProducedIndex is the output index carrying the successor record;
	// negative when the transition produces none (terminal actions).
	ProducedIndex int

	// DatumBeforeCID / DatumAfterCID identify the canonical datum bytes
	// before and after the transition; either may be empty.
	DatumBeforeCID string
	DatumAfterCID  string

	Mint    []MintLine
	Signers []string // hex key hashes
}

type RenderOptions struct {
	EmitterID string
	EmittedAt time.Time // informational only; zero means omit

	// Optional receipt signing. If PrivateKey is set, the output will include
	// a CRYPTO section populated and Signature computed over the receipt
	// bytes excluding the Signature: line.
	EmitterKey string
	PrivateKey ed25519.PrivateKey
}

// Render produces a canonical receipt document for one transition.
// Sections are always present and ordering is deterministic.
func Render(tr *Transition, opts RenderOptions) []byte {
	emitterID := opts.EmitterID
	if emitterID == "" {
		emitterID = "terrasacha-ledger-reference"
	}

	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n")

	// META
	sb.WriteString("META\n")
	metaLines := []string{
		"Emitter-ID: " + emitterID,
		"Spec: terrasacha-receipt-1",
		"Version: 1",
	}
	if !opts.EmittedAt.IsZero() {
		metaLines = append(metaLines, "Emitted-At: "+opts.EmittedAt.UTC().Format(time.RFC3339))
	}
	sort.Strings(metaLines)
	for _, l := range metaLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// TRANSITION
	sb.WriteString("TRANSITION\n")
	trLines := []string{
		"Action: " + tr.Action,
		"Tx-ID: " + tr.TxID,
		"Unit: " + tr.Unit,
	}
	if tr.Suffix != "" {
		trLines = append(trLines, "Suffix: "+tr.Suffix)
	}
	if tr.ConsumedRef != "" {
		trLines = append(trLines, "Consumed-Input: "+tr.ConsumedRef)
	}
	if tr.ProducedIndex >= 0 {
		trLines = append(trLines, "Produced-Index: "+strconv.Itoa(tr.ProducedIndex))
	}
	sort.Strings(trLines)
	for _, l := range trLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// DATUMS
	sb.WriteString("DATUMS\n")
	var datumLines []string
	if tr.DatumBeforeCID != "" {
		datumLines = append(datumLines, "Datum-Before-CID: "+tr.DatumBeforeCID)
	}
	if tr.DatumAfterCID != "" {
		datumLines = append(datumLines, "Datum-After-CID: "+tr.DatumAfterCID)
	}
	sort.Strings(datumLines)
	for _, l := range datumLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// MINT
	sb.WriteString("MINT\n")
	mint := append([]MintLine(nil), tr.Mint...)
	sort.Slice(mint, func(i, j int) bool {
		if mint[i].PolicyID == mint[j].PolicyID {
			return mint[i].TokenName < mint[j].TokenName
		}
		return mint[i].PolicyID < mint[j].PolicyID
	})
	for _, m := range mint {
		sb.WriteString("Policy-ID: ")
		sb.WriteString(m.PolicyID)
		sb.WriteString("\n")
		sb.WriteString("Token-Name: ")
		sb.WriteString(m.TokenName)
		sb.WriteString("\n")
		sb.WriteString("Amount: ")
		sb.WriteString(strconv.FormatInt(m.Amount, 10))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// SIGNERS
	sb.WriteString("SIGNERS\n")
	signers := append([]string(nil), tr.Signers...)
	sort.Strings(signers)
	for _, s := range signers {
		sb.WriteString("Signer: ")
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// CRYPTO (left empty for unsigned receipts)
	sb.WriteString("CRYPTO\n")
	cryptoLines := []string{}
	if opts.EmitterKey != "" {
		cryptoLines = append(cryptoLines,
			"Hash-Alg: sha256",
			"Emitter-Key: "+opts.EmitterKey,
			"Signature-Alg: ed25519",
			"Signature: 0",
		)
	}
	sort.Strings(cryptoLines)
	for _, l := range cryptoLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(Postamble)
	sb.WriteString("\n")
	out := []byte(sb.String())

	if len(opts.PrivateKey) > 0 && opts.EmitterKey != "" {
		sig, err := signReceipt(out, opts.PrivateKey)
		if err == nil {
			out = []byte(strings.Replace(string(out), "Signature: 0", "Signature: "+sig, 1))
		}
	}

	return out
}

// RenderSigned renders a receipt with a required ed25519 signature.
// Unlike Render, it fails explicitly when signing cannot be performed.
func RenderSigned(tr *Transition, opts RenderOptions) ([]byte, error) {
	if opts.EmitterKey == "" {
		return nil, errors.New("receipt: signing requires EmitterKey")
	}
	if len(opts.PrivateKey) != ed25519.PrivateKeySize {
		return nil, errors.New("receipt: signing requires an ed25519 private key")
	}
	out := Render(tr, opts)
	// Render silently leaves the placeholder when signing fails; reject that here.
	if strings.Contains(string(out), "Signature: 0\n") {
		return nil, errors.New("receipt: signing failed")
	}
	return out, nil
}

func signReceipt(receiptBytes []byte, privateKey ed25519.PrivateKey) (string, error) {
	scope, err := signatureScope(receiptBytes)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(scope)
	sig := ed25519.Sign(privateKey, digest[:])
	return base64.StdEncoding.EncodeToString(sig), nil
}

func signatureScope(receiptBytes []byte) ([]byte, error) {
	lines := strings.Split(string(receiptBytes), "\n")
	var out []string
	removed := false
	for _, l := range lines {
		if strings.HasPrefix(l, "Signature: ") {
			if removed {
				return nil, errors.New("multiple Signature lines")
			}
			removed = true
			continue
		}
		out = append(out, l)
	}
	if !removed {
		return nil, errors.New("missing Signature line")
	}
	return []byte(strings.Join(out, "\n")), nil
}

func sectionLines(receiptBytes []byte, section string) ([]string, error) {
	lines := strings.Split(string(receiptBytes), "\n")
	idx := -1
	for i, l := range lines {
		if l == section {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("missing section %q", section)
	}
	var out []string
	for i := idx + 1; i < len(lines); i++ {
		if lines[i] == "" {
			break
		}
		out = append(out, lines[i])
	}
	return out, nil
}

func fieldValues(lines []string, key string) []string {
	prefix := key + ": "
	var out []string
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			out = append(out, strings.TrimPrefix(l, prefix))
		}
	}
	return out
}

func singleFieldFromSection(receiptBytes []byte, section, key string) (string, bool, error) {
	lines, err := sectionLines(receiptBytes, section)
	if err != nil {
		return "", false, err
	}
	vals := fieldValues(lines, key)
	if len(vals) == 0 {
		return "", false, nil
	}
	if len(vals) > 1 {
		return "", false, fmt.Errorf("multiple %s: %s", section, key)
	}
	if vals[0] == "" {
		return "", false, fmt.Errorf("empty %s: %s", section, key)
	}
	return vals[0], true, nil
}
