package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Canonicalize is the mandatory canonicalization choke point for receipts.
//
// Receipts MUST be canonical before CID derivation or signature verification.
// This function enforces byte-level canonical rules by rejecting any
// non-canonical input.
func Canonicalize(input []byte) ([]byte, error) {
	if !utf8.Valid(input) {
		return nil, errors.New("receipt must be valid UTF-8")
	}
	if bytes.HasPrefix(input, []byte{0xEF, 0xBB, 0xBF}) {
		return nil, errors.New("BOM not allowed")
	}
	if bytes.Contains(input, []byte("\r")) {
		return nil, errors.New("CR line endings not allowed")
	}
	if len(input) == 0 {
		return nil, errors.New("empty receipt")
	}
	// Canonical receipts emitted by Render always end with a newline.
	if input[len(input)-1] != '\n' {
		return nil, errors.New("missing trailing newline")
	}
	for _, line := range bytes.Split(input, []byte("\n")) {
		if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
			return nil, errors.New("trailing whitespace forbidden")
		}
	}

	if err := validateCanonical(string(input)); err != nil {
		return nil, err
	}

	// Return a copy to prevent caller mutation.
	return append([]byte(nil), input...), nil
}

var sectionOrder = []string{"META", "TRANSITION", "DATUMS", "MINT", "SIGNERS", "CRYPTO"}

func validateCanonical(doc string) error {
	lines := strings.Split(doc, "\n")
	// Canonical receipts have a trailing newline, so last line is always empty.
	if len(lines) < 3 {
		return errors.New("receipt too short")
	}
	if lines[0] != Preamble {
		return errors.New("missing receipt preamble")
	}
	if lines[len(lines)-1] != "" {
		return errors.New("missing trailing newline")
	}
	if lines[len(lines)-2] != Postamble {
		return errors.New("missing receipt postamble")
	}

	i := 1
	for _, sec := range sectionOrder {
		if i >= len(lines)-2 {
			return fmt.Errorf("missing section %q", sec)
		}
		if lines[i] != sec {
			return fmt.Errorf("sections missing or out of order (expected %q got %q)", sec, lines[i])
		}
		i++
		start := i
		for i < len(lines)-2 && lines[i] != "" {
			i++
		}
		if i >= len(lines)-2 {
			return fmt.Errorf("missing blank line after section %q", sec)
		}
		if err := validateSection(sec, lines[start:i]); err != nil {
			return err
		}
		// Consume the required section terminator blank line.
		i++
	}

	if i != len(lines)-2 {
		return errors.New("unexpected content before postamble")
	}
	return nil
}

func validateSection(section string, body []string) error {
	switch section {
	case "META":
		return validateMeta(body)
	case "TRANSITION":
		return validateTransition(body)
	case "DATUMS":
		return validateDatums(body)
	case "MINT":
		return validateMint(body)
	case "SIGNERS":
		return validateSigners(body)
	case "CRYPTO":
		return validateCrypto(body)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
}

func validateSortedStrict(lines []string) error {
	seen := make(map[string]bool)
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if l == "" {
			return errors.New("empty line inside section")
		}
		if seen[l] {
			return errors.New("duplicate line")
		}
		seen[l] = true
		if i > 0 && !(lines[i-1] < lines[i]) {
			return errors.New("lines not sorted lexicographically")
		}
	}
	return nil
}

func validateKVLine(line string) (string, string, error) {
	if !strings.Contains(line, ": ") {
		return "", "", errors.New("invalid key-value formatting")
	}
	k, v, _ := strings.Cut(line, ": ")
	if k == "" {
		return "", "", errors.New("empty key")
	}
	if v == "" {
		return "", "", errors.New("empty value")
	}
	return k, v, nil
}

func validateMeta(body []string) error {
	if err := validateSortedStrict(body); err != nil {
		return fmt.Errorf("META: %w", err)
	}
	need := map[string]bool{"Emitter-ID": false, "Spec": false, "Version": false}
	for _, l := range body {
		k, _, err := validateKVLine(l)
		if err != nil {
			return fmt.Errorf("META: %w", err)
		}
		if _, ok := need[k]; ok {
			need[k] = true
		}
	}
	for k, ok := range need {
		if !ok {
			return fmt.Errorf("META: missing %s", k)
		}
	}
	return nil
}

func validateTransition(body []string) error {
	if err := validateSortedStrict(body); err != nil {
		return fmt.Errorf("TRANSITION: %w", err)
	}
	need := map[string]bool{"Action": false, "Tx-ID": false, "Unit": false}
	allowed := map[string]bool{
		"Action": true, "Tx-ID": true, "Unit": true,
		"Suffix": true, "Consumed-Input": true, "Produced-Index": true,
	}
	for _, l := range body {
		k, _, err := validateKVLine(l)
		if err != nil {
			return fmt.Errorf("TRANSITION: %w", err)
		}
		if !allowed[k] {
			return fmt.Errorf("TRANSITION: unexpected key %q", k)
		}
		if _, ok := need[k]; ok {
			need[k] = true
		}
	}
	for k, ok := range need {
		if !ok {
			return fmt.Errorf("TRANSITION: missing %s", k)
		}
	}
	return nil
}

func validateDatums(body []string) error {
	if err := validateSortedStrict(body); err != nil {
		return fmt.Errorf("DATUMS: %w", err)
	}
	allowed := map[string]bool{"Datum-After-CID": true, "Datum-Before-CID": true}
	for _, l := range body {
		k, _, err := validateKVLine(l)
		if err != nil {
			return fmt.Errorf("DATUMS: %w", err)
		}
		if !allowed[k] {
			return fmt.Errorf("DATUMS: unexpected key %q", k)
		}
	}
	return nil
}

type mintRecord struct {
	policy string
	token  string
}

func validateMint(body []string) error {
	if len(body)%3 != 0 {
		return errors.New("MINT: records must be Policy-ID/Token-Name/Amount triples")
	}
	var recs []mintRecord
	for i := 0; i < len(body); i += 3 {
		if !strings.HasPrefix(body[i], "Policy-ID: ") {
			return errors.New("MINT: expected Policy-ID")
		}
		if !strings.HasPrefix(body[i+1], "Token-Name: ") {
			return errors.New("MINT: expected Token-Name")
		}
		if !strings.HasPrefix(body[i+2], "Amount: ") {
			return errors.New("MINT: expected Amount")
		}
		_, policy, err := validateKVLine(body[i])
		if err != nil {
			return fmt.Errorf("MINT: %w", err)
		}
		_, token, err := validateKVLine(body[i+1])
		if err != nil {
			return fmt.Errorf("MINT: %w", err)
		}
		_, amount, err := validateKVLine(body[i+2])
		if err != nil {
			return fmt.Errorf("MINT: %w", err)
		}
		if !validAmount(amount) {
			return fmt.Errorf("MINT: invalid Amount %q", amount)
		}
		recs = append(recs, mintRecord{policy: policy, token: token})
	}
	for i := 1; i < len(recs); i++ {
		p, c := recs[i-1], recs[i]
		if p.policy == c.policy {
			if !(p.token < c.token) {
				return errors.New("MINT: records not sorted")
			}
			continue
		}
		if p.policy > c.policy {
			return errors.New("MINT: records not sorted")
		}
	}
	return nil
}

func validAmount(s string) bool {
	if s == "0" {
		return true
	}
	body := s
	if strings.HasPrefix(s, "-") {
		body = s[1:]
	}
	if body == "" || body[0] == '0' {
		return false
	}
	for _, r := range body {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateSigners(body []string) error {
	if err := validateSortedStrict(body); err != nil {
		return fmt.Errorf("SIGNERS: %w", err)
	}
	for _, l := range body {
		k, _, err := validateKVLine(l)
		if err != nil {
			return fmt.Errorf("SIGNERS: %w", err)
		}
		if k != "Signer" {
			return fmt.Errorf("SIGNERS: unexpected key %q", k)
		}
	}
	return nil
}

func validateCrypto(body []string) error {
	if len(body) == 0 {
		return nil
	}
	if err := validateSortedStrict(body); err != nil {
		return fmt.Errorf("CRYPTO: %w", err)
	}
	need := map[string]bool{"Hash-Alg": false, "Emitter-Key": false, "Signature-Alg": false, "Signature": false}
	for _, l := range body {
		k, _, err := validateKVLine(l)
		if err != nil {
			return fmt.Errorf("CRYPTO: %w", err)
		}
		if _, ok := need[k]; ok {
			need[k] = true
		}
	}
	for k, ok := range need {
		if !ok {
			return fmt.Errorf("CRYPTO: missing %s", k)
		}
	}
	return nil
}
