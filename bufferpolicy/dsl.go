package bufferpolicy

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Split is one declared share of a surplus release.
type Split struct {
	Role   string
	Weight int64
}

// PolicyDoc is a parsed release-policy document.
//
// The document format is line-oriented: a META section of key-value
// pairs, then a SPLITS section of Role/Weight pairs, between fixed
// preamble and postamble lines.
type PolicyDoc struct {
	Meta   map[string]string
	Splits []Split
}

const (
	Preamble  = "-----BEGIN TERRASACHA RELEASE POLICY-----"
	Postamble = "-----END TERRASACHA RELEASE POLICY-----"
)

// Parse parses a release-policy document from bytes.
func Parse(data []byte) (*PolicyDoc, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return nil, errors.New("BOM not allowed")
	}
	if bytes.Contains(data, []byte("\r")) {
		return nil, errors.New("CR line endings not allowed")
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
			return nil, errors.New("trailing whitespace forbidden")
		}
	}
	if !bytes.HasPrefix(data, []byte(Preamble)) {
		return nil, errors.New("missing release-policy preamble")
	}
	if !bytes.HasSuffix(bytes.TrimSpace(data), []byte(Postamble)) {
		return nil, errors.New("missing release-policy postamble")
	}

	sections := map[string]bool{"META": true, "SPLITS": true}
	reader := bufio.NewReader(bytes.NewReader(data))
	var currSection string
	meta := make(map[string]string)
	var splits []Split
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		done := err == io.EOF
		line = strings.TrimSpace(line)
		if sections[line] {
			currSection = line
		} else if currSection == "META" && strings.Contains(line, ": ") {
			kv := strings.SplitN(line, ": ", 2)
			meta[kv[0]] = kv[1]
		} else if currSection == "SPLITS" && strings.HasPrefix(line, "Role: ") {
			role := strings.TrimPrefix(line, "Role: ")
			if role == "" {
				return nil, errors.New("empty Role")
			}
			weightLine, _ := reader.ReadString('\n')
			weightLine = strings.TrimSpace(weightLine)
			if !strings.HasPrefix(weightLine, "Weight: ") {
				return nil, errors.New("expected Weight after Role")
			}
			weight, err := strconv.ParseInt(strings.TrimPrefix(weightLine, "Weight: "), 10, 64)
			if err != nil {
				return nil, errors.New("invalid Weight: " + err.Error())
			}
			if weight <= 0 {
				return nil, errors.New("Weight must be positive")
			}
			splits = append(splits, Split{Role: role, Weight: weight})
		}
		if done {
			break
		}
	}
	if len(splits) == 0 {
		return nil, errors.New("release policy declares no splits")
	}
	return &PolicyDoc{Meta: meta, Splits: splits}, nil
}

// Compile turns a parsed document into its ReleasePolicy.
func (p *PolicyDoc) Compile() ReleasePolicy {
	return WeightedSplit(p.Splits)
}
