package datum

import (
	"testing"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

func TestProtocolDatumValidate(t *testing.T) {
	ok := &ProtocolDatum{
		AdminKeys: []ledger.KeyHash{"kh-a", "kh-b"},
		Fee:       1_000_000,
		OracleID:  []byte("oracle-1"),
		Projects:  [][]byte{[]byte("proj-1")},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid datum rejected: %v", err)
	}

	neg := &ProtocolDatum{Fee: -1}
	if ledger.RuleID(neg.Validate()) != "DATUM-ARITH-001" {
		t.Fatalf("negative fee: %v", neg.Validate())
	}

	tooManyKeys := &ProtocolDatum{AdminKeys: make([]ledger.KeyHash, MaxAdminKeys+1)}
	if ledger.RuleID(tooManyKeys.Validate()) != "DATUM-STR-002" {
		t.Fatalf("admin cap: %v", tooManyKeys.Validate())
	}

	// The admin list is a set; a repeated key would double-count against
	// the cap and silently shadow a rotation.
	dupKeys := &ProtocolDatum{AdminKeys: []ledger.KeyHash{"kh-a", "kh-b", "kh-a"}}
	if err := dupKeys.Validate(); ledger.RuleID(err) != "DATUM-STR-004" || !ledger.IsKind(err, ledger.KindStructural) {
		t.Fatalf("duplicate admin key: %v", err)
	}

	tooManyProjects := &ProtocolDatum{Projects: make([][]byte, MaxProjects+1)}
	if ledger.RuleID(tooManyProjects.Validate()) != "DATUM-STR-003" {
		t.Fatalf("project cap: %v", tooManyProjects.Validate())
	}

	atCap := &ProtocolDatum{
		AdminKeys: make([]ledger.KeyHash, MaxAdminKeys),
		Projects:  make([][]byte, MaxProjects),
	}
	for i := range atCap.AdminKeys {
		atCap.AdminKeys[i] = ledger.KeyHash(rune('a' + i))
	}
	if err := atCap.Validate(); err != nil {
		t.Fatalf("caps are inclusive: %v", err)
	}
}

func TestProtocolDatumIsAdmin(t *testing.T) {
	d := &ProtocolDatum{AdminKeys: []ledger.KeyHash{"kh-a", "kh-b"}}
	if !d.IsAdmin("kh-b") {
		t.Fatal("registered admin not recognized")
	}
	if d.IsAdmin("kh-c") {
		t.Fatal("unregistered key accepted as admin")
	}
	empty := &ProtocolDatum{}
	if empty.IsAdmin("") {
		t.Fatal("empty key must never be an admin")
	}
}
