package bufferpolicy

import (
	"testing"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// certifiedProject is a certified project with a 200-token buffer and one
// reconcilable period planned at 800.
func certifiedProject(actual int64) *datum.ProjectDatum {
	return &datum.ProjectDatum{
		Params: datum.ProjectParams{
			ProjectID: []byte("proj-1"),
			State:     datum.StateCertified,
		},
		Token: datum.TokenConfig{
			PolicyID:    "greypolicy",
			TokenName:   "GREYCO2",
			TotalSupply: 1000,
		},
		Stakeholders: []datum.Stakeholder{
			{Name: "Owner", KeyHash: "kh-owner", Participation: 500, Claimed: true},
			{Name: "Community", KeyHash: "kh-community", Participation: 300, Claimed: true},
			{Name: "Buffer", KeyHash: "kh-buffer", Participation: 200, Claimed: true},
		},
		Certifications: []datum.Certification{
			{PlannedDate: 100, PlannedQty: 800, ActualDate: 150, ActualQty: actual},
		},
	}
}

func TestReconcileShortfall(t *testing.T) {
	plan, err := Reconcile(certifiedProject(650), 0, "", nil)
	if err != nil {
		t.Fatalf("shortfall reconciliation failed: %v", err)
	}
	if plan.BufferDebit != 150 || len(plan.Releases) != 0 {
		t.Fatalf("plan = %+v, want debit 150 and no releases", plan)
	}
}

func TestReconcileExactMatch(t *testing.T) {
	plan, err := Reconcile(certifiedProject(800), 0, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if plan.BufferDebit != 0 || len(plan.Releases) != 0 {
		t.Fatalf("exact match must plan nothing, got %+v", plan)
	}
}

func TestReconcileSurplus(t *testing.T) {
	plan, err := Reconcile(certifiedProject(800+101), 0, "", EqualSplit("Owner", "Community"))
	if err != nil {
		t.Fatalf("surplus reconciliation failed: %v", err)
	}
	if plan.BufferDebit != 0 {
		t.Fatalf("surplus must not debit the buffer, got %+v", plan)
	}
	want := []Disbursement{{"Owner", 51}, {"Community", 50}}
	if len(plan.Releases) != 2 || plan.Releases[0] != want[0] || plan.Releases[1] != want[1] {
		t.Fatalf("releases = %v, want %v", plan.Releases, want)
	}
}

func TestReconcileRejections(t *testing.T) {
	t.Run("not certified", func(t *testing.T) {
		d := certifiedProject(800)
		d.Params.State = datum.StateDistributed
		d.Certifications[0].ActualDate = 0
		d.Certifications[0].ActualQty = 0
		_, err := Reconcile(d, 0, "", nil)
		if ledger.RuleID(err) != "BUF-STR-001" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("unknown period", func(t *testing.T) {
		if _, err := Reconcile(certifiedProject(800), 5, "", nil); ledger.RuleID(err) != "BUF-STR-002" {
			t.Fatalf("got %v", err)
		}
		if _, err := Reconcile(certifiedProject(800), -1, "", nil); ledger.RuleID(err) != "BUF-STR-002" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("missing buffer stakeholder", func(t *testing.T) {
		if _, err := Reconcile(certifiedProject(800), 0, "Reserve", nil); ledger.RuleID(err) != "BUF-STR-003" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("shortfall beyond buffer", func(t *testing.T) {
		_, err := Reconcile(certifiedProject(599), 0, "", nil)
		if ledger.RuleID(err) != "BUF-ARITH-004" || !ledger.IsKind(err, ledger.KindArithmetic) {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("surplus beyond buffer", func(t *testing.T) {
		_, err := Reconcile(certifiedProject(800+201), 0, "", EqualSplit("Owner"))
		if ledger.RuleID(err) != "BUF-ARITH-005" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("surplus without a policy", func(t *testing.T) {
		if _, err := Reconcile(certifiedProject(810), 0, "", nil); ledger.RuleID(err) != "BUF-STR-006" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("policy releasing to the buffer itself", func(t *testing.T) {
		_, err := Reconcile(certifiedProject(810), 0, "", EqualSplit("Buffer"))
		if ledger.RuleID(err) != "BUF-STR-008" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("policy naming a stranger", func(t *testing.T) {
		_, err := Reconcile(certifiedProject(810), 0, "", EqualSplit("Stranger"))
		if ledger.RuleID(err) != "BUF-STR-009" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("policy not disbursing the surplus", func(t *testing.T) {
		short := func(surplus int64, d *datum.ProjectDatum) ([]Disbursement, error) {
			return []Disbursement{{Stakeholder: "Owner", Amount: surplus - 1}}, nil
		}
		_, err := Reconcile(certifiedProject(810), 0, "", short)
		if ledger.RuleID(err) != "BUF-ARITH-010" {
			t.Fatalf("got %v", err)
		}
	})
	t.Run("policy emitting a non-positive release", func(t *testing.T) {
		bad := func(surplus int64, d *datum.ProjectDatum) ([]Disbursement, error) {
			return []Disbursement{
				{Stakeholder: "Owner", Amount: surplus + 1},
				{Stakeholder: "Community", Amount: -1},
			}, nil
		}
		_, err := Reconcile(certifiedProject(810), 0, "", bad)
		if ledger.RuleID(err) != "BUF-ARITH-007" {
			t.Fatalf("got %v", err)
		}
	})
}

func TestEqualSplitRemainder(t *testing.T) {
	policy := EqualSplit("A", "B", "C")
	got, err := policy(10, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []Disbursement{{"A", 4}, {"B", 3}, {"C", 3}}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := EqualSplit()(10, nil); ledger.RuleID(err) != "BUF-STR-011" {
		t.Fatalf("empty role list: %v", err)
	}

	// Tiny surpluses drop the zero shares.
	got, err = EqualSplit("A", "B", "C")(2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != (Disbursement{"A", 1}) || got[1] != (Disbursement{"B", 1}) {
		t.Fatalf("got %v", got)
	}
}

func TestWeightedSplitLargestRemainder(t *testing.T) {
	policy := WeightedSplit([]Split{{"A", 1}, {"B", 1}, {"C", 1}})
	got, err := policy(100, nil)
	if err != nil {
		t.Fatal(err)
	}
	// 33 each, remainder 1 to the largest fractional part; all equal, so
	// declaration order breaks the tie.
	want := []Disbursement{{"A", 34}, {"B", 33}, {"C", 33}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	got, err = WeightedSplit([]Split{{"A", 3}, {"B", 1}})(10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != (Disbursement{"A", 8}) || got[1] != (Disbursement{"B", 2}) {
		t.Fatalf("3:1 split of 10 = %v", got)
	}

	var sum int64
	got, err = WeightedSplit([]Split{{"A", 7}, {"B", 11}, {"C", 13}})(809_438, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range got {
		sum += r.Amount
	}
	if sum != 809_438 {
		t.Fatalf("weighted split must conserve the surplus, sum = %d", sum)
	}

	if _, err := WeightedSplit(nil)(10, nil); ledger.RuleID(err) != "BUF-STR-012" {
		t.Fatalf("empty split list: %v", err)
	}
	if _, err := WeightedSplit([]Split{{"A", 0}})(10, nil); ledger.RuleID(err) != "BUF-ARITH-013" {
		t.Fatalf("zero weight: %v", err)
	}
}

func TestWeightedSplitHugeSurplus(t *testing.T) {
	// surplus*weight does not fit int64 here; the split must still be exact.
	const surplus = int64(1) << 62
	got, err := WeightedSplit([]Split{{"A", 3}, {"B", 1}})(surplus, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != (Disbursement{"A", 3 << 60}) || got[1] != (Disbursement{"B", 1 << 60}) {
		t.Fatalf("3:1 split of 2^62 = %v", got)
	}
}
