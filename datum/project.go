package datum

import (
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// ProjectState is the monotonically non-decreasing lifecycle stage of a
// project. It never exceeds StateClosed across any chain of accepted
// updates.
type ProjectState int64

const (
	StateInitialized ProjectState = 0
	StateDistributed ProjectState = 1
	StateCertified   ProjectState = 2
	StateClosed      ProjectState = 3
)

func (s ProjectState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateDistributed:
		return "distributed"
	case StateCertified:
		return "certified"
	case StateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// Valid reports whether s is one of the four defined stages.
func (s ProjectState) Valid() bool {
	return s >= StateInitialized && s <= StateClosed
}

// ProjectParams identifies a project and tracks its lifecycle stage.
type ProjectParams struct {
	_           struct{} `cbor:",toarray"`
	ProjectID   []byte
	MetadataRef []byte
	State       ProjectState
}

// TokenConfig names the project's grey token and fixes its total supply.
// Once the project leaves StateInitialized the whole config is pinned.
type TokenConfig struct {
	_           struct{} `cbor:",toarray"`
	PolicyID    ledger.PolicyID
	TokenName   ledger.TokenName
	TotalSupply int64
}

// Stakeholder is one entry of the project's claim ledger. A stakeholder
// with no registered key (KeyHash empty, e.g. the open investor pool) may
// claim permissionlessly; everyone else signs with their registered key.
type Stakeholder struct {
	_             struct{} `cbor:",toarray"`
	Name          string
	KeyHash       ledger.KeyHash
	Participation int64
	Claimed       bool
}

// Certification is one scheduled reconciliation point between the planned
// quantity and the externally verified actual quantity. Actual fields stay
// zero until the project is certified, then advance monotonically.
type Certification struct {
	_           struct{} `cbor:",toarray"`
	PlannedDate int64
	PlannedQty  int64
	ActualDate  int64
	ActualQty   int64
}

// ProjectDatum is one project's full on-chain configuration: identity and
// stage, token economics, the stakeholder claim ledger, and the
// certification schedule.
type ProjectDatum struct {
	_              struct{} `cbor:",toarray"`
	Params         ProjectParams
	Token          TokenConfig
	Stakeholders   []Stakeholder
	Certifications []Certification
}

// FindStakeholder resolves the single stakeholder named name, with the
// same three-way contract as the input/output resolution helpers.
func FindStakeholder(d *ProjectDatum, name string) (int, ledger.ResolutionStatus) {
	idx := -1
	for i, sh := range d.Stakeholders {
		if sh.Name != name {
			continue
		}
		if idx >= 0 {
			return -1, ledger.ResolutionAmbiguous
		}
		idx = i
	}
	if idx < 0 {
		return -1, ledger.ResolutionNotFound
	}
	return idx, ledger.ResolutionFound
}
