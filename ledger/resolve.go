package ledger

// ResolutionStatus is the three-way outcome of resolving "the single
// input/output with property P". Linear progression checks throughout the
// validators require Found; both NotFound and Ambiguous reject.
type ResolutionStatus int

const (
	ResolutionNotFound ResolutionStatus = iota
	ResolutionFound
	ResolutionAmbiguous
)

func (s ResolutionStatus) String() string {
	switch s {
	case ResolutionNotFound:
		return "not-found"
	case ResolutionFound:
		return "found"
	case ResolutionAmbiguous:
		return "ambiguous"
	default:
		return "invalid"
	}
}

// InputResolution is the result of ResolveSingleInput. Input is meaningful
// only when Status is ResolutionFound.
type InputResolution struct {
	Status ResolutionStatus
	Input  Input
}

// ResolveSingleInput scans inputs for entries matching match.
//
// Exactly one match resolves Found; zero resolves NotFound; two or more
// resolve Ambiguous. The scan is total: a second match stops early but a
// first match never suppresses later scanning errors (match MUST be pure).
func ResolveSingleInput(inputs []Input, match func(Input) bool) InputResolution {
	res := InputResolution{Status: ResolutionNotFound}
	for _, in := range inputs {
		if !match(in) {
			continue
		}
		if res.Status == ResolutionFound {
			return InputResolution{Status: ResolutionAmbiguous}
		}
		res = InputResolution{Status: ResolutionFound, Input: in}
	}
	return res
}

// OutputResolution is the result of ResolveSingleOutput. Index and Output
// are meaningful only when Status is ResolutionFound.
type OutputResolution struct {
	Status ResolutionStatus
	Index  int
	Output Output
}

// ResolveSingleOutput scans outputs for entries matching match, with the
// same three-way contract as ResolveSingleInput.
func ResolveSingleOutput(outputs []Output, match func(Output) bool) OutputResolution {
	res := OutputResolution{Status: ResolutionNotFound, Index: -1}
	for i, out := range outputs {
		if !match(out) {
			continue
		}
		if res.Status == ResolutionFound {
			return OutputResolution{Status: ResolutionAmbiguous, Index: -1}
		}
		res = OutputResolution{Status: ResolutionFound, Index: i, Output: out}
	}
	return res
}
