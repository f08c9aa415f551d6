package errors

// Diagnostic codes for the pipelining transform.
//
// Code ranges:
// E1000-E1099: invalid-input diagnostics raised during validation (Section 4.1)
// E1100-E1199: hard failures raised during kernel construction (Section 4.4)

const (
	// E1001: a non-terminator body op has no stage assignment
	ErrorMissingStage = "E1001"

	// E1002: the terminator (yield) was assigned a stage
	ErrorStagedTerminator = "E1002"

	// E1003: a staged op's parent block is not the loop body
	ErrorOpOutsideBody = "E1003"

	// E1004: a yield operand is not defined by a staged op in the body
	ErrorYieldOperandNotStaged = "E1004"

	// E1101: predicateFn returned false for a kernel-cloned op
	ErrorPredicationRefused = "E1101"
)

// GetErrorDescription returns a human-readable description of the diagnostic code.
func GetErrorDescription(code string) string {
	switch code {
	case ErrorMissingStage:
		return "every non-terminator operation in the loop body must be assigned a pipeline stage"
	case ErrorStagedTerminator:
		return "the loop's yield terminator must not be staged"
	case ErrorOpOutsideBody:
		return "a staged operation's parent block must be the loop body block"
	case ErrorYieldOperandNotStaged:
		return "every yield operand must be produced by a staged operation in the body"
	case ErrorPredicationRefused:
		return "predicateFn refused to predicate a kernel operation"
	default:
		return "unknown diagnostic code"
	}
}

// GetErrorCategory returns the category of the diagnostic based on its code.
func GetErrorCategory(code string) string {
	switch {
	case code >= "E1000" && code < "E1100":
		return "Validation"
	case code >= "E1100" && code < "E1200":
		return "Predication"
	default:
		return "Unknown"
	}
}
