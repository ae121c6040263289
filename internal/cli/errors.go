package cli

import (
	"encoding/json"
	"errors"
	"strings"

	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/validate"
)

// reportedError marks an error whose diagnostic was already shown.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already printed by a command, so the
// caller only needs to set the exit status.
func IsReported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}

// diagnostic is the machine-readable form of a failure.
type diagnostic struct {
	Code       apperr.Code          `json:"code"`
	Error      string               `json:"error"`
	Violations []validate.Violation `json:"violations,omitempty"`
}

func newDiagnostic(err error) diagnostic {
	d := diagnostic{Code: apperr.GetCode(err), Error: apperr.UserMessage(err)}
	var re *validate.ReportError
	if errors.As(err, &re) {
		d.Violations = re.Report.Violations
	}
	return d
}

// text renders the diagnostic for result files: the violation list for
// validation failures, the message otherwise.
func (d diagnostic) text() string {
	if len(d.Violations) > 0 {
		var b strings.Builder
		b.WriteString("errors:\n")
		for _, v := range d.Violations {
			b.WriteString("- " + v.Message + "\n")
		}
		return b.String()
	}
	return "error: " + d.Error + "\n"
}

func (d diagnostic) json() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// printFailure shows err on the terminal, listing every violation for
// validation failures.
func printFailure(err error) {
	var re *validate.ReportError
	if errors.As(err, &re) {
		printViolations(re.Report)
		return
	}
	printError("%s", apperr.UserMessage(err))
}
