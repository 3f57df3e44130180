// Package compare implements the oracle comparison rule.
package compare

import (
	"strconv"
	"strings"
)

// Verdict is the outcome of one test case.
//
// A failing verdict carries either a stage (a toolchain invocation exited
// nonzero or timed out before the program's output could be checked) or a
// mismatch (the program ran, but its output did not match the oracle).
type Verdict struct {
	Pass bool

	// Stage failure details.
	Stage    string
	Stderr   string
	TimedOut bool

	// Mismatch details, both already trimmed.
	Expected string
	Actual   string
}

// Passed returns the passing verdict.
func Passed() Verdict {
	return Verdict{Pass: true}
}

// Mismatch returns a failing verdict carrying both trimmed strings for
// diagnostic display.
func Mismatch(expected, actual string) Verdict {
	return Verdict{Expected: expected, Actual: actual}
}

// StageFail returns a failing verdict for a stage that never produced
// comparable output.
func StageFail(stage, stderr string, timedOut bool) Verdict {
	return Verdict{Stage: stage, Stderr: stderr, TimedOut: timedOut}
}

// Compare checks a program's captured stdout and exit status against the
// recorded oracle. It is pure: equal inputs always yield equal Verdicts.
//
// Both sides are trimmed of leading and trailing whitespace. Direct
// equality passes. Otherwise the exit status is appended to the actual
// output as one trailing decimal line and the comparison is retried once,
// accommodating oracles that encode the expected exit code as a final line.
// Note the fallback is never consulted when the direct comparison already
// matched, so an oracle that omits the status line accepts any exit status.
// That leniency is inherited behavior, kept deliberately.
func Compare(stdout string, exitStatus int, expected string) Verdict {
	want := strings.TrimSpace(expected)
	got := strings.TrimSpace(stdout)

	if got == want {
		return Passed()
	}

	withStatus := strings.TrimSpace(got + "\n" + strconv.Itoa(exitStatus))
	if withStatus == want {
		return Passed()
	}

	return Mismatch(want, got)
}
