// Package report renders per-case verdicts and the run summary.
//
// Rendering is unbuffered: each verdict line is written as soon as the case
// finishes, so failures are visible progressively during a long run. Exact
// colors and icons are presentation detail, carried by a Theme.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sylang/sycheck/internal/compare"
)

// Summary aggregates one run. It lives for a single harness invocation and
// is discarded after reporting.
type Summary struct {
	Total    int
	Passed   int
	Verdicts []CaseVerdict
}

// CaseVerdict pairs a test name with its outcome, in run order.
type CaseVerdict struct {
	Name    string
	Verdict compare.Verdict
}

// Add appends one case outcome to the summary.
func (s *Summary) Add(name string, v compare.Verdict) {
	s.Total++
	if v.Pass {
		s.Passed++
	}
	s.Verdicts = append(s.Verdicts, CaseVerdict{Name: name, Verdict: v})
}

// AllPassed reports whether every case passed. An empty run passes.
func (s *Summary) AllPassed() bool {
	return s.Passed == s.Total
}

const maxNameWidth = 60

// Reporter writes progressive per-case lines and the final tally. In quiet
// mode passing cases collapse into a progress bar; failures are always
// printed in full.
type Reporter struct {
	out       io.Writer
	theme     Theme
	quiet     bool
	bar       *progressbar.ProgressBar
	nameWidth int
	titler    cases.Caser
}

// New returns a Reporter writing to out.
func New(out io.Writer, theme Theme, quiet bool) *Reporter {
	return &Reporter{
		out:    out,
		theme:  theme,
		quiet:  quiet,
		titler: cases.Title(language.English),
	}
}

// Start prints the run header and sizes the name column from the discovered
// case names.
func (r *Reporter) Start(mode, compiler string, names []string) {
	fmt.Fprintln(r.out, r.theme.Header.Render(fmt.Sprintf("Start Testing (%s)...", mode)))
	fmt.Fprintln(r.out, r.theme.Muted.Render("Compiler: "+compiler))

	for _, n := range names {
		if w := runewidth.StringWidth(n); w > r.nameWidth {
			r.nameWidth = w
		}
	}
	if r.nameWidth > maxNameWidth {
		r.nameWidth = maxNameWidth
	}

	if r.quiet {
		r.bar = progressbar.NewOptions(len(names),
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription("testing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
}

// Case renders one verdict immediately.
func (r *Reporter) Case(name string, v compare.Verdict) {
	if r.quiet {
		if !v.Pass {
			if r.bar != nil {
				_ = r.bar.Clear()
			}
			r.renderCase(name, v)
		}
		if r.bar != nil {
			_ = r.bar.Add(1)
		}
		return
	}
	r.renderCase(name, v)
}

func (r *Reporter) renderCase(name string, v compare.Verdict) {
	padded := name + strings.Repeat(" ", pad(name, r.nameWidth))

	if v.Pass {
		fmt.Fprintf(r.out, "%s %s %s\n",
			r.theme.Success.Render(r.theme.Icons.Pass), padded,
			r.theme.Success.Render("Pass"))
		return
	}

	fmt.Fprintf(r.out, "%s %s %s\n",
		r.theme.Error.Render(r.theme.Icons.Fail), padded,
		r.theme.Error.Render(r.failLabel(v)))

	switch {
	case v.TimedOut:
		// The sentinel marker is the whole diagnostic; nothing else to show.
	case v.Stage != "":
		r.indented(v.Stderr)
	default:
		fmt.Fprintln(r.out, r.theme.Warning.Render("Expected:"))
		r.indented(v.Expected)
		fmt.Fprintln(r.out, r.theme.Warning.Render("Got:"))
		r.indented(v.Actual)
	}
}

// failLabel names the failure the way the toolchain stages are spoken of:
// "Compile Error", "Link Error", "Timeout (execute)", or "Mismatch".
func (r *Reporter) failLabel(v compare.Verdict) string {
	if v.TimedOut {
		return fmt.Sprintf("Timeout (%s)", v.Stage)
	}
	if v.Stage != "" {
		return r.titler.String(v.Stage) + " Error"
	}
	return "Mismatch"
}

func (r *Reporter) indented(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(r.out, "    "+r.theme.Muted.Render(line))
	}
}

// Finalize prints the aggregate tally and returns the process exit code:
// 0 only when every case passed.
func (r *Reporter) Finalize(s *Summary) int {
	if r.bar != nil {
		_ = r.bar.Finish()
	}

	fmt.Fprintln(r.out, r.theme.Muted.Render(strings.Repeat("=", 30)))

	line := fmt.Sprintf("Result: %d / %d passed.", s.Passed, s.Total)
	if s.AllPassed() {
		fmt.Fprintln(r.out, r.theme.Success.Render(line))
		return 0
	}
	fmt.Fprintln(r.out, r.theme.Error.Render(line))
	return 1
}

func pad(s string, width int) int {
	if d := width - runewidth.StringWidth(s); d > 0 {
		return d
	}
	return 0
}
