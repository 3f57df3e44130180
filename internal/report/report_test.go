package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylang/sycheck/internal/compare"
	"github.com/sylang/sycheck/internal/report"
)

func monoReporter(buf *bytes.Buffer) *report.Reporter {
	return report.New(buf, report.MonoTheme(), false)
}

func TestCase_RendersImmediately(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := monoReporter(&buf)
	r.Start("koopa", "build/compiler", []string{"01_add"})

	before := buf.Len()
	r.Case("01_add", compare.Passed())
	assert.Greater(t, buf.Len(), before, "verdicts must not be buffered")
	assert.Contains(t, buf.String(), "+ 01_add")
	assert.Contains(t, buf.String(), "Pass")
}

func TestCase_StageFailureShowsTitleCasedStageAndStderr(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := monoReporter(&buf)
	r.Start("riscv", "compiler", []string{"bad"})

	r.Case("bad", compare.StageFail("compile", "unexpected token '}'", false))

	out := buf.String()
	assert.Contains(t, out, "x bad")
	assert.Contains(t, out, "Compile Error")
	assert.Contains(t, out, "unexpected token '}'")
}

func TestCase_TimeoutNamesTheStage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := monoReporter(&buf)
	r.Start("koopa", "compiler", []string{"slow"})

	r.Case("slow", compare.StageFail("execute", "Timeout", true))

	assert.Contains(t, buf.String(), "Timeout (execute)")
}

func TestCase_MismatchShowsLiteralExpectedAndGot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := monoReporter(&buf)
	r.Start("koopa", "compiler", []string{"m"})

	r.Case("m", compare.Mismatch("1\n2", "1\n3"))

	out := buf.String()
	assert.Contains(t, out, "Mismatch")
	require.Contains(t, out, "Expected:")
	require.Contains(t, out, "Got:")
	expectedIdx := strings.Index(out, "Expected:")
	gotIdx := strings.Index(out, "Got:")
	assert.Less(t, expectedIdx, gotIdx)
	assert.Contains(t, out[expectedIdx:gotIdx], "2")
	assert.Contains(t, out[gotIdx:], "3")
}

func TestFinalize_ExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		verdicts []compare.Verdict
		want     int
	}{
		{"all pass", []compare.Verdict{compare.Passed(), compare.Passed()}, 0},
		{"one fail", []compare.Verdict{compare.Passed(), compare.Mismatch("a", "b")}, 1},
		{"empty run", nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			r := monoReporter(&buf)

			var s report.Summary
			for i, v := range tc.verdicts {
				s.Add(string(rune('a'+i)), v)
			}

			assert.Equal(t, tc.want, r.Finalize(&s))
			assert.Contains(t, buf.String(), "passed.")
		})
	}
}

func TestQuietMode_PrintsOnlyFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := report.New(&buf, report.MonoTheme(), true)
	r.Start("koopa", "compiler", []string{"ok", "broken"})

	r.Case("ok", compare.Passed())
	r.Case("broken", compare.StageFail("link", "missing libsysy", false))

	out := buf.String()
	assert.NotContains(t, out, "+ ok")
	assert.Contains(t, out, "Link Error")
}

func TestSummary_Add(t *testing.T) {
	t.Parallel()

	var s report.Summary
	s.Add("a", compare.Passed())
	s.Add("b", compare.Mismatch("x", "y"))

	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Passed)
	require.Len(t, s.Verdicts, 2)
	assert.Equal(t, "a", s.Verdicts[0].Name)
	assert.False(t, s.AllPassed())
}
