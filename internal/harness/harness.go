// Package harness runs the conformance corpus end to end: discovery, the
// per-case pipeline, oracle comparison, and progressive reporting.
//
// Execution is strictly sequential. Every per-case failure is recovered at
// case granularity and converted into a failing verdict; only faults
// outside the test loop abort the run.
package harness

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sylang/sycheck/internal/compare"
	"github.com/sylang/sycheck/internal/config"
	"github.com/sylang/sycheck/internal/corpus"
	"github.com/sylang/sycheck/internal/execute"
	"github.com/sylang/sycheck/internal/pipeline"
	"github.com/sylang/sycheck/internal/report"
)

// Harness owns one run of the corpus.
type Harness struct {
	cfg    *config.Config
	runner *pipeline.Runner
	rep    *report.Reporter
}

// New wires a Harness from its collaborators. The executor is injectable so
// tests can drive the pipeline without spawning real toolchain processes.
func New(cfg *config.Config, exec execute.Executor, rep *report.Reporter) *Harness {
	return &Harness{
		cfg:    cfg,
		runner: pipeline.NewRunner(cfg, exec),
		rep:    rep,
	}
}

// Run processes every discovered case in order and returns the aggregate
// summary. An empty corpus is a valid empty run, not an error.
func (h *Harness) Run(ctx context.Context, mode pipeline.Mode, explicitFile string) (*report.Summary, error) {
	if err := os.MkdirAll(h.cfg.BuildDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating build dir: %w", err)
	}

	ext := corpus.Extensions{
		Source: h.cfg.SourceExt,
		Stdin:  h.cfg.StdinExt,
		Expect: h.cfg.ExpectExt,
	}
	cases, err := corpus.Discover(h.cfg.TestDirs, explicitFile, ext)
	if err != nil {
		return nil, fmt.Errorf("discovering tests: %w", err)
	}

	names := make([]string, len(cases))
	for i, c := range cases {
		names[i] = c.Name
	}
	h.rep.Start(mode.String(), h.cfg.Compiler, names)

	summary := &report.Summary{}
	for _, c := range cases {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		v := h.runCase(ctx, c, mode)
		summary.Add(c.Name, v)
		h.rep.Case(c.Name, v)
	}
	return summary, nil
}

// runCase drives the pipeline for one case and folds every failure into a
// verdict.
func (h *Harness) runCase(ctx context.Context, c corpus.Case, mode pipeline.Mode) compare.Verdict {
	out, err := h.runner.Run(ctx, c, mode)
	if err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			return compare.StageFail(string(stageErr.Stage), stageErr.Stderr, stageErr.TimedOut)
		}
		return compare.StageFail(string(pipeline.StageExecute), err.Error(), false)
	}
	return compare.Compare(out.Stdout, out.ExitCode, c.ExpectedText())
}
