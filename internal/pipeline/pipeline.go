// Package pipeline drives the fixed sequence of toolchain invocations that
// turns one test source into a runnable program and executes it.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sylang/sycheck/internal/config"
	"github.com/sylang/sycheck/internal/corpus"
	"github.com/sylang/sycheck/internal/execute"
)

// Mode selects which backend pipeline a run uses. It is chosen once per run
// and applies uniformly to every test case.
type Mode int

const (
	// ModeKoopa lowers through Koopa IR and runs the program natively.
	ModeKoopa Mode = iota
	// ModeRISCV emits RISC-V assembly and runs the program under qemu.
	ModeRISCV
)

// ParseMode maps the command-line mode selector to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "koopa":
		return ModeKoopa, nil
	case "riscv":
		return ModeRISCV, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (expected koopa or riscv)", s)
	}
}

func (m Mode) String() string {
	if m == ModeRISCV {
		return "riscv"
	}
	return "koopa"
}

// Stage identifies one toolchain invocation within the pipeline.
type Stage string

const (
	StageCompile   Stage = "compile"
	StageTranslate Stage = "translate"
	StageAssemble  Stage = "assemble"
	StageLink      Stage = "link"
	StageExecute   Stage = "execute"
)

// StageError reports a stage that exited nonzero or timed out, aborting the
// pipeline for that test case. Later stages are never attempted.
type StageError struct {
	Stage    Stage
	Stderr   string
	TimedOut bool
}

func (e *StageError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("stage %s timed out", e.Stage)
	}
	return fmt.Sprintf("stage %s failed: %s", e.Stage, e.Stderr)
}

// Execution is the final stage's observable behavior, handed to the
// comparator. A nonzero exit status here is not a failure: the oracle may
// encode it as a trailing line.
type Execution struct {
	Stdout   string
	ExitCode int
}

// Runner owns the per-case stage sequences for both backends.
type Runner struct {
	cfg  *config.Config
	exec execute.Executor
}

// NewRunner returns a Runner invoking tools through exec.
func NewRunner(cfg *config.Config, exec execute.Executor) *Runner {
	return &Runner{cfg: cfg, exec: exec}
}

// Run drives the pipeline for one case. On success the returned error is
// nil and Execution holds the program's output; otherwise the error is a
// *StageError naming the stage that broke.
func (r *Runner) Run(ctx context.Context, c corpus.Case, mode Mode) (Execution, error) {
	if mode == ModeRISCV {
		return r.runRISCV(ctx, c)
	}
	return r.runKoopa(ctx, c)
}

func (r *Runner) runKoopa(ctx context.Context, c corpus.Case) (Execution, error) {
	ir := r.artifact(c.Name, ".koopa")
	obj := r.artifact(c.Name, ".o")
	exe := r.artifact(c.Name, "")

	if _, err := r.runStage(ctx, StageCompile,
		[]string{r.cfg.Compiler, "-koopa", c.Source, "-o", ir}, ""); err != nil {
		return Execution{}, err
	}

	// koopac emits LLVM IR on stdout; llc lowers it to a native object.
	// The two commands form one logical translate stage.
	lowered, err := r.runStage(ctx, StageTranslate, []string{r.cfg.Koopac, ir}, "")
	if err != nil {
		return Execution{}, err
	}
	if _, err := r.runStage(ctx, StageTranslate,
		[]string{r.cfg.LLC, "--filetype=obj", "-o", obj, "-"}, lowered.Stdout); err != nil {
		return Execution{}, err
	}

	if _, err := r.runStage(ctx, StageLink,
		[]string{r.cfg.Clang, obj, "-L" + r.libDir("native"), "-lsysy", "-o", exe}, ""); err != nil {
		return Execution{}, err
	}

	return r.execute(ctx, []string{exe}, c)
}

func (r *Runner) runRISCV(ctx context.Context, c corpus.Case) (Execution, error) {
	asm := r.artifact(c.Name, ".S")
	obj := r.artifact(c.Name, ".o")
	exe := r.artifact(c.Name, "")

	if _, err := r.runStage(ctx, StageCompile,
		[]string{r.cfg.Compiler, "-riscv", c.Source, "-o", asm}, ""); err != nil {
		return Execution{}, err
	}

	if _, err := r.runStage(ctx, StageAssemble,
		[]string{r.cfg.Clang, asm, "-c", "-o", obj,
			"-target", "riscv32-unknown-linux-elf",
			"-march=rv32im", "-mabi=ilp32"}, ""); err != nil {
		return Execution{}, err
	}

	if _, err := r.runStage(ctx, StageLink,
		[]string{r.cfg.Linker, obj, "-L" + r.libDir("riscv32"), "-lsysy", "-o", exe}, ""); err != nil {
		return Execution{}, err
	}

	return r.execute(ctx, []string{r.cfg.Emulator, exe}, c)
}

// runStage runs one toolchain command and converts any nonzero exit into a
// *StageError. Executor-internal faults are folded into the same shape so
// that every pipeline failure is recoverable at test-case granularity.
func (r *Runner) runStage(ctx context.Context, stage Stage, argv []string, stdin string) (execute.Result, error) {
	res, err := r.exec.Run(ctx, argv, stdin)
	if err != nil {
		return res, &StageError{Stage: stage, Stderr: err.Error()}
	}
	if res.ExitCode != 0 {
		return res, &StageError{Stage: stage, Stderr: res.Stderr, TimedOut: res.TimedOut}
	}
	return res, nil
}

// execute runs the produced program. Unlike earlier stages a nonzero exit
// status is forwarded, not treated as a failure; only a timeout (or an
// executor fault) fails the stage.
func (r *Runner) execute(ctx context.Context, argv []string, c corpus.Case) (Execution, error) {
	res, err := r.exec.Run(ctx, argv, c.StdinText())
	if err != nil {
		return Execution{}, &StageError{Stage: StageExecute, Stderr: err.Error()}
	}
	if res.TimedOut {
		return Execution{}, &StageError{Stage: StageExecute, Stderr: res.Stderr, TimedOut: true}
	}
	return Execution{Stdout: res.Stdout, ExitCode: res.ExitCode}, nil
}

// artifact returns the build-dir path for a per-case output file. Each case
// writes uniquely named artifacts, so cases never collide.
func (r *Runner) artifact(name, ext string) string {
	return filepath.Join(r.cfg.BuildDir, name+ext)
}

// libDir resolves the runtime support library directory for a target from
// the configured environment variable.
func (r *Runner) libDir(target string) string {
	return filepath.Join(os.Getenv(r.cfg.LibPathEnv), target)
}
