// sycheck runs the SysY compiler conformance corpus through a chosen
// backend and checks each program's observable behavior against its
// recorded oracle file.
//
// Usage:
//
//	sycheck koopa
//	sycheck riscv
//	sycheck koopa --file tests/resources/functional/01_add.sy
//
// The koopa backend lowers through Koopa IR (koopac | llc) and runs the
// program natively; the riscv backend assembles for riscv32 and runs it
// under qemu. Both link against the sysy runtime library found via
// CDE_LIBRARY_PATH. Exit status is 0 when every discovered case passes,
// 1 otherwise, 2 on usage or configuration errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/term"

	"github.com/sylang/sycheck/internal/config"
	"github.com/sylang/sycheck/internal/execute"
	"github.com/sylang/sycheck/internal/harness"
	"github.com/sylang/sycheck/internal/pipeline"
	"github.com/sylang/sycheck/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// stringList collects a repeatable flag value.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	// The mode selector is positional and comes first, like a subcommand.
	var modeArg string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		modeArg = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("sycheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: sycheck <koopa|riscv> [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "config file (default "+config.DefaultConfigFile+" if present)")
	file := fs.String("file", "", "run a single test source file instead of the corpus")
	compilerFlag := fs.String("compiler", "", "compiler binary under test (overrides config)")
	buildDir := fs.String("build-dir", "", "artifact directory (overrides config)")
	var testDirs stringList
	fs.Var(&testDirs, "test-dir", "corpus directory, repeatable (overrides config)")
	timeout := fs.Duration("timeout", 0, "per-command timeout (overrides config)")
	themeFlag := fs.String("theme", "default", "theme: default, mono")
	quiet := fs.Bool("quiet", false, "show a progress bar instead of per-case lines")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if modeArg == "" || fs.NArg() != 0 {
		fs.Usage()
		return 2
	}

	mode, err := pipeline.ParseMode(modeArg)
	if err != nil {
		fmt.Fprintf(stderr, "sycheck: %v\n", err)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "sycheck: %v\n", err)
		return 2
	}
	if *compilerFlag != "" {
		cfg.Compiler = *compilerFlag
	}
	if *buildDir != "" {
		cfg.BuildDir = *buildDir
	}
	if len(testDirs) > 0 {
		cfg.TestDirs = testDirs
	}
	if *timeout > 0 {
		cfg.Timeout = config.Duration(*timeout)
	}

	theme := report.ThemeByName(*themeFlag)
	// Honor NO_COLOR, and never emit color into a pipe.
	if os.Getenv("NO_COLOR") != "" || !isTTYWriter(stdout) {
		theme = report.MonoTheme()
	}

	rep := report.New(stdout, theme, *quiet)
	exec := execute.NewOSExecutor(cfg.Timeout.Duration())
	h := harness.New(cfg, exec, rep)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := h.Run(ctx, mode, *file)
	if err != nil {
		fmt.Fprintf(stderr, "sycheck: %v\n", err)
		return 2
	}

	return rep.Finalize(summary)
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
