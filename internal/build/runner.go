// Package build runs project builds and captures their merged console output.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrBuildFileNotFound is returned before any process is started when the
// project directory or its build file does not exist.
var ErrBuildFileNotFound = errors.New("build file not found")

// Result is the outcome of one build invocation.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Succeeded reports whether the process exited with status zero.
func (r Result) Succeeded() bool { return r.ExitCode == 0 }

// Project identifies what to build.
type Project struct {
	Dir       string
	BuildFile string
	// Task replaces the default Maven invocation when set. It runs through
	// /bin/sh -c in Dir, and the build file is not required to exist.
	Task string
}

// BuildFilePath is the build file joined to the project directory.
func (p Project) BuildFilePath() string {
	return filepath.Join(p.Dir, p.BuildFile)
}

// Validate checks the project layout without starting anything.
func (p Project) Validate() error {
	if strings.TrimSpace(p.Task) != "" {
		return nil
	}
	info, err := os.Stat(p.Dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: directory %s", ErrBuildFileNotFound, p.Dir)
	}
	if _, err := os.Stat(p.BuildFilePath()); err != nil {
		return fmt.Errorf("%w: %s", ErrBuildFileNotFound, p.BuildFilePath())
	}
	return nil
}

// Runner executes commands for a project. Implementations must treat a
// non-zero exit as a normal Result, not an error; errors are reserved for
// failing to run the command at all.
type Runner interface {
	Build(ctx context.Context, p Project) (Result, error)
	Run(ctx context.Context, dir string, argv []string) (Result, error)
}

// ExecRunner runs commands as local processes.
type ExecRunner struct {
	// Maven is the build tool executable. Defaults to "mvn".
	Maven string
	// Goals are appended to the default Maven invocation.
	Goals []string
	// Timeout bounds each process. Zero means no timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewExecRunner returns a runner with the default Maven goals.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{Maven: "mvn", Goals: []string{"clean", "compile"}, Logger: logger}
}

// MavenArgv is the batch-mode command line running goals against p's build
// file. An empty mvn means "mvn" on PATH.
func MavenArgv(mvn string, p Project, goals ...string) []string {
	if mvn == "" {
		mvn = "mvn"
	}
	argv := []string{mvn, "-B", "-f", p.BuildFile}
	return append(argv, goals...)
}

// Build validates p and runs either its task command or Maven with Goals.
func (r *ExecRunner) Build(ctx context.Context, p Project) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	argv := MavenArgv(r.Maven, p, r.Goals...)
	if task := strings.TrimSpace(p.Task); task != "" {
		argv = []string{"/bin/sh", "-c", task}
	}
	return r.Run(ctx, p.Dir, argv)
}

// Run executes argv in dir with stdout and stderr merged into one buffer.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("build: empty command")
	}
	logger := r.logger()

	execCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	//nolint:gosec // G204: the command comes from the operator's flags or config
	cmd := exec.CommandContext(execCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	if r.Timeout > 0 {
		cmd.WaitDelay = time.Second
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Info("running command", "dir", dir, "argv", strings.Join(argv, " "))
	start := time.Now()
	err := cmd.Run()
	res := Result{Output: out.String(), Duration: time.Since(start)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			if execCtx.Err() == context.DeadlineExceeded {
				return res, fmt.Errorf("build: %s timed out after %v", argv[0], r.Timeout)
			}
			logger.Info("command finished", "exit_code", res.ExitCode, "duration", res.Duration)
			return res, nil
		}
		return res, fmt.Errorf("build: run %s: %w", argv[0], err)
	}
	logger.Info("command finished", "exit_code", 0, "duration", res.Duration)
	return res, nil
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
