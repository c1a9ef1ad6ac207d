// Package runner runs external helper processes (such as a code formatter)
// that read their input from stdin and write their result to stdout.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/tsgonest/tsflatten/internal/errors"
	"github.com/tsgonest/tsflatten/internal/logger"
)

// stopGrace is how long a cancelled process gets between the polite stop
// signal and the force kill.
const stopGrace = 5 * time.Second

// Runner runs one external command.
type Runner struct {
	command string
	args    []string
	workDir string
}

// Result is the captured output of a finished process.
type Result struct {
	Stdout string
	Stderr string
}

// New creates a runner for command with args, started in workDir when set.
func New(command string, args []string, workDir string) *Runner {
	return &Runner{
		command: command,
		args:    args,
		workDir: workDir,
	}
}

// String renders the command line for logs.
func (r *Runner) String() string {
	return strings.Join(append([]string{r.command}, r.args...), " ")
}

func (r *Runner) newCmd(ctx context.Context, stdin string) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer) {
	cmd := exec.CommandContext(ctx, r.command, r.args...)
	if r.workDir != "" {
		cmd.Dir = r.workDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = stopGrace
	configureStop(cmd)
	return cmd, &stdout, &stderr
}

// Run starts the command, feeds it stdin and waits for it to exit. A
// cancelled ctx stops the whole process tree. A non-zero exit status is an
// error carrying the process's stderr as detail.
func (r *Runner) Run(ctx context.Context, stdin string) (*Result, error) {
	cmd, stdout, stderr := r.newCmd(ctx, stdin)
	logger.Logger.Debugw("running command", "cmd", r.String(), "dir", r.workDir)

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, errors.Wrapf(ctxErr, "running %s", r.command)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, errors.WithDetail(
			errors.Newf("%s exited with status %d", r.command, exitErr.ExitCode()),
			strings.TrimSpace(res.Stderr))
	}
	return res, errors.Wrapf(err, "starting %s", r.command)
}
