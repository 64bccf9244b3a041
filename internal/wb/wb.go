// Package wb drives the connectome-workbench binary. Every operation that
// touches surface or dense formats (conversion, separation, projection) is
// delegated to wb_command; this package only finds the binary, builds the
// invocation and reports failures.
package wb

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
)

// ErrExternalTool wraps any non-zero exit from a delegated command.
var ErrExternalTool = errors.New("wb: workbench command failed")

// Runner executes one workbench subcommand with its arguments. The exec
// implementation is CmdRunner; tests substitute their own.
type Runner interface {
	Run(args ...string) error
}

// CmdRunner runs wb_command as a blocking child process, one call per
// command, no retries.
type CmdRunner struct {
	// Path of the wb_command binary. Empty means look it up on first use.
	Path string

	// Debug echoes every invocation.
	Debug bool

	// DryRun echoes invocations without executing them.
	DryRun bool
}

// Find locates wb_command, honoring the WB_COMMAND environment override.
func Find() (string, error) {
	if env := os.Getenv("WB_COMMAND"); env != "" {
		return env, nil
	}

	path, err := exec.LookPath("wb_command")
	if err != nil {
		return "", fmt.Errorf("wb_command not found on PATH: %v", err)
	}

	return path, nil
}

// Run executes one workbench command and waits for it.
func (r *CmdRunner) Run(args ...string) error {
	if r.Debug || r.DryRun {
		log.Printf("[wb_command] %s\n", strings.Join(args, " "))
	}

	if r.DryRun {
		return nil
	}

	if r.Path == "" {
		path, err := Find()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExternalTool, err)
		}
		r.Path = path
	}

	cmd := exec.Command(r.Path, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: wb_command %s: %v\n%s", ErrExternalTool, strings.Join(args, " "), err, out)
	}

	return nil
}
