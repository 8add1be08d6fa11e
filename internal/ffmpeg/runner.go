package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/clipforge/clipforge/internal/logging"
)

// Invocation records one external process run for the debug bundle.
type Invocation struct {
	Args     []string
	Output   string
	Err      error
	Duration time.Duration
}

// Runner executes external transcoder processes. Stdout and stderr are
// captured into growable buffers; long encodes emit continuous progress
// chatter on stderr and a fixed-size pipe buffer would deadlock the
// child once it fills.
type Runner struct {
	log *logging.Logger

	mu          sync.Mutex
	invocations []Invocation
}

// NewRunner creates a runner that logs through log.
func NewRunner(log *logging.Logger) *Runner {
	return &Runner{log: log}
}

// Run executes args[0] with args[1:] and returns the combined
// stdout+stderr output. The invocation is recorded either way.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	return r.RunCmd(cmd)
}

// RunCmd executes a prepared command, capturing output. Used for
// commands compiled by ffmpeg-go as well as hand-built argument lists,
// so that every transcoder invocation lands in one command log.
func (r *Runner) RunCmd(cmd *exec.Cmd) (string, error) {
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	r.log.Debugw("running external command", "args", strings.Join(cmd.Args, " "))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	output := buf.String()
	r.record(Invocation{
		Args:     append([]string(nil), cmd.Args...),
		Output:   output,
		Err:      err,
		Duration: elapsed,
	})

	if err != nil {
		return output, fmt.Errorf("%s failed: %w", cmd.Args[0], err)
	}
	return output, nil
}

func (r *Runner) record(inv Invocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invocations = append(r.invocations, inv)
}

// Invocations returns a copy of every recorded invocation, in order.
func (r *Runner) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invocation(nil), r.invocations...)
}

// CommandLog renders the recorded invocations as a readable log for
// the debug bundle.
func (r *Runner) CommandLog() string {
	var sb strings.Builder
	for i, inv := range r.Invocations() {
		fmt.Fprintf(&sb, "=== command %d (%s) ===\n", i+1, inv.Duration.Round(time.Millisecond))
		sb.WriteString(strings.Join(inv.Args, " "))
		sb.WriteString("\n")
		if inv.Err != nil {
			fmt.Fprintf(&sb, "error: %v\n", inv.Err)
		}
		sb.WriteString(inv.Output)
		sb.WriteString("\n")
	}
	return sb.String()
}
