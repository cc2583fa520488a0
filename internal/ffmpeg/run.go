package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// lines of stderr kept when a run fails
const stderrTail = 6

// Run executes ffmpeg with the given arguments, usually produced by an
// ffmpeg-go stream's GetArgs. Cancelling ctx kills the process.
func Run(ctx context.Context, args []string) error {
	path, err := FFmpegPath()
	if err != nil {
		return err
	}
	_, err = execute(ctx, path, args)
	return err
}

// Probe runs ffprobe and returns its stdout.
func Probe(ctx context.Context, args []string) ([]byte, error) {
	path, err := FFprobePath()
	if err != nil {
		return nil, err
	}
	return execute(ctx, path, args)
}

func execute(ctx context.Context, bin string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if tail := Tail(stderr.String(), stderrTail); tail != "" {
			return nil, fmt.Errorf("%w: %s", err, tail)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Tail joins the last n non-empty lines of ffmpeg output.
func Tail(output string, n int) string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
