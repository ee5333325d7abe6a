package position

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"location-capture-service/internal/domain"
	"strings"
	"sync"
)

// StaticGate returns a fixed, configured permission status.
type StaticGate struct {
	Status domain.PermissionStatus
}

func (g StaticGate) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.Status, nil
}

const promptQuestion = "Allow access to your location? [y/N]: "

// PromptGate asks the user on a terminal. Only "y" or "yes" grants access.
// Nothing is remembered between requests.
//
// A single goroutine owns the reader and hands each line to whichever
// request is waiting. A line typed after its request was abandoned answers
// the next request.
type PromptGate struct {
	in  *bufio.Reader
	out io.Writer

	start sync.Once
	lines chan string
	done  chan struct{}
	err   error // set before done is closed
}

func NewPromptGate(in io.Reader, out io.Writer) *PromptGate {
	return &PromptGate{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

func (g *PromptGate) readLines() {
	defer close(g.done)
	for {
		line, err := g.in.ReadString('\n')
		if err == nil || line != "" {
			g.lines <- line
		}
		if err != nil {
			g.err = err
			return
		}
	}
}

// RequestPermission blocks until a line is read or ctx is done. Closed
// input counts as a denial.
func (g *PromptGate) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	g.start.Do(func() { go g.readLines() })

	if _, err := fmt.Fprint(g.out, promptQuestion); err != nil {
		return "", fmt.Errorf("prompt permission: write question: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-g.lines:
		return parseAnswer(line), nil
	case <-g.done:
		if !errors.Is(g.err, io.EOF) {
			return "", fmt.Errorf("prompt permission: read answer: %w", g.err)
		}
		return domain.PermissionDenied, nil
	}
}

func parseAnswer(line string) domain.PermissionStatus {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return domain.PermissionGranted
	default:
		return domain.PermissionDenied
	}
}
