// Package console reads task commands from a terminal. A plain line adds a
// task; lines starting with ':' are commands:
//
//	:done N     mark task N completed
//	:undo N     mark task N not completed
//	:rm N       remove task N
//	:list       redraw the task list
//	:pause      stop clipboard capture
//	:resume     resume clipboard capture
//
// N is a 1-based position or a task ID.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.klb.dev/cliptask/internal/task"
)

// Op is a console command.
type Op int

const (
	OpAdd Op = iota
	OpDone
	OpUndo
	OpRemove
	OpList
	OpPause
	OpResume
)

// Command is a parsed console line.
type Command struct {
	Op Op
	// Arg is the task text for OpAdd and the task reference otherwise.
	Arg string
}

// ErrUnknown is returned for a ':' line that names no command.
var ErrUnknown = errors.New("unknown command")

var commands = map[string]struct {
	op     Op
	needed bool
}{
	"done":   {OpDone, true},
	"undo":   {OpUndo, true},
	"rm":     {OpRemove, true},
	"list":   {OpList, false},
	"pause":  {OpPause, false},
	"resume": {OpResume, false},
}

// Parse interprets one input line. ok is false for blank lines.
func Parse(line string) (cmd Command, ok bool, err error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}, false, nil
	}
	if !strings.HasPrefix(trimmed, ":") {
		return Command{Op: OpAdd, Arg: strings.TrimRight(line, "\r\n")}, true, nil
	}

	name, arg, _ := strings.Cut(trimmed[1:], " ")
	arg = strings.TrimSpace(arg)
	c, found := commands[name]
	if !found {
		return Command{}, false, fmt.Errorf("%w: %q", ErrUnknown, ":"+name)
	}
	if c.needed && arg == "" {
		return Command{}, false, fmt.Errorf(":%s needs a task number", name)
	}
	return Command{Op: c.op, Arg: arg}, true, nil
}

// Tracker is the part of the running app the console drives.
type Tracker interface {
	Add(ctx context.Context, text string) (task.Task, error)
	SetCompleted(ctx context.Context, ref string, completed bool) error
	Remove(ctx context.Context, ref string) error
	Render(ctx context.Context) error
	SetMonitoring(on bool) error
}

// MaxLineSize is the longest console line accepted. Longer lines are
// reported and skipped.
const MaxLineSize = 1 << 20

// ErrLineTooLong is reported for a line over MaxLineSize.
var ErrLineTooLong = errors.New("line too long")

type input struct {
	line string
	err  error
}

// Run reads lines from in until EOF or ctx is done. Problems with a line are
// reported on out; only a failing tracker ends the loop with an error.
func Run(ctx context.Context, in io.Reader, out io.Writer, t Tracker) error {
	inputs := make(chan input)
	readErr := make(chan error, 1)
	go func() {
		defer close(inputs)
		br := bufio.NewReaderSize(in, 64*1024)
		for {
			line, err := readLine(br, MaxLineSize)
			if err != nil && !errors.Is(err, ErrLineTooLong) {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
			select {
			case inputs <- input{line: line, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case next, open := <-inputs:
			if !open {
				select {
				case err := <-readErr:
					return fmt.Errorf("read console: %w", err)
				default:
				}
				return nil
			}
			if next.err != nil {
				fmt.Fprintln(out, next.err)
				continue
			}
			cmd, ok, err := Parse(next.line)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if !ok {
				continue
			}
			if err := Apply(ctx, t, cmd); err != nil {
				return err
			}
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed and reported as ErrLineTooLong. A final line without a
// newline is returned as is; io.EOF follows on the next call.
func readLine(br *bufio.Reader, limit int) (string, error) {
	var (
		buf  []byte
		n    int
		over bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		n += len(chunk)
		if !over {
			if n > limit+1 {
				over, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && n > 0:
		case err != nil:
			return "", err
		}
		if over {
			return "", fmt.Errorf("%w (%d bytes), skipped", ErrLineTooLong, n)
		}
		return strings.TrimRight(string(buf), "\r\n"), nil
	}
}

// Apply carries out cmd against t.
func Apply(ctx context.Context, t Tracker, cmd Command) error {
	slog.Debug("console command", "op", cmd.Op, "arg", cmd.Arg)

	var err error
	switch cmd.Op {
	case OpAdd:
		_, err = t.Add(ctx, cmd.Arg)
	case OpDone:
		err = t.SetCompleted(ctx, cmd.Arg, true)
	case OpUndo:
		err = t.SetCompleted(ctx, cmd.Arg, false)
	case OpRemove:
		err = t.Remove(ctx, cmd.Arg)
	case OpList:
		err = t.Render(ctx)
	case OpPause:
		err = t.SetMonitoring(false)
	case OpResume:
		err = t.SetMonitoring(true)
	default:
		err = fmt.Errorf("unhandled op %d", cmd.Op)
	}
	return err
}
