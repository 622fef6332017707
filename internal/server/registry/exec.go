package registry

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
)

// ExecStarter starts shells as plain child processes with piped stdio.
type ExecStarter struct {
	// Command is the shell binary, e.g. /bin/bash. Args follow it.
	Command string
	Args    []string
}

func (s *ExecStarter) Start(ctx context.Context, opts ShellOptions) (Shell, error) {
	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), opts.Env...)
	cmd.Env = append(cmd.Env,
		fmt.Sprintf("COLUMNS=%d", opts.Cols),
		fmt.Sprintf("LINES=%d", opts.Rows))

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	sh := &execShell{cmd: cmd, stdin: stdin, out: make(chan []byte, 64), done: make(chan struct{})}
	go sh.pump(stdout)
	return sh, nil
}

type execShell struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   chan []byte
	done  chan struct{}

	closeOnce sync.Once
}

func (s *execShell) Write(p []byte) (int, error) { return s.stdin.Write(p) }

// Resize records nothing: a piped shell has no terminal to resize. The
// dimensions only reach the child through COLUMNS and LINES at start.
func (s *execShell) Resize(cols, rows int) error { return nil }

func (s *execShell) Output() <-chan []byte { return s.out }

func (s *execShell) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.stdin.Close()
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
	})
	return nil
}

// pump forwards output chunks until the stream ends. Once Close fires the
// remaining output is discarded so the pump can always reach Wait, even
// when nobody is reading the channel.
func (s *execShell) pump(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.out <- chunk:
			case <-s.done:
				io.Copy(io.Discard, r)
				s.cmd.Wait()
				close(s.out)
				return
			}
		}
		if err != nil {
			break
		}
	}
	s.cmd.Wait()
	close(s.out)
}

// ExecLauncher spawns agent processes and streams their stdout lines as
// messages.
type ExecLauncher struct {
	Command string
	Args    []string
}

func (l *ExecLauncher) Launch(ctx context.Context, opts LaunchOptions) (AgentProcess, error) {
	cmd := exec.CommandContext(ctx, l.Command, l.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), opts.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{cmd: cmd, msgs: make(chan []byte, 64), done: make(chan struct{})}
	go p.pump(stdout)
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	msgs chan []byte
	done chan struct{}

	mu       sync.Mutex
	killed   bool
	exitCode int64
	waitErr  error
}

func (p *execProcess) Messages() <-chan []byte { return p.msgs }

func (p *execProcess) Interrupt() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Signal(syscall.SIGINT)
}

func (p *execProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

func (p *execProcess) Wait() (int64, error) {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.killed {
		return -1, nil
	}
	return p.exitCode, p.waitErr
}

func (p *execProcess) pump(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		p.msgs <- line
	}
	err := p.cmd.Wait()

	p.mu.Lock()
	p.exitCode = int64(p.cmd.ProcessState.ExitCode())
	if err != nil && !p.killed {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			p.waitErr = err
		}
	}
	p.mu.Unlock()

	close(p.msgs)
	close(p.done)
}
