//go:build unix

package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

const pollInterval = 5 * time.Millisecond

// inputState reads raw stdin in a goroutine.
type inputState struct {
	fd          int
	oldState    *term.State
	nonblockSet bool

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
}

func (s *inputState) start(logger *log.Logger, in *os.File, handle func([]byte)) error {
	s.fd = int(in.Fd())
	if !term.IsTerminal(s.fd) {
		return errors.New("input is not a terminal")
	}

	if width, height, err := term.GetSize(s.fd); err == nil &&
		(width < chip8.DisplayWidth || height < chip8.DisplayHeight/2) {
		logger.Warn("Terminal is smaller than the display",
			log.Int("width", width),
			log.Int("height", height))
	}

	oldState, err := term.MakeRaw(s.fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	s.oldState = oldState

	if err := syscall.SetNonblock(s.fd, true); err != nil {
		_ = term.Restore(s.fd, s.oldState)
		s.oldState = nil
		return fmt.Errorf("setting nonblocking input: %w", err)
	}
	s.nonblockSet = true

	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.read(logger, handle)
	return nil
}

func (s *inputState) read(logger *log.Logger, handle func([]byte)) {
	defer close(s.done)
	buf := make([]byte, 16)

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		n, err := syscall.Read(s.fd, buf)
		if n > 0 {
			handle(buf[:n])
		}
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) || (err == nil && n <= 0) {
			time.Sleep(pollInterval)
			continue
		}
		if err != nil {
			logger.Error("Reading terminal input failed", log.Err(err))
			return
		}
	}
}

func (s *inputState) stop() {
	if s.done == nil {
		return
	}
	s.stopped.Do(func() {
		close(s.stopCh)
	})
	<-s.done

	if s.nonblockSet {
		_ = syscall.SetNonblock(s.fd, false)
		s.nonblockSet = false
	}
	if s.oldState != nil {
		_ = term.Restore(s.fd, s.oldState)
		s.oldState = nil
	}
}
