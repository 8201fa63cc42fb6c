//go:build !unix

package terminal

import (
	"errors"
	"os"

	"github.com/retroenv/retrogolib/log"
)

type inputState struct{}

func (s *inputState) start(*log.Logger, *os.File, func([]byte)) error {
	return errors.New("terminal input is only supported on unix systems")
}

func (s *inputState) stop() {}
