// Package utils provides small OS-level helpers shared by the sandbox
// orchestrator.
package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// SyncPipe is a pipe used to carry a single setup-failure message from the
// sandboxed child back to the parent before the child execs the target
// program. Once the child closes its end without writing anything, the
// parent's read returns io.EOF, which SyncPipe treats as "child reached
// exec successfully" rather than an error.
type SyncPipe struct {
	parent *os.File
	child  *os.File
}

// NewSyncPipe creates a new synchronization pipe.
func NewSyncPipe() (*SyncPipe, error) {
	fds := make([]int, 2)
	if err := syscall.Pipe2(fds, syscall.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &SyncPipe{
		parent: os.NewFile(uintptr(fds[0]), "syncpipe-parent"),
		child:  os.NewFile(uintptr(fds[1]), "syncpipe-child"),
	}, nil
}

// ParentFile returns the parent (reading) end of the pipe.
func (s *SyncPipe) ParentFile() *os.File {
	return s.parent
}

// ChildFile returns the child (writing) end of the pipe.
func (s *SyncPipe) ChildFile() *os.File {
	return s.child
}

// ChildEndFromFD wraps an inherited file descriptor as the write end of a
// SyncPipe. The re-exec'd child never goes through NewSyncPipe itself — it
// only knows the pipe arrived as a fixed fd across the exec boundary, via
// the parent's cmd.ExtraFiles.
//
// The fd is marked close-on-exec so that a successful final execve closes
// it as a side effect: the parent's blocking read then sees EOF exactly
// when the target program starts, with no extra signaling needed for the
// success case.
func ChildEndFromFD(fd uintptr) *SyncPipe {
	syscall.CloseOnExec(int(fd))
	return &SyncPipe{child: os.NewFile(fd, "syncpipe-child")}
}

// CloseParent closes the parent end of the pipe.
func (s *SyncPipe) CloseParent() error {
	if s.parent != nil {
		return s.parent.Close()
	}
	return nil
}

// CloseChild closes the child end of the pipe.
func (s *SyncPipe) CloseChild() error {
	if s.child != nil {
		return s.child.Close()
	}
	return nil
}

// Close closes both ends of the pipe.
func (s *SyncPipe) Close() {
	s.CloseParent()
	s.CloseChild()
}

// WaitWithError blocks until the child either closes its end of the pipe
// (success: nil) or writes an error message to it (failure: that message
// as an error).
func (s *SyncPipe) WaitWithError() error {
	buf := make([]byte, 4096)
	n, err := s.parent.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if n > 0 {
		return fmt.Errorf("%s", string(buf[:n]))
	}
	return nil
}

// SignalError sends an error message to the parent.
func (s *SyncPipe) SignalError(err error) error {
	_, writeErr := s.child.Write([]byte(err.Error()))
	return writeErr
}
