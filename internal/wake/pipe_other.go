// FILENAME: internal/wake/pipe_other.go
//go:build !linux

package wake

import (
	"fmt"
	"time"
)

// PipeHub requires epoll and is only available on Linux.
type PipeHub struct{}

func NewPipeHub(n int, poll time.Duration) (*PipeHub, error) {
	return nil, fmt.Errorf("%w: pipe mechanism requires Linux epoll", ErrUnsupported)
}

func (h *PipeHub) Open(i int) (Link, error)            { return nil, ErrUnsupported }
func (h *PipeHub) Ready() error                        { return ErrUnsupported }
func (h *PipeHub) Exchange(stop Stopper) (bool, error) { return true, ErrUnsupported }
func (h *PipeHub) Release() error                      { return ErrUnsupported }
func (h *PipeHub) Interrupt() error                    { return nil }
func (h *PipeHub) Close() error                        { return nil }
