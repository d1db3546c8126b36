// FILENAME: internal/wake/futex_linux.go
//go:build linux

package wake

import (
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	futexWait        = 0
	futexWake        = 1
	futexPrivateFlag = 128
)

// parker blocks the calling OS thread in the kernel on the word itself.
type parker struct{}

func newParker() parker { return parker{} }

// wait sleeps while *word == val. Spurious returns (value changed, signal
// delivery) report neither a timeout nor an error; the caller re-checks the word.
func (parker) wait(word *atomic.Uint32, val uint32, timeout time.Duration) (bool, error) {
	var ts *unix.Timespec
	if timeout > 0 {
		t := unix.NsecToTimespec(int64(durationOrZero(timeout)))
		ts = &t
	}
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(word)),
		uintptr(futexWait|futexPrivateFlag),
		uintptr(val),
		uintptr(unsafe.Pointer(ts)),
		0, 0)
	switch errno {
	case 0, unix.EAGAIN, unix.EINTR:
		return false, nil
	case unix.ETIMEDOUT:
		return true, nil
	default:
		return false, errno
	}
}

// wake releases at most one thread sleeping on word.
func (parker) wake(word *atomic.Uint32) error {
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(word)),
		uintptr(futexWake|futexPrivateFlag),
		1, 0, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
