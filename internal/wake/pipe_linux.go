// FILENAME: internal/wake/pipe_linux.go
//go:build linux

package wake

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/gbench/internal/config"
	"golang.org/x/sys/unix"
)

type pipeFDs struct {
	r, w int
}

func newPipe() (pipeFDs, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return pipeFDs{-1, -1}, err
	}
	return pipeFDs{r: fds[0], w: fds[1]}, nil
}

func (p pipeFDs) close() error {
	return errors.Join(closeFD(p.r), closeFD(p.w))
}

func closeFD(fd int) error {
	if fd < 0 {
		return nil
	}
	return unix.Close(fd)
}

// pipeLink is one worker's pair of pipes: ping carries worker→coordinator,
// pong carries coordinator→worker. Both carry the worker index.
type pipeLink struct {
	index int32
	ping  pipeFDs
	pong  pipeFDs
}

func (l *pipeLink) Signal() error {
	return writeIndex(l.ping.w, l.index, "worker ping")
}

func (l *pipeLink) Await() error {
	_, err := readIndex(l.pong.r, "worker pong")
	return err
}

func writeIndex(fd int, id int32, op string) error {
	var buf [config.PingPayloadSize]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(id))
	for {
		n, err := unix.Write(fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return &Error{Op: op, Err: err}
		}
		if n != len(buf) {
			return &Error{Op: op, Err: fmt.Errorf("short write: %d of %d bytes", n, len(buf))}
		}
		return nil
	}
}

func readIndex(fd int, op string) (int32, error) {
	var buf [config.PingPayloadSize]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, &Error{Op: op, Err: err}
		}
		if n != len(buf) {
			return 0, &Error{Op: op, Err: fmt.Errorf("short read: %d of %d bytes", n, len(buf))}
		}
		return int32(binary.NativeEndian.Uint32(buf[:])), nil
	}
}

// PipeHub multiplexes every worker's ping pipe through one epoll instance.
type PipeHub struct {
	links  []*pipeLink
	epfd   int
	pollMS int
	events [config.MaxPollEvents]unix.EpollEvent
}

// NewPipeHub returns a hub for n workers whose readiness waits are capped at poll.
func NewPipeHub(n int, poll time.Duration) (*PipeHub, error) {
	ms := int(poll / time.Millisecond)
	if ms <= 0 {
		ms = 1
	}
	return &PipeHub{
		links:  make([]*pipeLink, n),
		epfd:   -1,
		pollMS: ms,
	}, nil
}

func (h *PipeHub) Open(i int) (Link, error) {
	if err := checkIndex(i, len(h.links)); err != nil {
		return nil, err
	}
	if h.links[i] != nil {
		return nil, fmt.Errorf("wake: worker %d already open", i)
	}
	ping, err := newPipe()
	if err != nil {
		return nil, &Error{Op: "create ping pipe", Err: err}
	}
	pong, err := newPipe()
	if err != nil {
		_ = ping.close()
		return nil, &Error{Op: "create pong pipe", Err: err}
	}
	l := &pipeLink{index: int32(i), ping: ping, pong: pong}
	h.links[i] = l
	return l, nil
}

// Ready creates the epoll instance and registers every ping read end.
// Pings written before registration stay readable, since epoll is level-triggered.
func (h *PipeHub) Ready() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return &Error{Op: "epoll create", Err: err}
	}
	h.epfd = epfd
	for i, l := range h.links {
		if l == nil {
			return fmt.Errorf("wake: worker %d never opened", i)
		}
		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(l.ping.r)}
		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, l.ping.r, &ev); err != nil {
			return &Error{Op: fmt.Sprintf("epoll add worker %d", i), Err: err}
		}
	}
	return nil
}

// Exchange polls in bounded slices until at least one ping is ready, then
// reads every ready ping and pongs each sender before returning.
func (h *PipeHub) Exchange(stop Stopper) (bool, error) {
	if stop.Stopped() {
		return true, h.Release()
	}
	for !stop.Stopped() {
		n, err := unix.EpollWait(h.epfd, h.events[:], h.pollMS)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, &Error{Op: "epoll wait", Err: err}
		}
		if n == 0 {
			continue
		}
		return false, h.reply(h.events[:n])
	}
	return true, h.Release()
}

func (h *PipeHub) reply(events []unix.EpollEvent) error {
	for _, ev := range events {
		id, err := readIndex(int(ev.Fd), "coordinator ping")
		if err != nil {
			return err
		}
		if err := checkIndex(int(id), len(h.links)); err != nil {
			return &Error{Op: "coordinator ping", Err: err}
		}
		if err := writeIndex(h.links[id].pong.w, id, "coordinator pong"); err != nil {
			return err
		}
	}
	return nil
}

func (h *PipeHub) Release() error {
	for _, l := range h.links {
		if l == nil {
			continue
		}
		if err := writeIndex(l.pong.w, l.index, "release pong"); err != nil {
			return err
		}
	}
	return nil
}

// Interrupt is a no-op: the coordinator never waits longer than one poll slice.
func (h *PipeHub) Interrupt() error { return nil }

func (h *PipeHub) Close() error {
	var errs []error
	if h.epfd >= 0 {
		errs = append(errs, unix.Close(h.epfd))
		h.epfd = -1
	}
	for i, l := range h.links {
		if l == nil {
			continue
		}
		errs = append(errs, l.ping.close(), l.pong.close())
		h.links[i] = nil
	}
	return errors.Join(errs...)
}
