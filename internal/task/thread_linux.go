// FILENAME: internal/task/thread_linux.go
//go:build linux

package task

import (
	"golang.org/x/sys/unix"
)

func threadID() int { return unix.Gettid() }

// pin binds the calling OS thread to cpu.
func pin(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// threadSwitches reads the calling thread's context switch counters.
func threadSwitches() Switches {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return Switches{}
	}
	return Switches{Voluntary: int64(ru.Nvcsw), Involuntary: int64(ru.Nivcsw)}
}

// sleepMicros blocks the OS thread in nanosleep(2), resuming after signals.
func sleepMicros(us uint64) {
	if us == 0 {
		return
	}
	ts := unix.NsecToTimespec(int64(us) * 1000)
	for {
		var rem unix.Timespec
		if err := unix.Nanosleep(&ts, &rem); err != unix.EINTR {
			return
		}
		ts = rem
	}
}
