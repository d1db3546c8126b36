// FILENAME: internal/task/thread_other.go
//go:build !linux

package task

import (
	"errors"
	"os"
	"time"
)

func threadID() int { return os.Getpid() }

func pin(int) error { return errors.New("cpu pinning requires Linux") }

func threadSwitches() Switches { return Switches{} }

func sleepMicros(us uint64) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}
