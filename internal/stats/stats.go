// FILENAME: internal/stats/stats.go
package stats

// MicrosPerSecond converts a cycle interval in microseconds to a frequency.
const MicrosPerSecond = 1_000_000

// Stat is the smoothed per-task record.
// Only the owning task's thread writes it; readers wait until that thread has exited.
type Stat struct {
	Count       uint64
	AvgRunTime  uint64
	RunFreq     uint64
	AvgWaitTime uint64
	WaitFreq    uint64
}

// Avg folds next into old as 0.75*old + 0.25*next using integer shifts.
// Both terms are truncated independently, so Avg(0, x) == x>>2.
func Avg(old, next uint64) uint64 {
	return (old - old>>2) + next>>2
}

// AvgFreq folds the frequency of a cycle of length interval (µs) into old.
func AvgFreq(old, interval uint64) uint64 {
	if interval == 0 {
		interval = 1
	}
	return Avg(old, MicrosPerSecond/interval)
}

// Update records one compute burst. Both frequency series are smoothed
// over the whole cycle (run+wait), not their own part of it.
func (s *Stat) Update(wait, run uint64) {
	cycle := run + wait

	s.AvgRunTime = Avg(s.AvgRunTime, run)
	s.RunFreq = AvgFreq(s.RunFreq, cycle)

	s.AvgWaitTime = Avg(s.AvgWaitTime, wait)
	s.WaitFreq = AvgFreq(s.WaitFreq, cycle)
}
