package ffmpeg

import (
	"fmt"

	gopsproc "github.com/shirou/gopsutil/v3/process"
)

// Usage is a point-in-time resource sample of the child process.
type Usage struct {
	CPUPercent float64
	RSSBytes   uint64
	VMSBytes   uint64
	NumThreads int32
}

// Usage samples the child's current CPU and memory consumption. It
// fails once the process has exited.
func (c *Child) Usage() (Usage, error) {
	proc, err := gopsproc.NewProcess(int32(c.PID()))
	if err != nil {
		return Usage{}, fmt.Errorf("ffmpeg: sampling pid %d: %w", c.PID(), err)
	}

	var u Usage
	if cpu, err := proc.CPUPercent(); err == nil {
		u.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		u.RSSBytes = mem.RSS
		u.VMSBytes = mem.VMS
	}
	if threads, err := proc.NumThreads(); err == nil {
		u.NumThreads = threads
	}
	return u, nil
}
