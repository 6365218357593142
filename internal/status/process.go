package status

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/process"
)

// ProcessInfo is the daemon's own resource usage.
type ProcessInfo struct {
	CPUPercent float64
	RSSBytes   uint64
	Threads    int32
}

// ReadProcessInfo samples resource usage of the current process.
func ReadProcessInfo() (*ProcessInfo, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process: %w", err)
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return nil, fmt.Errorf("cpu percent: %w", err)
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return nil, fmt.Errorf("memory info: %w", err)
	}
	threads, err := p.NumThreads()
	if err != nil {
		return nil, fmt.Errorf("threads: %w", err)
	}
	return &ProcessInfo{CPUPercent: cpu, RSSBytes: mem.RSS, Threads: threads}, nil
}
