// Package system wraps process-level concerns: file-descriptor limits,
// worker sizing and memory reporting.
package system

import (
	"fmt"
	"log"
	"runtime"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit (macOS/Linux); concurrent
// tile export keeps many output files open at once.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not read the open-file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise the open-file limit: %v", err)
	} else {
		fmt.Printf("[*] Open-file limit raised to %d\n", rLimit.Cur)
	}
}

// WorkerCount is the export pool width: one worker per logical CPU.
func WorkerCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// LogMemoryStats records the current memory situation; decoded pyramid
// levels of gigapixel slides dominate the process footprint.
func LogMemoryStats() {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[!] Could not read memory stats: %v", err)
		return
	}
	log.Printf("Memory: %.1f%% used, %d MB available", vm.UsedPercent, vm.Available/1024/1024)
}
