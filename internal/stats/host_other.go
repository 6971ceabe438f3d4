//go:build !linux

package stats

func hostMemory() (total, free uint64, ok bool) { return 0, 0, false }

func processRSS() (uint64, bool) { return 0, false }
