//go:build !debug

package jobpool

func statTransition(PowerState) {}

func SnapshotTransitions() map[PowerState]int64 { return nil }

func PrintStat() {}
