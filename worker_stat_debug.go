//go:build debug

package jobpool

import (
	"sync/atomic"
)

var transitions [Offline + 1]atomic.Int64

func statTransition(to PowerState) { transitions[to].Add(1) }

// SnapshotTransitions returns how many times workers entered each state.
func SnapshotTransitions() map[PowerState]int64 {
	out := make(map[PowerState]int64, len(transitions))
	for s := range transitions {
		out[PowerState(s)] = transitions[s].Load()
	}
	return out
}

func PrintStat() {
	println(
		"spinning / yielding / napping / sleeping / offline :",
		transitions[Spinning].Load(),
		transitions[Yielding].Load(),
		transitions[Napping].Load(),
		transitions[Sleeping].Load(),
		transitions[Offline].Load(),
	)
}
