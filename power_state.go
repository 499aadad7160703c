package jobpool

// PowerState is the idling strategy a worker currently uses.
//
// States escalate in declaration order while the worker keeps finding
// the queue empty. Finding work always resets a worker to Spinning.
type PowerState int32

const (
	// Spinning polls the queue with no delay.
	Spinning PowerState = iota

	// Yielding gives up the rest of the time slice between polls.
	Yielding

	// Napping sleeps ThreadConfig.NapInterval between polls.
	Napping

	// Sleeping sleeps ThreadConfig.SleepInterval between polls.
	Sleeping

	// Offline is terminal. The worker goroutine has exited.
	Offline
)

func (s PowerState) String() string {
	switch s {
	case Spinning:
		return "Spinning"
	case Yielding:
		return "Yielding"
	case Napping:
		return "Napping"
	case Sleeping:
		return "Sleeping"
	case Offline:
		return "Offline"
	default:
		return "Unknown"
	}
}
