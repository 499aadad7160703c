//go:build !linux

package jobpool

import (
	"errors"
)

var errAffinityUnsupported = errors.New("jobpool: cpu pinning is only supported on linux")

func PinToCPU(cpu int) error {
	return errAffinityUnsupported
}
