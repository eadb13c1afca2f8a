//go:build !linux && !darwin

package discover

import "errors"

func getSystemMemory() (SystemMemory, error) {
	return SystemMemory{}, errors.New("system memory discovery not supported on this platform")
}
