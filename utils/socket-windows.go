//go:build windows

package utils

func setSocketOptions(fd uintptr) {
	// Socket buffer tuning is not applied on Windows.
}
