//go:build windows

package transport

// setReusePort is a no-op on windows: SO_REUSEPORT has no direct
// equivalent, and a single listener is sufficient there.
func setReusePort(fd uintptr) error {
	return nil
}
