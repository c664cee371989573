//go:build !(darwin || windows || (linux && (amd64 || arm64)))

package traa

// Native-to-Go callbacks are unavailable on this platform.
func newTrampolines() (cEventHandler, error) {
	return cEventHandler{}, ErrNotSupported
}
