//go:build darwin || windows || (linux && (amd64 || arm64))

package traa

import "github.com/ebitengine/purego"

func newTrampolines() (cEventHandler, error) {
	return cEventHandler{
		onError:       purego.NewCallback(onErrorTrampoline),
		onDeviceEvent: purego.NewCallback(onDeviceEventTrampoline),
	}, nil
}
