package traa

import (
	"sync"
	"sync/atomic"
)

// The native library stores a single event handler. Two C-callable
// trampolines are created once per process and forward into whichever Go
// handler is currently installed.

type handlerBox struct {
	h EventHandler
}

var (
	currentHandler atomic.Pointer[handlerBox]

	trampolineOnce sync.Once
	trampolines    cEventHandler
	trampolineErr  error
)

func installHandler(h EventHandler) {
	if h == nil {
		currentHandler.Store(nil)
		return
	}
	currentHandler.Store(&handlerBox{h: h})
}

func installedHandler() EventHandler {
	if box := currentHandler.Load(); box != nil {
		return box.h
	}
	return nil
}

// eventTrampolines returns the C function pointers for the native handler table.
func eventTrampolines() (cEventHandler, error) {
	trampolineOnce.Do(func() {
		trampolines, trampolineErr = newTrampolines()
	})
	return trampolines, trampolineErr
}

func dispatchError(code Code, message string) {
	if h := installedHandler(); h != nil {
		h.OnError(code, message)
	}
}

func dispatchDeviceEvent(info DeviceInfo, event DeviceEvent) {
	if h := installedHandler(); h != nil {
		h.OnDeviceEvent(info, event)
	}
}

// onErrorTrampoline matches
// void (*on_error)(const traa_userdata, traa_error, const char *).
func onErrorTrampoline(userdata, code, message uintptr) uintptr {
	dispatchError(Code(int32(code)), goString(message))
	return 0
}

// onDeviceEventTrampoline matches
// void (*on_device_event)(const traa_userdata, const traa_device_info *, traa_device_event).
func onDeviceEventTrampoline(userdata, info, event uintptr) uintptr {
	dispatchDeviceEvent(decodeDeviceInfo(info), DeviceEvent(int32(event)))
	return 0
}
