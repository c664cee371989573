package traa

import (
	"runtime"
	"unsafe"
)

// Fixed buffer sizes from traa/base.h.
const (
	maxDeviceIDLength   = 256
	maxDeviceNameLength = 256
)

// cLogConfig mirrors traa_log_config.
type cLogConfig struct {
	logFile  *byte
	maxSize  int32
	maxFiles int32
	level    int32
}

// cEventHandler mirrors traa_event_handler.
type cEventHandler struct {
	onError       uintptr
	onDeviceEvent uintptr
}

// cConfig mirrors traa_config.
type cConfig struct {
	userdata     uintptr
	logConfig    cLogConfig
	eventHandler cEventHandler
}

// cDeviceInfo mirrors traa_device_info.
type cDeviceInfo struct {
	id          [maxDeviceIDLength]byte
	name        [maxDeviceNameLength]byte
	deviceType  int32
	slot        int32
	orientation int32
	state       int32
}

// cString returns a NUL-terminated copy of s, or nil for the empty string.
func cString(s string) *byte {
	if s == "" {
		return nil
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// goString copies a NUL-terminated C string.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	ptr := unsafe.Pointer(p) //nolint:govet // address owned by native code
	n := 0
	for *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

// fixedString trims a fixed-size C char array at its first NUL.
func fixedString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func newCLogConfig(c LogConfig) cLogConfig {
	return cLogConfig{
		logFile:  cString(c.File),
		maxSize:  int32(c.MaxSize),
		maxFiles: int32(c.MaxFiles),
		level:    int32(c.Level),
	}
}

// pin pins the log file buffer referenced by c for the duration of a native call.
func (c *cLogConfig) pin(p *runtime.Pinner) {
	if c.logFile != nil {
		p.Pin(c.logFile)
	}
}

func decodeDeviceInfo(p uintptr) DeviceInfo {
	if p == 0 {
		return DeviceInfo{}
	}
	c := (*cDeviceInfo)(unsafe.Pointer(p)) //nolint:govet // address owned by native code
	return c.toGo()
}

func (c *cDeviceInfo) toGo() DeviceInfo {
	return DeviceInfo{
		ID:          fixedString(c.id[:]),
		Name:        fixedString(c.name[:]),
		Type:        DeviceType(c.deviceType),
		Slot:        DeviceSlot(c.slot),
		Orientation: DeviceOrientation(c.orientation),
		State:       DeviceState(c.state),
	}
}
