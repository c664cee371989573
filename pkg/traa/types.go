package traa

import (
	"fmt"
	"math"
	"strings"
)

// LogLevel is the native library's log verbosity.
type LogLevel int32

const (
	LogLevelTrace LogLevel = 0
	LogLevelDebug LogLevel = 1
	LogLevelInfo  LogLevel = 2
	LogLevelWarn  LogLevel = 3
	LogLevelError LogLevel = 4
	LogLevelFatal LogLevel = 5
	LogLevelOff   LogLevel = 6
)

var logLevelNames = [...]string{"trace", "debug", "info", "warn", "error", "fatal", "off"}

// String returns the lower-case level name.
func (l LogLevel) String() string {
	if l.IsValid() {
		return logLevelNames[l]
	}
	return fmt.Sprintf("level(%d)", int32(l))
}

// IsValid reports whether l is a level the native library understands.
func (l LogLevel) IsValid() bool {
	return l >= LogLevelTrace && l <= LogLevelOff
}

// ParseLogLevel parses a level name such as "info" or "warning".
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "fatal", "critical":
		return LogLevelFatal, nil
	case "off", "none":
		return LogLevelOff, nil
	default:
		return LogLevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidArgument, s)
	}
}

// Defaults applied by DefaultLogConfig.
const (
	DefaultLogMaxSize  = 2 * 1024 * 1024
	DefaultLogMaxFiles = 3
)

// LogConfig configures native logging. When File is empty the native library
// logs to the console and ignores the remaining fields.
type LogConfig struct {
	File     string
	MaxSize  int
	MaxFiles int
	Level    LogLevel
}

// DefaultLogConfig returns console logging at info level.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		MaxSize:  DefaultLogMaxSize,
		MaxFiles: DefaultLogMaxFiles,
		Level:    LogLevelInfo,
	}
}

// Validate checks the configuration before it crosses into native code.
func (c LogConfig) Validate() error {
	if !c.Level.IsValid() {
		return fmt.Errorf("%w: log level %d", ErrInvalidArgument, int32(c.Level))
	}
	// both limits cross into native code as int32
	if c.MaxSize > math.MaxInt32 || c.MaxFiles > math.MaxInt32 {
		return fmt.Errorf("%w: log limits must fit in 32 bits", ErrInvalidArgument)
	}
	if c.File == "" {
		return nil
	}
	if c.MaxSize <= 0 {
		return fmt.Errorf("%w: log max size must be positive", ErrInvalidArgument)
	}
	if c.MaxFiles <= 0 {
		return fmt.Errorf("%w: log max files must be positive", ErrInvalidArgument)
	}
	return nil
}

// Config is passed to Init.
type Config struct {
	Log     LogConfig
	Handler EventHandler
}

// DeviceType classifies a device reported by the native library.
type DeviceType int32

const (
	DeviceTypeUnknown    DeviceType = 0
	DeviceTypeCamera     DeviceType = 1
	DeviceTypeMicrophone DeviceType = 2
	DeviceTypeSpeaker    DeviceType = 3
	DeviceTypeMediaFile  DeviceType = 4
)

// DeviceSlot is how a device is attached.
type DeviceSlot int32

const (
	DeviceSlotUnknown   DeviceSlot = 0
	DeviceSlotUSB       DeviceSlot = 1
	DeviceSlotBluetooth DeviceSlot = 2
	DeviceSlotNetwork   DeviceSlot = 3
)

// DeviceOrientation is the facing of a device.
type DeviceOrientation int32

const (
	DeviceOrientationUnknown DeviceOrientation = 0
	DeviceOrientationFront   DeviceOrientation = 1
	DeviceOrientationBack    DeviceOrientation = 2
)

// DeviceState is the activity state of a device.
type DeviceState int32

const (
	DeviceStateIdle    DeviceState = 0
	DeviceStatePosting DeviceState = 1
	DeviceStateActive  DeviceState = 2
	DeviceStatePaused  DeviceState = 3
)

// DeviceEvent is a device lifecycle notification.
type DeviceEvent int32

const (
	DeviceEventUnknown       DeviceEvent = 0
	DeviceEventAttaching     DeviceEvent = 1
	DeviceEventAttached      DeviceEvent = 2
	DeviceEventDetaching     DeviceEvent = 3
	DeviceEventDetached      DeviceEvent = 4
	DeviceEventConnecting    DeviceEvent = 5
	DeviceEventConnected     DeviceEvent = 6
	DeviceEventDisconnecting DeviceEvent = 7
	DeviceEventDisconnected  DeviceEvent = 8
	DeviceEventPlugging      DeviceEvent = 9
	DeviceEventPlugged       DeviceEvent = 10
	DeviceEventUnplugging    DeviceEvent = 11
	DeviceEventUnplugged     DeviceEvent = 12
	DeviceEventMinimizing    DeviceEvent = 13
	DeviceEventMinimized     DeviceEvent = 14
	DeviceEventMaximizing    DeviceEvent = 15
	DeviceEventMaximized     DeviceEvent = 16
	DeviceEventClosing       DeviceEvent = 17
	DeviceEventClosed        DeviceEvent = 18
	DeviceEventResizing      DeviceEvent = 19
	DeviceEventResized       DeviceEvent = 20
	DeviceEventMapping       DeviceEvent = 21
	DeviceEventMapped        DeviceEvent = 22
	DeviceEventUnmapping     DeviceEvent = 23
	DeviceEventUnmapped      DeviceEvent = 24
)

// DeviceInfo describes a device reported through OnDeviceEvent.
type DeviceInfo struct {
	ID          string
	Name        string
	Type        DeviceType
	Slot        DeviceSlot
	Orientation DeviceOrientation
	State       DeviceState
}

// EventHandler receives asynchronous notifications from the native library.
// Methods may be called from threads the native library owns.
type EventHandler interface {
	OnError(code Code, message string)
	OnDeviceEvent(info DeviceInfo, event DeviceEvent)
}

// EventHandlerFuncs adapts plain functions to EventHandler. Nil fields are ignored.
type EventHandlerFuncs struct {
	Error       func(code Code, message string)
	DeviceEvent func(info DeviceInfo, event DeviceEvent)
}

// OnError implements EventHandler.
func (f EventHandlerFuncs) OnError(code Code, message string) {
	if f.Error != nil {
		f.Error(code, message)
	}
}

// OnDeviceEvent implements EventHandler.
func (f EventHandlerFuncs) OnDeviceEvent(info DeviceInfo, event DeviceEvent) {
	if f.DeviceEvent != nil {
		f.DeviceEvent(info, event)
	}
}
