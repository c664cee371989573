package host

import (
	"github.com/felixgeelhaar/traa/pkg/traa"
	"google.golang.org/protobuf/types/known/structpb"
)

// Struct field names used on the wire.
const (
	fieldLogFile     = "log_file"
	fieldLogMaxSize  = "log_max_size"
	fieldLogMaxFiles = "log_max_files"
	fieldLogLevel    = "log_level"
	fieldEvents      = "events"
)

func encodeLogConfig(cfg traa.LogConfig) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldLogFile:     structpb.NewStringValue(cfg.File),
		fieldLogMaxSize:  structpb.NewNumberValue(float64(cfg.MaxSize)),
		fieldLogMaxFiles: structpb.NewNumberValue(float64(cfg.MaxFiles)),
		fieldLogLevel:    structpb.NewNumberValue(float64(cfg.Level)),
	}}
}

// encodeConfig encodes cfg. The event handler cannot cross the process
// boundary; only whether one was requested is sent.
func encodeConfig(cfg traa.Config) *structpb.Struct {
	s := encodeLogConfig(cfg.Log)
	s.Fields[fieldEvents] = structpb.NewBoolValue(cfg.Handler != nil)
	return s
}

func decodeLogConfig(s *structpb.Struct) traa.LogConfig {
	fields := s.GetFields()
	return traa.LogConfig{
		File:     fields[fieldLogFile].GetStringValue(),
		MaxSize:  int(fields[fieldLogMaxSize].GetNumberValue()),
		MaxFiles: int(fields[fieldLogMaxFiles].GetNumberValue()),
		Level:    traa.LogLevel(fields[fieldLogLevel].GetNumberValue()),
	}
}

func decodeConfig(s *structpb.Struct) traa.Config {
	return traa.Config{Log: decodeLogConfig(s)}
}

func eventsRequested(s *structpb.Struct) bool {
	return s.GetFields()[fieldEvents].GetBoolValue()
}
