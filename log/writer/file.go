package writer

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateMode selects the log rotation strategy.
type RotateMode int

const (
	// RotateModeTime rotates on a fixed time interval.
	RotateModeTime RotateMode = iota
	// RotateModeSize rotates when the file exceeds a size limit.
	RotateModeSize
)

// String returns the string representation of the rotate mode.
func (m RotateMode) String() string {
	switch m {
	case RotateModeTime:
		return "time"
	case RotateModeSize:
		return "size"
	default:
		return "unknown"
	}
}

// RotateConfig configures a rotating file writer.
type RotateConfig struct {
	Mode     RotateMode
	Filepath string
	Filename string
	FileExt  string

	// Time rotation
	MaxAgeHours       int
	RotationTimeHours int

	// Size rotation
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// File creates a file output writer according to the rotate mode.
func File(config RotateConfig) (io.Writer, error) {
	switch config.Mode {
	case RotateModeTime:
		return timeRotateWriter(config)
	case RotateModeSize:
		return sizeRotateWriter(config)
	default:
		return nil, fmt.Errorf("unsupported rotate mode: %v", config.Mode)
	}
}

func (c *RotateConfig) fullPath(format string) string {
	name := c.Filename
	if format != "" {
		name += "." + format
	}
	name += "." + c.FileExt
	return filepath.Join(c.Filepath, name)
}

func timeRotateWriter(config RotateConfig) (io.Writer, error) {
	w, err := rotatelogs.New(
		config.fullPath("%Y%m%d%H%M"),
		rotatelogs.WithLinkName(config.fullPath("")),
		rotatelogs.WithMaxAge(time.Duration(config.MaxAgeHours)*time.Hour),
		rotatelogs.WithRotationTime(time.Duration(config.RotationTimeHours)*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create time rotate writer: %w", err)
	}
	return w, nil
}

func sizeRotateWriter(config RotateConfig) (io.Writer, error) {
	return &lumberjack.Logger{
		Filename:   config.fullPath(""),
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	}, nil
}
