package log

import (
	"github.com/kochabx/authkit/log/writer"
)

// FileConfig configures the rotating file writer.
type FileConfig struct {
	Filepath   string            `json:"filepath" default:"log"`
	Filename   string            `json:"filename" default:"authkit"`
	FileExt    string            `json:"file_ext" default:"log"`
	RotateMode writer.RotateMode `json:"rotate_mode"`

	// Time rotation (RotateModeTime)
	MaxAgeHours       int `json:"max_age_hours" default:"24"`
	RotationTimeHours int `json:"rotation_time_hours" default:"1"`

	// Size rotation (RotateModeSize)
	MaxSizeMB  int  `json:"max_size_mb" default:"100"`
	MaxBackups int  `json:"max_backups" default:"5"`
	MaxAgeDays int  `json:"max_age_days" default:"30"`
	Compress   bool `json:"compress" default:"false"`
}

func (c *FileConfig) toWriterConfig() writer.RotateConfig {
	return writer.RotateConfig{
		Mode:              c.RotateMode,
		Filepath:          c.Filepath,
		Filename:          c.Filename,
		FileExt:           c.FileExt,
		MaxAgeHours:       c.MaxAgeHours,
		RotationTimeHours: c.RotationTimeHours,
		MaxSizeMB:         c.MaxSizeMB,
		MaxBackups:        c.MaxBackups,
		MaxAgeDays:        c.MaxAgeDays,
		Compress:          c.Compress,
	}
}
