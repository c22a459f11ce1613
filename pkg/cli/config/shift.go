package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/taller-iot/marcaje/pkg/domain/model"
)

// Shift holds CLI flags for the initial shift configuration seed
type Shift struct {
	path string
}

// shiftFile is the TOML schema for the shift seed file:
//
//	work_start = "08:00"
//	work_end = "17:00"
//	tolerance_minutes = 15
//	entry_lead_minutes = 60
type shiftFile struct {
	WorkStart        string `toml:"work_start"`
	WorkEnd          string `toml:"work_end"`
	ToleranceMinutes int    `toml:"tolerance_minutes"`
	EntryLeadMinutes int    `toml:"entry_lead_minutes"`
}

// Flags returns CLI flags for shift seed configuration
func (s *Shift) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "shift-config",
			Usage:       "Path to a TOML file with the initial shift configuration",
			Sources:     cli.EnvVars("MARCAJE_SHIFT_CONFIG"),
			Destination: &s.path,
		},
	}
}

// Load reads and validates the shift seed file. Returns nil when no path was
// given.
func (s *Shift) Load() (*model.ShiftConfig, error) {
	if s.path == "" {
		return nil, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read shift config file", goerr.V("path", s.path))
	}

	var file shiftFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML shift config", goerr.V("path", s.path))
	}

	workStart, err := model.ParseClockTime(file.WorkStart)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid work_start", goerr.V("path", s.path))
	}
	workEnd, err := model.ParseClockTime(file.WorkEnd)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid work_end", goerr.V("path", s.path))
	}

	cfg := &model.ShiftConfig{
		WorkStart:        workStart,
		WorkEnd:          workEnd,
		ToleranceMinutes: file.ToleranceMinutes,
		EntryLeadMinutes: file.EntryLeadMinutes,
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "shift config validation failed", goerr.V("path", s.path))
	}

	return cfg, nil
}
