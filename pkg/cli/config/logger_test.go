package config_test

import (
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/taller-iot/marcaje/pkg/cli/config"
)

func TestLoggerConfigure(t *testing.T) {
	t.Run("defaults via explicit values", func(t *testing.T) {
		var cfg config.Logger
		cfg.SetLevel("info")
		cfg.SetFormat("console")
		cfg.SetOutput("stdout")

		closer, err := cfg.Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("json to file", func(t *testing.T) {
		var cfg config.Logger
		cfg.SetLevel("debug")
		cfg.SetFormat("json")
		cfg.SetOutput(filepath.Join(t.TempDir(), "app.log"))

		closer, err := cfg.Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		var cfg config.Logger
		cfg.SetLevel("verbose")
		cfg.SetFormat("console")
		cfg.SetOutput("stdout")

		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("invalid format", func(t *testing.T) {
		var cfg config.Logger
		cfg.SetLevel("info")
		cfg.SetFormat("xml")
		cfg.SetOutput("stdout")

		_, err := cfg.Configure()
		gt.Error(t, err)
	})
}
