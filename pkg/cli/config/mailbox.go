package config

import (
	"github.com/urfave/cli/v3"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/service/mailbox"
	"github.com/taller-iot/marcaje/pkg/utils/logging"
)

// Mailbox holds CLI flags for the device mailbox connection
type Mailbox struct {
	baseURL string
}

// Flags returns CLI flags for mailbox configuration
func (m *Mailbox) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "mailbox-url",
			Usage:       "Base URL of the device mailbox (e.g. https://your-project.firebaseio.com)",
			Sources:     cli.EnvVars("MARCAJE_MAILBOX_URL"),
			Destination: &m.baseURL,
		},
	}
}

// IsConfigured reports whether a mailbox URL was provided
func (m *Mailbox) IsConfigured() bool {
	return m.baseURL != ""
}

// Configure builds the mailbox client. Returns nil when no URL is set;
// ingestion and enrollment are disabled in that case and the server runs
// API-only.
func (m *Mailbox) Configure() interfaces.Mailbox {
	if m.baseURL == "" {
		return nil
	}

	logging.Default().Info("Using device mailbox", "base_url", m.baseURL)
	return mailbox.New(m.baseURL)
}
