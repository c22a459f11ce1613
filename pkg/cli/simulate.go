package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/taller-iot/marcaje/pkg/cli/config"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/utils/logging"
)

// cmdSimulate appends a synthetic hardware message to a mailbox channel so
// the ingestion pipeline can be exercised end to end without the device.
func cmdSimulate() *cli.Command {
	var channelName string
	var message string
	var badgeUID string
	var mailboxCfg config.Mailbox

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "channel",
			Usage:       "Target log channel (asistencia, accesos or seguridad)",
			Value:       string(types.ChannelAttendance),
			Destination: &channelName,
		},
		&cli.StringFlag{
			Name:        "message",
			Usage:       "Raw message to append (mutually exclusive with --badge-uid)",
			Destination: &message,
		},
		&cli.StringFlag{
			Name:        "badge-uid",
			Usage:       "Badge UID to format as a scan message (e.g. '35 13 B5 B1')",
			Destination: &badgeUID,
		},
	}
	flags = append(flags, mailboxCfg.Flags()...)

	return &cli.Command{
		Name:  "simulate",
		Usage: "Append a synthetic hardware message to a mailbox channel",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			mb := mailboxCfg.Configure()
			if mb == nil {
				return goerr.New("mailbox-url is required")
			}

			channel, err := types.ParseChannel(channelName)
			if err != nil {
				return err
			}

			msg := message
			if msg == "" {
				if badgeUID == "" {
					return goerr.New("either --message or --badge-uid is required")
				}
				msg = fmt.Sprintf("Marcaje RFID: %s", strings.ToUpper(badgeUID))
			}

			key, err := mb.Push(ctx, channel, msg)
			if err != nil {
				return goerr.Wrap(err, "failed to push message",
					goerr.V("channel", channel), goerr.V("message", msg))
			}

			logging.Default().Info("Message appended",
				"channel", channel.String(), "key", key, "message", msg)
			return nil
		},
	}
}
