package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/taller-iot/marcaje/pkg/cli/config"
	"github.com/taller-iot/marcaje/pkg/usecase"
	"github.com/taller-iot/marcaje/pkg/utils/logging"
)

// defaultBadgeUIDs are the RFID credentials shipped with the hardware kit
var defaultBadgeUIDs = []string{
	"3513B5B1",
	"85DB6DB1",
	"BA910FB1",
	"40C86F61",
	"FD5FC801",
}

func cmdSeed() *cli.Command {
	var badgeUIDs []string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "badge-uid",
			Usage:       "Badge UID to register (repeatable, defaults to the kit credentials)",
			Sources:     cli.EnvVars("MARCAJE_BADGE_UIDS"),
			Destination: &badgeUIDs,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Register the known badge pool in the repository",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uids := badgeUIDs
			if len(uids) == 0 {
				uids = defaultBadgeUIDs
			}

			uc := usecase.New(repo)
			created, err := uc.Badge.Seed(ctx, uids)
			if err != nil {
				return goerr.Wrap(err, "failed to seed badge pool")
			}

			logging.Default().Info("Badge pool seeded",
				"total", len(uids),
				"created", created,
				"existing", len(uids)-created)
			return nil
		},
	}
}
