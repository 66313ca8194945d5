package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"stowage.sh/core/log"
	"stowage.sh/core/rbac"
	"stowage.sh/core/registry/db"
	"stowage.sh/core/registry/models"
)

func main() {
	cmd := &cli.Command{
		Name:  "registryctl",
		Usage: "registry administration tool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "path to the registry database",
				Value: "registry.db",
			},
		},
		Commands: []*cli.Command{
			seedCommand(),
			jobsCommand(),
		},
	}

	ctx := context.Background()
	logger := log.New("registryctl")
	ctx = log.IntoContext(ctx, logger)

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(-1)
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert a package with an owner, for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "owner", Required: true},
			&cli.StringFlag{Name: "group", Usage: "additionally add a group owner"},
			&cli.IntFlag{Name: "downloads", Value: 0},
			&cli.IntFlag{Name: "age-hours", Usage: "back-date creation by this many hours"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := db.Make(cmd.String("db"))
			if err != nil {
				return fmt.Errorf("failed to open db: %w", err)
			}
			defer d.Close()

			created := time.Now().Add(-time.Duration(cmd.Int("age-hours")) * time.Hour)
			id, err := db.AddPackage(d, models.Package{
				Name:    cmd.String("name"),
				Created: created,
			})
			if err != nil {
				return err
			}

			err = db.AddOwner(d, id, models.Owner{
				Kind:    models.OwnerKindUser,
				Account: cmd.String("owner"),
			})
			if err != nil {
				return err
			}

			if group := cmd.String("group"); group != "" {
				e, err := rbac.NewEnforcer(cmd.String("db"))
				if err != nil {
					return err
				}
				if err := e.AddGroup(group); err != nil {
					return err
				}
				if err := e.E.SavePolicy(); err != nil {
					return err
				}
				err = db.AddOwner(d, id, models.Owner{
					Kind:    models.OwnerKindGroup,
					Account: group,
				})
				if err != nil {
					return err
				}
			}

			if downloads := cmd.Int("downloads"); downloads > 0 {
				if err := db.SetDownloads(d, id, int64(downloads)); err != nil {
					return err
				}
			}

			log.FromContext(ctx).Info("seeded package", "name", cmd.String("name"), "id", id)
			return nil
		},
	}
}

func jobsCommand() *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "list the retirement outbox",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := db.Make(cmd.String("db"))
			if err != nil {
				return fmt.Errorf("failed to open db: %w", err)
			}
			defer d.Close()

			jobs, err := db.GetJobs(d)
			if err != nil {
				return err
			}

			for _, job := range jobs {
				fmt.Printf("%d\t%s\t%s\tstatus=%d attempts=%d\n",
					job.ID, job.Kind, job.Payload, job.Status, job.Attempts)
			}
			return nil
		},
	}
}
