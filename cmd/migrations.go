package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var migrationsLimit int

var migrationsCmd = &cobra.Command{
	Use:   "migrations [id]",
	Short: "List field migration logs, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMigrations,
}

func init() {
	migrationsCmd.Flags().IntVar(&migrationsLimit, "limit", 20, "Number of logs to list")
	RootCmd.AddCommand(migrationsCmd)
}

func runMigrations(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	e, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	if e.migrations == nil {
		return errors.New("migration log datastore is not available")
	}

	var out any
	if len(args) == 1 {
		log, err := e.migrations.Get(ctx, args[0])
		if err != nil {
			return err
		}
		out = log
	} else {
		logs, err := e.migrations.List(ctx, migrationsLimit)
		if err != nil {
			return err
		}
		out = logs
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to render logs: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
