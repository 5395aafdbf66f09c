// Command report dumps the CAEC tables and a few headline counters.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/caec/caec-backend/internal/contacts"
	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/internal/users"
	"github.com/caec/caec-backend/pkg/config"
	"github.com/caec/caec-backend/pkg/db"
	"github.com/caec/caec-backend/pkg/env"
	"github.com/caec/caec-backend/pkg/logger"
)

// opener builds a reporter writing to out; the returned func releases it.
type opener func(ctx context.Context, out io.Writer, format string) (*reporter, func(), error)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(openDatabase).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	var format string

	run := func(section func(*reporter, context.Context) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			rep, release, err := open(cmd.Context(), cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			defer release()
			return section(rep, cmd.Context())
		}
	}

	root := &cobra.Command{
		Use:           "report",
		Short:         "Print CAEC users, systems, contacts and stats",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          run((*reporter).All),
	}
	root.PersistentFlags().StringVarP(&format, "output", "o", formatTable, "output format: table|json|yaml")

	root.AddCommand(
		&cobra.Command{Use: "users", Short: "List registered users", Args: cobra.NoArgs, RunE: run((*reporter).Users)},
		&cobra.Command{Use: "systems", Short: "List systems with their owners", Args: cobra.NoArgs, RunE: run((*reporter).Systems)},
		&cobra.Command{Use: "contacts", Short: "List contact rows", Args: cobra.NoArgs, RunE: run((*reporter).Contacts)},
		&cobra.Command{Use: "stats", Short: "Print headline counters", Args: cobra.NoArgs, RunE: run((*reporter).Stats)},
	)
	return root
}

// openDatabase reads only the DB settings so the report runs without the
// session secret and the rest of the api configuration.
func openDatabase(ctx context.Context, out io.Writer, format string) (*reporter, func(), error) {
	cfg := config.DBConfig{
		Driver: env.Get(config.EnvDBDriver, config.DriverSQLite),
		DSN:    os.Getenv(config.EnvDBDSN),
	}
	if cfg.DSN == "" && cfg.IsSQLite() {
		cfg.DSN = config.DefaultSQLiteDSN
	}
	if cfg.DSN == "" {
		return nil, nil, fmt.Errorf("%s is required for driver %q", config.EnvDBDSN, cfg.Driver)
	}

	logg := logger.New(logger.Options{ServiceName: "report", Level: logger.ParseLevel(os.Getenv(config.EnvLogLevel)), Output: os.Stderr})
	client, err := db.New(ctx, cfg, logg)
	if err != nil {
		return nil, nil, err
	}
	release := func() { _ = client.Close() }

	rep, err := newReporter(
		users.NewRepository(client.DB()),
		systems.NewRepository(client.DB()),
		contacts.NewRepository(client.DB()),
		out, format,
	)
	if err != nil {
		release()
		return nil, nil, err
	}
	return rep, release, nil
}
