package main

import (
	"context"
	"encoding/json"
	"fmt"
	"location-capture-service/internal/adapters/position"
	"location-capture-service/internal/adapters/preferences"
	"location-capture-service/internal/adapters/repositories"
	"location-capture-service/internal/api/dto"
	"location-capture-service/internal/config"
	"location-capture-service/internal/domain"
	"location-capture-service/internal/platform/logging"
	"location-capture-service/internal/services"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:          "dbtool",
		Short:        "Maintain the local location database and preferences",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromViper(a.v)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("db", "data/locations.db", "SQLite database file (DB_PATH)")
	flags.String("prefs", "data/preferences.yaml", "preferences file (PREFS_PATH)")
	flags.String("log-level", "info", "log level (LOG_LEVEL)")
	_ = a.v.BindPFlag("db_path", flags.Lookup("db"))
	_ = a.v.BindPFlag("prefs_path", flags.Lookup("prefs"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		a.initCmd(),
		a.seedCmd(),
		a.listCmd(),
		a.captureCmd(),
		a.darkModeCmd(),
	)

	return root
}

func (a *app) openStore(ctx context.Context) (*repositories.SqliteLocationRepository, error) {
	repo, err := repositories.OpenSqliteLocationRepository(ctx, a.cfg.DBPath, a.logger)
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the locations table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready: %s\n", a.cfg.DBPath)
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Append locations from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			ids, err := repositories.SeedFromJSON(cmd.Context(), repo, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d locations\n", len(ids))
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every stored location, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			records, err := repo.ListAll(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dto.ListLocationsResponse{Locations: toLocations(records)})
			}
			return printRecords(cmd, records)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func toLocations(records []domain.LocationRecord) []dto.LocationResponse {
	out := make([]dto.LocationResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.LocationResponse{ID: r.ID, Latitude: r.Latitude, Longitude: r.Longitude})
	}
	return out
}

func printRecords(cmd *cobra.Command, records []domain.LocationRecord) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLATITUDE\tLONGITUDE")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID,
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64))
	}
	return tw.Flush()
}

func (a *app) captureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture",
		Short: "Sample the current position once and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			provider, err := a.newProvider(cmd)
			if err != nil {
				return err
			}

			controller, err := services.NewCaptureController(repo, provider, services.CaptureOptions{
				SampleTimeout: a.cfg.SampleTimeout,
				Logger:        a.logger,
			})
			if err != nil {
				return err
			}

			res, err := controller.Capture(cmd.Context())
			if err != nil {
				return fmt.Errorf("capture failed (%s): %w", res.Reason, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stored location #%d\n", res.RecordID)
			return printRecords(cmd, res.Records)
		},
	}
}

func (a *app) newProvider(cmd *cobra.Command) (*position.Provider, error) {
	var gate position.PermissionGate
	if a.cfg.Permission == config.PermissionPrompt {
		gate = position.NewPromptGate(cmd.InOrStdin(), cmd.OutOrStdout())
	} else {
		status, err := domain.ParsePermissionStatus(a.cfg.Permission)
		if err != nil {
			return nil, err
		}
		gate = position.StaticGate{Status: status}
	}

	var source position.FixSource
	switch a.cfg.PositionSource {
	case config.SourceGpsd:
		gpsd, err := position.NewGpsdSource(a.cfg.GpsdAddr, a.logger)
		if err != nil {
			return nil, err
		}
		source = gpsd
	default:
		source = position.StaticSource{Fix: domain.Coordinates{Lat: a.cfg.StaticLatitude, Lon: a.cfg.StaticLongitude}}
	}

	return position.NewProvider(gate, source)
}

func (a *app) darkModeService() (*services.DarkModeService, error) {
	prefs, err := preferences.OpenYAMLPreferenceStore(a.cfg.PrefsPath, a.logger)
	if err != nil {
		return nil, err
	}
	return services.NewDarkModeService(prefs)
}

func (a *app) darkModeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dark-mode",
		Short: "Read or change the dark-mode preference",
	}

	get := &cobra.Command{
		Use:  "get",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.darkModeService()
			if err != nil {
				return err
			}
			enabled, err := svc.Get(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), onOff(enabled))
			return nil
		},
	}

	set := &cobra.Command{
		Use:       "set <on|off>",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch strings.ToLower(args[0]) {
			case "on", "true":
				enabled = true
			case "off", "false":
			default:
				return fmt.Errorf("dark-mode set: want on or off, got %q", args[0])
			}

			svc, err := a.darkModeService()
			if err != nil {
				return err
			}
			if err := svc.Set(cmd.Context(), enabled); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), onOff(enabled))
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:  "toggle",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.darkModeService()
			if err != nil {
				return err
			}
			enabled, err := svc.Toggle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), onOff(enabled))
			return nil
		},
	}

	cmd.AddCommand(get, set, toggle)
	return cmd
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
