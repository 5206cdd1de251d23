package cmd

import (
	"fmt"
	"github.com/carlmjohnson/versioninfo"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robinovitch61/vl/internal"
	"github.com/robinovitch61/vl/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"strings"
	"time"
)

var (
	// Version is public so users can optionally specify or override the version
	// at build time by passing in ldflags, e.g.
	//   go build -ldflags "-X github.com/robinovitch61/vl/cmd.Version=vX.Y.Z"
	Version = ""
)

type arg struct {
	cliShort, cfgFileEnvVar, description string
	// defaultValue is a bool, int, int64, float64, time.Duration or string and determines the flag type
	defaultValue any
}

var (
	defaults = config.Default()

	rootNameToArg = map[string]arg{
		"config": {
			cliShort:    "c",
			description: `YAML config file. Keys are the long flag names`,
		},
		"count": {
			cliShort:      "n",
			cfgFileEnvVar: "count",
			description:   `Number of synthetic items when no items file is given`,
			defaultValue:  defaults.Count,
		},
		"estimate": {
			cfgFileEnvVar: "estimate",
			description:   `Estimated lines per row before it is measured`,
			defaultValue:  defaults.EstimatedRowSize,
		},
		"fail-rate": {
			cfgFileEnvVar: "fail-rate",
			description:   `Probability in [0, 1] that a synthetic page load fails`,
			defaultValue:  defaults.FailRate,
		},
		"help": {
			description: `Print usage`,
		},
		"items": {
			cliShort:      "i",
			cfgFileEnvVar: "items",
			description:   `YAML file with an items list. Overrides --count`,
			defaultValue:  "",
		},
		"latency": {
			cliShort:      "l",
			cfgFileEnvVar: "latency",
			description:   `Delay of every synthetic page load, e.g. 0s, 150ms, 2s`,
			defaultValue:  defaults.Latency,
		},
		"log-file": {
			cfgFileEnvVar: "log-file",
			description:   `Write the application log to this file`,
			defaultValue:  "",
		},
		"log-level": {
			cfgFileEnvVar: "log-level",
			description:   `Log level: trace, debug, info, warn, error or disabled`,
			defaultValue:  defaults.LogLevel,
		},
		"overscan": {
			cfgFileEnvVar: "overscan",
			description:   `Rows rendered beyond each edge of the viewport`,
			defaultValue:  defaults.Overscan,
		},
		"page-size": {
			cliShort:      "p",
			cfgFileEnvVar: "page-size",
			description:   `Items asked for per page`,
			defaultValue:  defaults.PageSize,
		},
		"seed": {
			cfgFileEnvVar: "seed",
			description:   `Seed of the synthetic item text`,
			defaultValue:  defaults.Seed,
		},
		"stats": {
			cfgFileEnvVar: "stats",
			description:   `If present, show memory use and pooled rows in the footer`,
			defaultValue:  defaults.Stats,
		},
		"wrap": {
			cliShort:      "w",
			cfgFileEnvVar: "wrap",
			description:   `Wrap long rows. Use --wrap=false to truncate them`,
			defaultValue:  defaults.Wrap,
		},
	}

	description = fmt.Sprintf(`vl %s

vl is a terminal list viewer that stays fast for any number of rows. It renders only the rows on screen and loads
only the pages holding them

Home page: https://github.com/robinovitch61/vl`,
		getVersion(),
	)

	rootCmd = &cobra.Command{
		Use:   "vl",
		Short: "vl: virtualized list viewer",
		Long:  description,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, rootNameToArg)
		},
		RunE:         mainEntrypoint,
		Version:      getVersion(),
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addFlags(rootCmd.PersistentFlags())
	for cliLong, c := range rootNameToArg {
		if c.cfgFileEnvVar != "" {
			_ = viper.BindPFlag(c.cfgFileEnvVar, rootCmd.PersistentFlags().Lookup(cliLong))
		}
	}
	rootCmd.SetVersionTemplate(`{{printf "vl %s\n" .Version}}`)
	rootCmd.Flags().BoolP("version", "v", false, "Show vl version")
}

func addFlags(flags *pflag.FlagSet) {
	flags.BoolP("help", rootNameToArg["help"].cliShort, false, rootNameToArg["help"].description)
	flags.StringP("config", rootNameToArg["config"].cliShort, "", rootNameToArg["config"].description)
	for _, cliLong := range []string{
		"count",
		"estimate",
		"fail-rate",
		"items",
		"latency",
		"log-file",
		"log-level",
		"overscan",
		"page-size",
		"seed",
		"stats",
		"wrap",
	} {
		addFlag(flags, cliLong, rootNameToArg[cliLong])
	}
}

func addFlag(flags *pflag.FlagSet, cliLong string, c arg) {
	switch def := c.defaultValue.(type) {
	case bool:
		flags.BoolP(cliLong, c.cliShort, def, c.description)
	case int:
		flags.IntP(cliLong, c.cliShort, def, c.description)
	case int64:
		flags.Int64P(cliLong, c.cliShort, def, c.description)
	case float64:
		flags.Float64P(cliLong, c.cliShort, def, c.description)
	case time.Duration:
		flags.DurationP(cliLong, c.cliShort, def, c.description)
	case string:
		flags.StringP(cliLong, c.cliShort, def, c.description)
	default:
		panic(fmt.Sprintf("flag %s has unsupported default %T", cliLong, def))
	}
}

func initConfig(cmd *cobra.Command, nameToArg map[string]arg) error {
	v := viper.GetViper()
	if err := readConfig(v, cmd.Flags().Lookup("config").Value.String()); err != nil {
		return err
	}
	return bindFlags(cmd, nameToArg, v)
}

// readConfig makes v read VL_ prefixed env vars, e.g. VL_PAGE_SIZE, and the config file at path if set
func readConfig(v *viper.Viper, path string) error {
	v.SetEnvPrefix("VL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

func bindFlags(cmd *cobra.Command, nameToArg map[string]arg, v *viper.Viper) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Determine the naming convention of the flags when represented in the config file
		cliLong := f.Name
		viperName := nameToArg[cliLong].cfgFileEnvVar
		if viperName == "" || err != nil {
			return
		}

		// Apply the viper config value to the flag when the flag is not manually specified
		// and viper has a value from the config file or env var
		if !f.Changed && v.IsSet(viperName) {
			val := v.Get(viperName)
			if setErr := cmd.Flags().Set(cliLong, fmt.Sprintf("%v", val)); setErr != nil {
				err = fmt.Errorf("setting flag %s: %w", cliLong, setErr)
			}
		}
	})
	return err
}

func mainEntrypoint(cmd *cobra.Command, _ []string) error {
	c, err := getConfig(cmd)
	if err != nil {
		return err
	}

	log, closer, err := internal.NewLogger(c)
	if err != nil {
		return err
	}
	defer closer.Close()

	src, err := internal.NewSource(c)
	if err != nil {
		log.Error(err, "creating source")
		return err
	}

	program := tea.NewProgram(internal.InitialModel(c, src, log), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Error(err, "program exited")
		return fmt.Errorf("error on vl startup: %w", err)
	}
	return nil
}

func getVersion() string {
	if Version != "" {
		return Version
	}
	return versioninfo.Short()
}

func getConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	c := config.Default()
	c.Version = getVersion()
	c.ItemsPath = flags.Lookup("items").Value.String()
	c.LogFile = flags.Lookup("log-file").Value.String()
	c.LogLevel = flags.Lookup("log-level").Value.String()

	var err error
	if c.Count, err = flags.GetInt("count"); err != nil {
		return c, err
	}
	if c.PageSize, err = flags.GetInt("page-size"); err != nil {
		return c, err
	}
	if c.Overscan, err = flags.GetInt("overscan"); err != nil {
		return c, err
	}
	if c.EstimatedRowSize, err = flags.GetInt("estimate"); err != nil {
		return c, err
	}
	if c.Seed, err = flags.GetInt64("seed"); err != nil {
		return c, err
	}
	if c.FailRate, err = flags.GetFloat64("fail-rate"); err != nil {
		return c, err
	}
	if c.Latency, err = flags.GetDuration("latency"); err != nil {
		return c, err
	}
	if c.Wrap, err = flags.GetBool("wrap"); err != nil {
		return c, err
	}
	if c.Stats, err = flags.GetBool("stats"); err != nil {
		return c, err
	}
	if err := config.Validate(&c); err != nil {
		return c, err
	}
	return c, nil
}
