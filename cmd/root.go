package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cmmoran/controlapigen/internal/config"
	"github.com/cmmoran/controlapigen/pkg/action/generate"
	"github.com/cmmoran/controlapigen/pkg/apigen"
)

const levelTrace = slog.Level(-8)

// version is stamped at build time:
//
//	go build -ldflags "-X github.com/cmmoran/controlapigen/cmd.version=v1.2.0"
var version = "dev"

var (
	configFiles []string
	level       string
	configErr   error

	flagRoot            string
	flagVariable        string
	flagFormat          string
	flagPackage         string
	flagExclude         []string
	flagAllowUnresolved bool
	flagOutput          string
)

// rootCmd generates the catalog when given a declaration file and prints
// usage otherwise.
var rootCmd = &cobra.Command{
	Use:           "controlapigen [declarations.d.ts]",
	Short:         "Generate the control API catalog from TypeScript declarations",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(color.Error, color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(color.Error, color.YellowString("hint:"), hint)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&level, "level", "l", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringSliceVar(&configFiles, "config", []string{}, "config file(s) - multiple config files are merged with last specified file having highest priority")

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagRoot, "root", "r", "", "namespace root of controls (default from config)")
	pf.StringVar(&flagVariable, "variable", "", "name of the generated variable (default from config)")
	pf.StringVarP(&flagFormat, "format", "f", apigen.FormatJS, "output format: js or go")
	pf.StringVar(&flagPackage, "package", "controls", "package name for --format=go")
	pf.StringSliceVarP(&flagExclude, "exclude", "x", []string{}, "additional qualified class names to exclude")
	pf.BoolVar(&flagAllowUnresolved, "allow-unresolved", false, "keep unknown type names instead of failing")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write to file instead of standard output")
}

// initConfig installs the logger and reads config files and ENV variables.
func initConfig() {
	ll, err := parseLevel(level)
	if err != nil {
		configErr = err
		return
	}
	// stdout carries the generated catalog; logs go to stderr
	l := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: false,
		Level:     ll,
	}))
	slog.SetDefault(l)

	if err = config.Prepare(viper.GetViper(), l, configFiles...); err != nil {
		configErr = err
		return
	}
	viper.Set("version", version)
	l.Debug("configuration prepared", "version", version, "files", len(configFiles))
}

func parseLevel(s string) (slog.Level, error) {
	var ll slog.Level
	if strings.EqualFold(s, "trace") {
		return levelTrace, nil
	}
	if err := ll.UnmarshalText([]byte(s)); err != nil {
		return ll, errors.Wrapf(err, "invalid log level %q", s)
	}
	return ll, nil
}

// loadOptions merges the loaded configuration with command line flags.
func loadOptions(c *cobra.Command) (*apigen.Options, error) {
	if configErr != nil {
		return nil, configErr
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	opts := apigen.FromConfig(cfg)
	flags := c.Flags()
	if flags.Changed("root") {
		opts.Root = flagRoot
	}
	if flags.Changed("variable") {
		opts.Variable = flagVariable
	}
	if flags.Changed("allow-unresolved") {
		opts.AllowUnresolved = flagAllowUnresolved
	}
	opts.Format = flagFormat
	opts.Package = flagPackage
	opts.Exclude = append(opts.Exclude, flagExclude...)
	opts.Logger = slog.Default()
	opts.Normalize()
	return opts, nil
}

func runGenerate(c *cobra.Command, args []string) error {
	if len(args) == 0 {
		return c.Usage()
	}
	opts, err := loadOptions(c)
	if err != nil {
		return err
	}
	return generate.Generate(c.Context(), opts, args[0], flagOutput, c.OutOrStdout())
}
