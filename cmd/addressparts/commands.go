// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/wneessen/addressparts/internal/config"
	"github.com/wneessen/addressparts/internal/geocode"
	"github.com/wneessen/addressparts/internal/logger"
	"github.com/wneessen/addressparts/internal/service"
)

// app holds the state shared by all subcommands
type app struct {
	confPath string
	log      *logger.Logger
	serv     *service.Service
}

// lookupFlags are the query options shared by geocode and reverse
type lookupFlags struct {
	language   string
	region     string
	bounds     string
	components []string
}

func newRootCmd() *cobra.Command {
	a := new(app)
	rootCmd := &cobra.Command{
		Use:           "addressparts",
		Short:         "Decompose geocoded street addresses into their parts",
		Version:       fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.confPath, "config", "c", "", "path to the config file")

	rootCmd.AddCommand(a.geocodeCmd())
	rootCmd.AddCommand(a.reverseCmd())
	rootCmd.AddCommand(a.parseCmd())

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	conf, err := loadConfig(a.confPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.log = logger.NewLogger(conf.LogLevel, cmd.ErrOrStderr())

	a.serv, err = service.New(conf, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize addressparts service: %w", err)
	}
	if err = a.serv.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start addressparts service: %w", err)
	}
	a.log.Debug("addressparts service started", slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	return nil
}

func (a *app) geocodeCmd() *cobra.Command {
	flags := new(lookupFlags)
	cmd := &cobra.Command{
		Use:   "geocode <address>",
		Short: "Geocode an address and print its address parts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			result, err := a.serv.Lookup(cmd.Context(), strings.Join(args, " "), opts)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), result)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func (a *app) reverseCmd() *cobra.Command {
	flags := new(lookupFlags)
	cmd := &cobra.Command{
		Use:   "reverse <lat,lon>...",
		Short: "Reverse geocode coordinates and print their address parts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			for _, arg := range args {
				coords, err := geocode.ParseCoordinate(arg)
				if err != nil {
					return err
				}
				result, err := a.serv.ReverseLookup(cmd.Context(), coords, opts)
				if err != nil {
					return err
				}
				if err = writeResult(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func (a *app) parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Extract address parts from a saved geocoding response (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "stdin"
			input := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open geocoding response: %w", err)
				}
				defer func() {
					if err := file.Close(); err != nil {
						a.log.Error("failed to close geocoding response file", logger.Err(err))
					}
				}()
				name, input = args[0], file
			}

			var resp geocode.Response
			if err := json.NewDecoder(input).Decode(&resp); err != nil {
				return fmt.Errorf("failed to decode geocoding response: %w", err)
			}
			return writeResult(cmd.OutOrStdout(), a.serv.Extract(name, &resp))
		},
	}
}

func (f *lookupFlags) register(cmd *cobra.Command, forward bool) {
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "language of the results, e.g. \"es\"")
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "region bias as ccTLD, e.g. \"co\"")
	if forward {
		cmd.Flags().StringVarP(&f.bounds, "bounds", "b", "", "viewport bias as \"swlat,swlng|nelat,nelng\"")
		cmd.Flags().StringArrayVar(&f.components, "component", nil, "component filter as key=value, may be repeated")
	}
}

func (f *lookupFlags) options() (geocode.Options, error) {
	var opts geocode.Options
	if f.language != "" {
		tag, err := language.Parse(f.language)
		if err != nil {
			return opts, fmt.Errorf("invalid language %q: %w", f.language, err)
		}
		opts.Language = tag
	}
	opts.Region = strings.ToLower(strings.TrimSpace(f.region))
	if f.bounds != "" {
		bounds, err := geocode.ParseBounds(f.bounds)
		if err != nil {
			return opts, err
		}
		opts.Bounds = bounds
	}
	for _, component := range f.components {
		key, value, ok := strings.Cut(component, "=")
		if !ok {
			return opts, fmt.Errorf("invalid component filter %q, expected key=value", component)
		}
		if err := opts.Components.Set(key, value); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func writeResult(w io.Writer, result service.Result) error {
	if err := json.NewEncoder(w).Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// loadConfig reads the config file given on the command line, falls back to the default
// location and finally to defaults and environment variables only.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		return config.NewFromFile(path, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "addressparts", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
