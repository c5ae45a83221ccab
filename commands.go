package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crillab/plugdep/catalog"
	"github.com/crillab/plugdep/config"
	"github.com/crillab/plugdep/explain"
	"github.com/crillab/plugdep/expr"
	"github.com/crillab/plugdep/plugin"
	"github.com/crillab/plugdep/resolve"
)

// app holds what commands share once the configuration is loaded.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	out io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "plugdep",
		Short: "Plugin dependency resolver",
		Long: `plugdep selects, for an install request, one version of every plugin it
transitively depends on, so that all version constraints hold. When no such
selection exists, it reports the conflicting requirements.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/plugdep/config.yaml)")
	flags.StringP("local", "l", "", "catalog of locally available plugins")
	flags.StringSlice("catalog", nil, "remote catalog, can be repeated")
	flags.StringP("installed", "i", "", "list of installed plugins")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("local", flags.Lookup("local"))
	_ = viper.BindPFlag("installed", flags.Lookup("installed"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(a.resolveCmd(), a.formulaCmd(), a.dimacsCmd(), a.solveCmd())
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	// e.g., PLUGDEP_LOG_LEVEL for log.level
	viper.SetEnvPrefix("PLUGDEP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "could not read config")
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "invalid config")
	}
	paths, err := cmd.Flags().GetStringSlice("catalog")
	if err != nil {
		return err
	}
	for _, path := range paths {
		cfg.Catalogs = append(cfg.Catalogs, config.CatalogConfig{Name: path, Path: path})
	}
	a.cfg = cfg
	a.log = newLogger(cfg.Log, cmd.ErrOrStderr())
	a.out = cmd.OutOrStdout()
	return nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.Out = w
	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		l.Level = lvl
	}
	if cfg.Format == "json" {
		l.Formatter = &logrus.JSONFormatter{}
	}
	return l
}

func (a *app) resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve request.yaml",
		Short: "Select the plugin versions to install",
		Long: `Select the plugin versions to install for the given request.
Installed plugins are kept at least in their installed version.
Exits with status 2 if dependencies are conflicting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if a.cfg.Resolve.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, a.cfg.Resolve.Timeout)
				defer cancel()
			}
			root, candidates, err := a.problem(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := a.resolve(ctx, root, candidates)
			if err != nil {
				return err
			}
			switch res := res.(type) {
			case *resolve.ResolvedDependencies:
				a.printSelection(res.Selected)
				return nil
			case *resolve.ConflictDetected:
				if err := explain.Render(a.out, res.Conflicts, a.cfg.Report.Color); err != nil {
					return err
				}
				if a.cfg.Resolve.Core {
					if err := a.printCore(resolve.Build(root, candidates)); err != nil {
						return err
					}
				}
				return res
			default:
				panic("invalid result type")
			}
		},
	}
	flags := cmd.Flags()
	flags.Duration("timeout", 0, "give up resolution after this duration (0 to wait forever)")
	flags.Bool("core", false, "on conflict, also print a minimal set of incompatible constraints")
	flags.Bool("color", true, "color conflict reports")
	_ = viper.BindPFlag("resolve.timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("resolve.core", flags.Lookup("core"))
	_ = viper.BindPFlag("report.color", flags.Lookup("color"))
	return cmd
}

func (a *app) formulaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formula request.yaml",
		Short: "Print the dependency formula of a request, one clause per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, candidates, err := a.problem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, clause := range expr.Conjuncts(resolve.Build(root, candidates)) {
				fmt.Fprintln(a.out, clause)
			}
			return nil
		},
	}
}

func (a *app) dimacsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dimacs request.yaml",
		Short: "Write the dependency formula of a request as a DIMACS CNF problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, candidates, err := a.problem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return expr.Dimacs(resolve.Build(root, candidates), a.out)
		},
	}
}

func (a *app) solveCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "solve file.bf",
		Short: "Solve a boolean formula over plugin versions",
		Long: `Solve a boolean formula over plugin versions, such as
  "App@1.0.0" & ("App@1.0.0" -> "Sql@1.0.0" | "Sql@2.0.0")
Two versions of the same plugin are never selected together.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			fmt.Fprintf(a.out, "c solving %s\n", path)
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "could not open %q", path)
			}
			defer f.Close()
			form, err := expr.Parse(f)
			if err != nil {
				return errors.Wrapf(err, "could not parse formula in %q", path)
			}
			a.solve(form, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "sets verbose mode on")
	return cmd
}

// problem loads the install request at path, and collects the candidate versions of its dependencies.
func (a *app) problem(ctx context.Context, path string) (plugin.Node, map[string][]plugin.Node, error) {
	if a.cfg.Sources() == 0 {
		return nil, nil, errors.New("no catalog configured: use --local or --catalog")
	}
	req, err := catalog.LoadRequest(path)
	if err != nil {
		return nil, nil, err
	}
	installed := make(map[string]*semver.Version)
	if a.cfg.Installed != "" {
		if installed, err = catalog.LoadInstalled(a.cfg.Installed); err != nil {
			return nil, nil, err
		}
	}
	deps, err := catalog.WithInstalled(req.Dependencies, installed)
	if err != nil {
		return nil, nil, err
	}
	var local catalog.Source
	if a.cfg.Local != "" {
		if local, err = catalog.LoadFile(a.cfg.Local); err != nil {
			return nil, nil, err
		}
	}
	remotes := make([]catalog.Source, len(a.cfg.Catalogs))
	for i, c := range a.cfg.Catalogs {
		if remotes[i], err = catalog.LoadFile(c.Path); err != nil {
			return nil, nil, errors.Wrapf(err, "catalog %s", c.Name)
		}
	}
	m, err := catalog.Collect(ctx, deps, installed, local, remotes...)
	if err != nil {
		return nil, nil, err
	}
	if a.log.Level >= logrus.InfoLevel {
		a.log.WithFields(logrus.Fields{
			"found":      len(m.Found),
			"unresolved": len(m.Unresolved),
			"sources":    a.cfg.Sources(),
		}).Info("Collected candidate versions")
	}
	candidates, err := m.Candidates()
	if err != nil {
		return nil, nil, err
	}
	return plugin.NewRoot(deps...), candidates, nil
}

// resolve runs the resolution, but gives up waiting for it once ctx is done.
func (a *app) resolve(ctx context.Context, root plugin.Node, candidates map[string][]plugin.Node) (resolve.Result, error) {
	done := make(chan resolve.Result, 1)
	go func() {
		done <- resolve.New(a.log).Resolve(root, candidates)
	}()
	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "resolution abandoned")
	}
}

func (a *app) printSelection(selected []plugin.SelectedVersion) {
	for _, sv := range selected {
		line := sv.String()
		if sv.Installed {
			line += " (installed)"
		}
		if sv.RemoteIndex >= 0 && sv.RemoteIndex < len(a.cfg.Catalogs) {
			line += " [" + a.cfg.Catalogs[sv.RemoteIndex].Name + "]"
		}
		fmt.Fprintln(a.out, line)
	}
}

func (a *app) printCore(f expr.Formula) error {
	mus, err := explain.Core(f, a.log)
	if err != nil {
		return errors.Wrap(err, "could not compute minimal set of incompatible constraints")
	}
	fmt.Fprintln(a.out, "Minimal set of incompatible constraints:")
	for _, clause := range mus {
		fmt.Fprintf(a.out, "  %s\n", clause)
	}
	return nil
}

func (a *app) solve(f expr.Formula, verbose bool) {
	vars := f.Free()
	if verbose {
		fmt.Fprintf(a.out, "c | Number of variables : %9d |\n", len(vars))
	}
	res, stats := resolve.New(a.log).Solve(f)
	if verbose {
		fmt.Fprintf(a.out, "c nb decisions: %d\nc nb leaves: %d\nc nb failures: %d\nc max depth: %d\n",
			stats.Decisions, stats.Leaves, stats.Failures, stats.MaxDepth)
	}
	resolved, ok := res.(*resolve.ResolvedDependencies)
	if !ok {
		fmt.Fprintln(a.out, "UNSATISFIABLE")
		return
	}
	fmt.Fprintln(a.out, "SATISFIABLE")
	selected := make(map[string]bool)
	for _, sv := range resolved.Selected {
		selected[sv.Key()] = true
	}
	for _, v := range vars {
		fmt.Fprintf(a.out, "%s: %t\n", v, selected[v.Key()])
	}
}
