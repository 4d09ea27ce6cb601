package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// cliOptions holds the flag values shared by every subcommand.
type cliOptions struct {
	configPath   string
	databasePath string
	backend      string
	logFile      string
	debug        bool

	outputJSON bool
	showIDs    bool
	indent     int

	cfg         *Config
	logger      *zap.Logger
	buildLogger func(debug, interactive bool, logFile string) (*zap.Logger, error)
}

func newCLIOptions() *cliOptions {
	return &cliOptions{logger: zap.NewNop(), buildLogger: newLogger}
}

func newRootCmd(opts *cliOptions) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "minilib",
		Short: "Mini Library - browse a small book catalog",
		Long: `minilib lets you search a fixed list of books by title, filter them by
category and keep a list of favorites. The search text, the selected
category and the favorites are remembered between runs.

Run without arguments to start the interactive viewer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *Session) error {
				if !isTerminal(cmd.OutOrStdout()) {
					renderText(cmd.OutOrStdout(), s.View())
					return nil
				}
				return runTUI(s, opts.logger, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
	addStoreFlags(rootCmd.PersistentFlags(), opts)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show the books matching the saved search and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *Session) error {
				return opts.printView(cmd.OutOrStdout(), s.View())
			})
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Set the title search text (no argument clears it)",
		Example: `  minilib search algo
  minilib search`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *Session) error {
				if err := s.SetSearchText(strings.Join(args, " ")); err != nil {
					return err
				}
				return opts.printView(cmd.OutOrStdout(), s.View())
			})
		},
	}

	categoryCmd := &cobra.Command{
		Use:   "category [name]",
		Short: "Select a category, or list the categories when called without one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *Session) error {
				if len(args) == 0 {
					renderCategories(cmd.OutOrStdout(), s.View())
					return nil
				}
				name, err := s.ResolveCategory(args[0])
				if err != nil {
					return err
				}
				if err := s.SetCategory(name); err != nil {
					return err
				}
				return opts.printView(cmd.OutOrStdout(), s.View())
			})
		},
	}

	favoriteCmd := &cobra.Command{
		Use:   "favorite <id>...",
		Short: "Add or remove books from the favorites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				id, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid book id %q: %w", arg, err)
				}
				ids = append(ids, id)
			}
			return opts.withSession(cmd, func(s *Session) error {
				for _, id := range ids {
					if err := s.ToggleFavorite(id); err != nil {
						return err
					}
				}
				renderFavorites(cmd.OutOrStdout(), s.View())
				return nil
			})
		},
	}

	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "Show the favorite books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *Session) error {
				view := s.View()
				if opts.outputJSON {
					return opts.printJSON(cmd.OutOrStdout(), view.Favorites)
				}
				renderFavorites(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}

	queryCmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Run a full text query over the catalog",
		Long: `Runs a query string against a full text index of the catalog. The saved
search and category are neither used nor changed.

  title:algoritms~1          fuzzy match on the title
  +category:cs -author:kaya  must be in CS, must not be by Kaya
  python                     match any field`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			index, err := NewBookIndex(Catalog())
			if err != nil {
				return fmt.Errorf("build index: %w", err)
			}
			defer index.Close()

			results, err := index.Search(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return opts.printJSON(cmd.OutOrStdout(), results)
			}

			store, err := opts.openExistingStore(cmd)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, store.Close()) }()

			// Only the favorite markers are needed, so nothing is written back.
			session, err := restoreSession(store, Catalog(), opts.logger)
			if err != nil {
				return err
			}
			view := session.View()
			view.Books = results
			renderBooks(cmd.OutOrStdout(), view)
			return nil
		},
	}

	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Print the raw persisted values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			store, err := opts.openExistingStore(cmd)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, store.Close()) }()

			keys, err := store.Keys()
			if err != nil {
				return err
			}
			for _, k := range keys {
				v, _, err := store.Get(k)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, v)
			}
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the saved search, category and favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(cmd, false)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clear state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "State cleared.")
			return nil
		},
	}

	for _, c := range []*cobra.Command{listCmd, searchCmd, categoryCmd, favoritesCmd, queryCmd} {
		addOutputFlags(c.Flags(), opts)
	}
	rootCmd.AddCommand(listCmd, searchCmd, categoryCmd, favoriteCmd, favoritesCmd, queryCmd, stateCmd, resetCmd)
	return rootCmd
}

func addStoreFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.configPath, "config", defaultConfigPath(), "path to the YAML config file")
	fs.StringVar(&opts.databasePath, "database", "", "the location to store the state database (default ~/.minilib.sqlite)")
	fs.StringVar(&opts.backend, "backend", "", "state backend: sqlite, bolt or memory")
	fs.StringVar(&opts.logFile, "log-file", "", "where the interactive viewer writes its log (default ~/.minilib.log)")
	fs.BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
}

func addOutputFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.BoolVar(&opts.outputJSON, "json", false, "output matching books in JSON, grouped by category")
	fs.BoolVar(&opts.showIDs, "show-ids", false, "include id and author in JSON output")
	fs.IntVarP(&opts.indent, "indent", "i", 2, "with --json, # of spaces to indent by")
}

// setup loads the config file, applies explicitly set flags over it and
// builds the logger.
func (o *cliOptions) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("database") {
		cfg.Database = truePath(o.databasePath)
	}
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("log-file") {
		cfg.LogFile = truePath(o.logFile)
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if _, err := newDatastore(cfg.Backend); err != nil {
		return err
	}
	o.cfg = cfg

	interactive := !cmd.HasParent() && isTerminal(cmd.OutOrStdout())
	logger, err := o.buildLogger(cfg.Debug, interactive, cfg.LogFile)
	if err != nil {
		return err
	}
	o.logger = logger
	return nil
}

// storeLocation resolves the backend and its database path. An unset backend
// follows whichever database already exists; the first interactive run
// without any database asks which backend to use.
func (o *cliOptions) storeLocation(cmd *cobra.Command, mayPrompt bool) (backend, path string) {
	sqlitePath := o.cfg.Database
	boltPath := boltPathFor(sqlitePath)
	sqliteExists := fileExists(sqlitePath)
	boltExists := fileExists(boltPath)

	backend = strings.ToLower(o.cfg.Backend)
	if backend == "" {
		switch {
		case boltExists && !sqliteExists:
			backend = backendBolt
		case mayPrompt && !sqliteExists && !boltExists:
			backend = promptBackend(cmd.InOrStdin(), cmd.OutOrStdout())
		default:
			backend = backendSQLite
		}
	}
	if backend == backendBolt {
		return backend, boltPath
	}
	return backend, sqlitePath
}

// openStore initializes the resolved backend. The first bolt run next to an
// existing SQLite database imports it.
func (o *cliOptions) openStore(cmd *cobra.Command, mayPrompt bool) (Datastore, error) {
	backend, path := o.storeLocation(cmd, mayPrompt)
	store, err := newDatastore(backend)
	if err != nil {
		return nil, err
	}

	sqlitePath := o.cfg.Database
	needsImport := backend == backendBolt && fileExists(sqlitePath) && !fileExists(path)
	if err := store.Initialize(path); err != nil {
		return nil, fmt.Errorf("open %s backend at %s: %w", backend, path, err)
	}
	o.logger.Debug("Opened store", zap.String("backend", backend), zap.String("path", path))

	if needsImport {
		n, err := importState(sqlitePath, store)
		if err != nil {
			o.logger.Warn("Import from SQLite failed", zap.String("path", sqlitePath), zap.Error(err))
		} else {
			o.logger.Info("Imported SQLite state", zap.String("path", sqlitePath), zap.Int("keys", n))
		}
	}
	return store, nil
}

// openExistingStore is openStore for commands that only read. When the
// database does not exist yet it returns an empty memory store instead of
// creating one.
func (o *cliOptions) openExistingStore(cmd *cobra.Command) (Datastore, error) {
	backend, path := o.storeLocation(cmd, false)
	if backend == backendMemory || fileExists(path) {
		return o.openStore(cmd, false)
	}
	store, err := newDatastore(backendMemory)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("No database yet, reading defaults", zap.String("path", path))
	return store, store.Initialize(path)
}

func (o *cliOptions) withSession(cmd *cobra.Command, fn func(*Session) error) (err error) {
	store, err := o.openStore(cmd, !cmd.HasParent() && isTerminal(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	session, err := LoadSession(store, Catalog(), o.logger)
	if err != nil {
		return err
	}
	return fn(session)
}

func (o *cliOptions) printView(w io.Writer, view CatalogView) error {
	if o.outputJSON {
		return o.printJSON(w, view.Books)
	}
	renderText(w, view)
	return nil
}

func (o *cliOptions) printJSON(w io.Writer, books []Book) error {
	out, err := jsonizer(books, o.showIDs, o.indent)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

func promptBackend(in io.Reader, out io.Writer) string {
	fmt.Fprintln(out, "No existing database found.")
	fmt.Fprintln(out, "Select backend:")
	fmt.Fprintln(out, "1. SQLite (Default)")
	fmt.Fprintln(out, "2. Bolt")
	fmt.Fprint(out, "> ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() && strings.TrimSpace(scanner.Text()) == "2" {
		return backendBolt
	}
	return backendSQLite
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// execute runs the command tree and flushes the logger whether or not the
// command failed.
func (o *cliOptions) execute(cmd *cobra.Command) error {
	defer func() { _ = o.logger.Sync() }()
	return cmd.Execute()
}

func main() {
	opts := newCLIOptions()
	if err := opts.execute(newRootCmd(opts)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
