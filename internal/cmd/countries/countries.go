// Package countries implements the countries command line tool.
package countries

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-country-cache/config"
	"github.com/goliatone/go-country-cache/country"
	"github.com/goliatone/go-country-cache/interactor"
	"github.com/goliatone/go-country-cache/internal/snapshot"
	"github.com/goliatone/go-country-cache/pkg/di"
)

const usage = `usage: countries [flags] <command> [args]

commands:
  list [-refresh]      list stored countries, fetching them on first use
  search <query>       search the remote catalog and show local matches
  favorites            list favorite countries
  show <name>          show a single stored country
  favorite <name>      mark a country as favorite
  unfavorite <name>    clear the favorite mark
  export [-o file]     write a snapshot of the catalog
  import <file>        load a snapshot into the catalog

flags:
`

// ParseConfig loads the environment and applies the global flags on top.
// It returns the remaining arguments.
func ParseConfig(fs *flag.FlagSet, args []string) (config.Config, []string, error) {
	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return config.Config{}, nil, err
	}

	var verbose bool
	fs.StringVar(&cfg.DB.Driver, "driver", cfg.DB.Driver, "database driver (sqlite3, sqlite, postgres)")
	fs.StringVar(&cfg.DB.DSN, "db", cfg.DB.DSN, "database DSN")
	fs.BoolVar(&cfg.DB.StrictFavorites, "strict", cfg.DB.StrictFavorites, "fail when favoriting an unknown country")
	fs.StringVar(&cfg.API.BaseURL, "api", cfg.API.BaseURL, "REST Countries base URL")
	fs.DurationVar(&cfg.API.Timeout, "timeout", cfg.API.Timeout, "remote request timeout")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format (text, json)")
	fs.BoolVar(&verbose, "v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.Config{}, nil, err
		}
		return config.Config{}, nil, usageError("%v", err)
	}
	if verbose {
		cfg.Log.Level = slog.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

// IsUsage reports whether err was caused by bad command line input.
func IsUsage(err error) bool {
	return errors.HasCategory(err, errors.CategoryBadInput)
}

func usageError(format string, args ...any) error {
	return errors.New(fmt.Sprintf(format, args...), errors.CategoryBadInput).
		WithTextCode("USAGE")
}

// Run parses args and executes one command.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...di.Option) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("countries", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	cfg, rest, err := ParseConfig(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(rest) == 0 {
		fs.Usage()
		return usageError("missing command")
	}

	logger := cfg.Logger(stderr)
	container, err := di.NewContainer(ctx, cfg, append([]di.Option{di.WithLogger(logger)}, opts...)...)
	if err != nil {
		return err
	}
	defer container.Close()

	cmd := &command{container: container, stdout: stdout, stderr: stderr}
	return cmd.run(ctx, rest[0], rest[1:])
}

type command struct {
	container *di.Container
	stdout    io.Writer
	stderr    io.Writer
}

func (c *command) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(c.stderr)
		refresh := fs.Bool("refresh", false, "fetch the remote catalog even if data is stored")
		if err := fs.Parse(args); err != nil {
			return usageError("list: %v", err)
		}
		return c.show(ctx, interactor.LoadCountries{Refreshing: *refresh})

	case "search":
		if len(args) == 0 {
			return usageError("search: missing query")
		}
		return c.show(ctx, interactor.SearchCountries{Query: strings.Join(args, " ")})

	case "favorites":
		return c.show(ctx, interactor.LoadFavorites{})

	case "show":
		name, err := nameArg("show", args)
		if err != nil {
			return err
		}
		return c.show(ctx, interactor.LoadCountry{Name: name})

	case "favorite", "unfavorite":
		target, err := nameArg(name, args)
		if err != nil {
			return err
		}
		result, err := c.execute(ctx, interactor.SetFavorite{Name: target, Favorite: name == "favorite"})
		if err != nil {
			return err
		}
		if len(result.Countries) == 0 {
			fmt.Fprintf(c.stdout, "no country named %q\n", target)
			return nil
		}
		return writeTable(c.stdout, result.Countries)

	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		fs.SetOutput(c.stderr)
		out := fs.String("o", "", "output file (default stdout)")
		if err := fs.Parse(args); err != nil {
			return usageError("export: %v", err)
		}
		return c.export(ctx, *out)

	case "import":
		if len(args) != 1 {
			return usageError("import: expected a single file")
		}
		return c.importFile(ctx, args[0])

	default:
		return usageError("unknown command %q", name)
	}
}

func nameArg(cmd string, args []string) (string, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return "", usageError("%s: missing country name", cmd)
	}
	return name, nil
}

func (c *command) execute(ctx context.Context, action interactor.Action) (interactor.Result, error) {
	result := c.container.Interactor().Run(ctx, action)
	if result.Status != interactor.StatusSuccess {
		return result, result.Err
	}
	return result, nil
}

func (c *command) show(ctx context.Context, action interactor.Action) error {
	result, err := c.execute(ctx, action)
	if err != nil {
		return err
	}
	return writeTable(c.stdout, result.Countries)
}

func (c *command) export(ctx context.Context, path string) (err error) {
	countries, err := c.container.Store().List(ctx)
	if err != nil {
		return err
	}

	w := c.stdout
	if path != "" {
		f, createErr := os.Create(path)
		if createErr != nil {
			return fmt.Errorf("export: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("export: %w", cerr)
			}
		}()
		w = f
	}

	if err := snapshot.Write(w, countries); err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(c.stderr, "exported %d countries to %s\n", len(countries), path)
	}
	return nil
}

func (c *command) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer f.Close()

	s, err := snapshot.Read(f)
	if err != nil {
		return err
	}
	if err := c.container.Store().UpsertMany(ctx, s.Countries); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "imported %d countries (snapshot taken %s)\n", len(s.Countries), s.TakenAt.Format("2006-01-02 15:04:05Z07:00"))
	return nil
}

func writeTable(w io.Writer, countries []country.Country) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCAPITAL\tREGION\tPOPULATION\tFAVORITE")
	for _, c := range countries {
		fav := ""
		if c.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", c.Name, c.Capital, c.Region, c.Population, fav)
	}
	return tw.Flush()
}
