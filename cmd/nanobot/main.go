// Command nanobot serves and inspects LDTab triple stores: table browsing,
// term trees, and store bootstrap.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ontodev/nanobot/config"
	"github.com/ontodev/nanobot/db"
	"github.com/ontodev/nanobot/get"
	"github.com/ontodev/nanobot/hiccup"
	"github.com/ontodev/nanobot/ldtab"
	"github.com/ontodev/nanobot/query"
	"github.com/ontodev/nanobot/serve"
	"github.com/ontodev/nanobot/tree"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "nanobot: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	configPath string
	debug      bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "nanobot",
		Short:         "Browse and serve LDTab triple stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env values fill in ambient settings such as
			// NANOBOT_LIBSQL_AUTH_TOKEN; a missing file is fine.
			_ = godotenv.Load()

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if dsn := os.Getenv("NANOBOT_CONNECTION"); dsn != "" {
				cfg.Connection = dsn
			}
			a.cfg = cfg

			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.LogLevel.Level(),
			})))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "path to the YAML configuration file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable SQL debug logging")

	root.AddCommand(
		newInitCmd(a),
		newConfigCmd(a),
		newGetCmd(a),
		newTreeCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) open() (*gorm.DB, error) {
	return db.Open(a.cfg.Connection, a.debug)
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), a.cfg.String())
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	var (
		filters []string
		order   string
		format  string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "get TABLE",
		Short: "Print rows from a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := &query.Select{
				Table: args[0],
				Columns: []string{
					"subject", "predicate", "object", "datatype", "annotation",
				},
				Limit:  limit,
				Offset: offset,
			}
			for _, raw := range filters {
				column, expr, ok := strings.Cut(raw, "=")
				if !ok {
					return fmt.Errorf("filter %q is not column=operator.value", raw)
				}
				f, err := query.ParseFilter(column, expr)
				if err != nil {
					return err
				}
				sel.Filters = append(sel.Filters, f)
			}
			for _, term := range strings.Split(order, ",") {
				if term == "" {
					continue
				}
				column, direction, _ := strings.Cut(term, ".")
				sel.Order = append(sel.Order, query.Order{
					Column:     column,
					Descending: direction == "desc",
				})
			}

			conn, err := a.open()
			if err != nil {
				return err
			}
			out, err := get.Table(cmd.Context(), conn, sel, format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter, e.g. subject=eq.obo:ZFA_0000354 (repeatable)")
	cmd.Flags().StringVar(&order, "order", "", "order terms, e.g. subject.asc,predicate.desc")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, tsv or json")
	cmd.Flags().IntVar(&limit, "limit", query.LimitDefault, "maximum number of rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of rows to skip")
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	var (
		table  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "tree ENTITY",
		Short: "Print the term tree of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.open()
			if err != nil {
				return err
			}
			if table == "" {
				table = a.cfg.Table
			}
			store, err := ldtab.NewStore(conn, table)
			if err != nil {
				return err
			}

			switch format {
			case "text":
				out, err := tree.Text(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			case "json":
				forest, err := tree.Rich(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, forest)
			case "labelled":
				labelled, err := tree.Labelled(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, labelled)
			case "html":
				opts := tree.Options{PreferredRoots: a.cfg.PreferredRoots}
				markup, err := tree.Markup(cmd.Context(), store, args[0], opts)
				if err != nil {
					return err
				}
				fragment, err := hiccup.Render(markup)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), fragment)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "statement table (default from config)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, labelled or html")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.open()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := serve.New(a.cfg, conn, slog.Default())
			return server.Run(ctx)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
