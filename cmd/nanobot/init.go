package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ontodev/nanobot/models"
)

const insertBatchSize = 500

func newInitCmd(a *app) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file, migrate the store and load fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			if database != "" {
				a.cfg.Connection = database
			}
			return runInit(a)
		},
	}

	cmd.Flags().StringVarP(&database, "database", "d", "", "custom database name")
	return cmd
}

func runInit(a *app) error {
	// Write the default config file once; an existing file is the user's.
	if _, err := os.Stat(a.configPath); os.IsNotExist(err) {
		if err := os.WriteFile(a.configPath, []byte(a.cfg.String()), 0o644); err != nil {
			return fmt.Errorf("could not create %q: %w", a.configPath, err)
		}
		slog.Info("created config file", "path", a.configPath)
	}

	conn, err := a.open()
	if err != nil {
		return err
	}

	if err := loadFixtures(conn, a.cfg.Fixtures); err != nil {
		return err
	}

	if err := addToGitignore(a.cfg.Connection); err != nil {
		return err
	}
	return nil
}

// loadFixtures seeds the statement table from TSV files found under dir.
// Loading only happens into an empty table, so init is idempotent.
func loadFixtures(conn *gorm.DB, dir string) error {
	var count int64
	if err := conn.Model(&models.Statement{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count statements: %w", err)
	}
	if count > 0 {
		return nil
	}

	paths, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*.tsv"))
	if err != nil {
		return fmt.Errorf("glob fixtures in %q: %w", dir, err)
	}

	for _, path := range paths {
		statements, err := readStatementTSV(path)
		if err != nil {
			return err
		}
		if len(statements) == 0 {
			continue
		}
		if err := conn.CreateInBatches(statements, insertBatchSize).Error; err != nil {
			return fmt.Errorf("load %q: %w", path, err)
		}
		slog.Info("loaded fixture", "path", path, "rows", len(statements))
	}
	return nil
}

// readStatementTSV parses a statement fixture: a header line naming at
// least subject, predicate, object and datatype, then one row per line.
func readStatementTSV(path string) ([]models.Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, nil
	}
	index := map[string]int{}
	for i, name := range strings.Split(scanner.Text(), "\t") {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"subject", "predicate", "object", "datatype"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%q: missing column %q", path, required)
		}
	}

	field := func(cells []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(cells) {
			return ""
		}
		return cells[i]
	}

	var statements []models.Statement
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		statement := models.Statement{
			Assertion: 1,
			Graph:     field(cells, "graph"),
			Subject:   field(cells, "subject"),
			Predicate: field(cells, "predicate"),
			Object:    field(cells, "object"),
			Datatype:  field(cells, "datatype"),
		}
		if annotation := field(cells, "annotation"); annotation != "" {
			statement.Annotation = []byte(annotation)
		}
		statements = append(statements, statement)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return statements, nil
}

// addToGitignore appends the database file to an existing .gitignore that
// does not already name it. Projects without a .gitignore are left alone.
func addToGitignore(connection string) error {
	if strings.Contains(connection, "://") || connection == ":memory:" {
		return nil
	}

	content, err := os.ReadFile(".gitignore")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read .gitignore: %w", err)
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == connection {
			return nil
		}
	}

	f, err := os.OpenFile(".gitignore", os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open .gitignore: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("\n# Generated by nanobot\n%s\n", connection)
	if !strings.HasSuffix(string(content), "\n") {
		entry = "\n" + entry
	}
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("append to .gitignore: %w", err)
	}
	slog.Info("added database to .gitignore", "path", connection)
	return nil
}
