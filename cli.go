package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"portfolio/api/analytics"
	"portfolio/api/content"
	"portfolio/api/database"
	"portfolio/api/models"
	"portfolio/api/store"
)

func migrateAll(ctx context.Context, a *app) error {
	if err := database.Migrate(ctx, a.sql.DB, a.sql.Driver); err != nil {
		return err
	}
	if a.ch != nil {
		if err := store.NewClickHouseStore(a.ch).Migrate(ctx); err != nil {
			return err
		}
	}
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	a, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	period, err := analytics.ParsePeriod(statsPeriod)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	a, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	aggregator, err := a.aggregator()
	if err != nil {
		return err
	}
	summary, err := aggregator.Summarize(ctx, period)
	if err != nil {
		return err
	}
	return writeSummary(cmd.OutOrStdout(), summary, statsOutput)
}

func writeSummary(w io.Writer, summary *models.AnalyticsSummary, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "yaml":
		// Round-trip through JSON so the YAML keys match the API field names.
		raw, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func runFormat(cmd *cobra.Command, _ []string) error {
	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	format := content.NormalizeFormat(models.ContentFormat(formatFormat))
	if format != models.ContentFormatMarkdown && format != models.ContentFormatHTML {
		return fmt.Errorf("unknown content format %q", formatFormat)
	}

	f := content.Formatter{EscapeHTML: formatEscape}
	_, err = io.WriteString(cmd.OutOrStdout(), f.Render(format, string(input)))
	return err
}
