package main

import (
	"github.com/spf13/cobra"
)

var (
	statsPeriod  string
	statsOutput  string
	formatEscape bool
	formatFormat string

	rootCmd = &cobra.Command{
		Use:          "portfolio-api",
		Short:        "HTTP backend for the portfolio site: blog, projects, contact and analytics",
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default command)",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables in the configured databases",
		RunE:  runMigrate,
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print the analytics summary for a period",
		RunE:  runStats,
	}

	formatCmd = &cobra.Command{
		Use:   "format",
		Short: "Render a blog post body from stdin to HTML on stdout",
		RunE:  runFormat,
	}
)

func init() {
	statsCmd.Flags().StringVarP(&statsPeriod, "period", "p", "7d", "Period to summarise: 7d, 30d, 90d or all")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "json", "Output format: json or yaml")

	formatCmd.Flags().BoolVar(&formatEscape, "escape-html", false, "Escape HTML in the input before formatting")
	formatCmd.Flags().StringVar(&formatFormat, "content-format", "markdown", "Body format: markdown or html")

	rootCmd.AddCommand(serveCmd, migrateCmd, statsCmd, formatCmd)
}
