package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/user/backlink-reclaim/internal/adapter/memory"
	"github.com/user/backlink-reclaim/internal/app"
	"github.com/user/backlink-reclaim/internal/delivery/http/response"
	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/pkg/config"
	"github.com/user/backlink-reclaim/pkg/logger"
)

// TableRenderer prints a scan result as tables.
type TableRenderer struct {
	out io.Writer
}

// NewTableRenderer creates a new TableRenderer writing to out.
func NewTableRenderer(out io.Writer) *TableRenderer {
	return &TableRenderer{out: out}
}

// RenderTable writes the ranked dead pages, then inconclusive pages when there are any.
func (r *TableRenderer) RenderTable(scan *entity.ScanResult) {
	fmt.Fprintf(r.out, "Scan of %s at %s: %d backlinks, %d dead pages\n",
		scan.Domain, scan.ScannedAt.Format("2006-01-02 15:04:05 MST"), scan.TotalBacklinks, len(scan.Results))

	r.renderPages("Dead pages", scan.Results)
	if len(scan.Inconclusive) > 0 {
		r.renderPages("Inconclusive (unreachable)", scan.Inconclusive)
	}
}

func (r *TableRenderer) renderPages(title string, pages []entity.DeadPage) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Path", "Status", "Backlinks", "Ref. Domains", "Top Referrers"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, WidthMax: 60},
	})

	for i, p := range pages {
		domains := make([]string, 0, len(p.TopReferrers))
		for _, ref := range p.TopReferrers {
			domains = append(domains, ref.Domain)
		}
		status := fmt.Sprint(p.StatusCode)
		if p.StatusCode == entity.StatusUnreachable {
			status = "unreachable"
		}
		t.AppendRow(table.Row{i + 1, p.Path, status, p.BacklinkCount, p.ReferringDomainCount, strings.Join(domains, ", ")})
	}
	t.AppendFooter(table.Row{"", "Total", "", totalBacklinks(pages), "", ""})
	t.Render()
}

func totalBacklinks(pages []entity.DeadPage) int {
	total := 0
	for _, p := range pages {
		total += p.BacklinkCount
	}
	return total
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	var (
		asJSON    bool
		maxChecks int
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "scan <domain>",
		Short: "Scan a domain for dead pages with backlinks",
		Long: `Fetch the live backlinks of a domain, probe every linked page and list the
dead ones ranked by how many backlinks they still receive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if maxChecks > 0 {
				cfg.MaxChecks = maxChecks
			}
			logger.Init(os.Stderr, logger.ParseLevel(logLevel))

			scanner, cleanup := app.NewScanner(cfg, memory.NewRateLimiter(), nil)
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ScanDeadline)
			defer cancel()

			result, err := scanner.Scan(ctx, entity.ScanRequest{Domain: args[0]})
			if err != nil {
				slog.Debug("Scan failed", "error", err)
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(response.NewScanResponse(result, true))
			}
			NewTableRenderer(cmd.OutOrStdout()).RenderTable(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().IntVar(&maxChecks, "max-checks", 0, "override MAX_CHECKS for this run")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	return cmd
}
