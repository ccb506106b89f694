package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/user/backlink-reclaim/internal/entity"
)

const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"

	exportSheet = "Dead Pages"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

var exportHeader = []string{
	"Dead Page", "URL", "Status", "Backlinks Count", "Referring Domains", "Top Referrer", "All Referrers",
}

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	if format == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Export writes the dead pages of scan, then its inconclusive pages, in the given format.
func Export(w io.Writer, scan *entity.ScanResult, format string) error {
	switch format {
	case ExportCSV:
		return writeCSV(w, scan)
	case ExportXLSX:
		return writeXLSX(w, scan)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func exportRows(scan *entity.ScanResult) [][]string {
	rows := make([][]string, 0, len(scan.Results)+len(scan.Inconclusive))
	for _, pages := range [][]entity.DeadPage{scan.Results, scan.Inconclusive} {
		for _, p := range pages {
			domains := make([]string, len(p.TopReferrers))
			for i, r := range p.TopReferrers {
				domains[i] = r.Domain
			}
			rows = append(rows, []string{
				p.Path,
				p.URL,
				statusLabel(p.StatusCode),
				strconv.Itoa(p.BacklinkCount),
				strconv.Itoa(p.ReferringDomainCount),
				topReferrer(p.TopReferrers),
				strings.Join(domains, "; "),
			})
		}
	}
	return rows
}

func statusLabel(status int) string {
	if status == entity.StatusUnreachable {
		return "unreachable"
	}
	return strconv.Itoa(status)
}

// topReferrer picks the highest-ranked sampled referrer; the first one wins ties.
func topReferrer(referrers []entity.Referrer) string {
	best := -1
	name := ""
	for _, r := range referrers {
		if r.Rank > best {
			best = r.Rank
			name = r.Domain
		}
	}
	return name
}

func writeCSV(w io.Writer, scan *entity.ScanResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(exportRows(scan)); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, scan *entity.ScanResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	rows := append([][]string{exportHeader}, exportRows(scan)...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			// Keep numeric columns numeric in the spreadsheet.
			if n, err := strconv.Atoi(v); err == nil && i > 0 && j >= 2 && j <= 4 {
				values[j] = n
				continue
			}
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx export: %w", err)
	}
	return nil
}
