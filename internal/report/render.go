package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/redactyl/shadowscan/internal/types"
)

type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
}

var severityColors = map[types.Severity]*color.Color{
	types.SevCritical: color.New(color.FgMagenta, color.Bold),
	types.SevHigh:     color.New(color.FgRed),
	types.SevMed:      color.New(color.FgYellow),
	types.SevLow:      color.New(color.FgCyan),
}

func severityLabel(s types.Severity, noColor bool) string {
	c, ok := severityColors[s]
	if noColor || !ok {
		return string(s)
	}
	return c.Sprint(string(s))
}

// PrintTable renders findings as a bordered table followed by the summary.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, Summary(findings))
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("Severity", "Score", "Type", "Location", "Value")
		for _, f := range findings {
			_ = table.Append([]string{
				severityLabel(f.Severity, opts.NoColor),
				strconv.FormatFloat(f.Score, 'f', 2, 64),
				f.Type,
				Location(f),
				f.Value,
			})
		}
		_ = table.Render()
		fmt.Fprintln(w, Summary(findings))
	}
	printFooter(w, opts)
}

// PrintText renders one finding per line, for logs and pipes.
func PrintText(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, Summary(findings))
	} else {
		maxType := 8
		for _, f := range findings {
			if l := len(f.Type); l > maxType {
				maxType = l
			}
		}
		fmt.Fprintf(w, "Findings: %d\n", len(findings))
		for _, f := range findings {
			fmt.Fprintf(w, "%-8s %.2f %-*s %s  %s\n", severityLabel(f.Severity, opts.NoColor), f.Score, maxType, f.Type, Location(f), f.Value)
		}
		fmt.Fprintln(w, Summary(findings))
	}
	printFooter(w, opts)
}

func printFooter(w io.Writer, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 {
		return
	}
	fmt.Fprintln(w)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
}

// PrintReports lists stored reports, newest first as given.
func PrintReports(w io.Writer, reports []Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports stored.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Created", "Risk", "Findings", "Title")
	for _, r := range reports {
		_ = table.Append([]string{
			r.ID,
			r.CreatedAt.Local().Format(time.RFC3339),
			r.RiskLevel,
			strconv.Itoa(len(r.Findings)),
			r.Title,
		})
	}
	_ = table.Render()
}

// PrintReport shows one stored report in full.
func PrintReport(w io.Writer, r Report, noColor bool) {
	fmt.Fprintf(w, "%s (%s)\n", r.Title, r.ID)
	fmt.Fprintf(w, "Tenant: %s\nCreated: %s\n", r.Tenant, r.CreatedAt.Local().Format(time.RFC3339))
	if r.Source.Root != "" {
		fmt.Fprintf(w, "Source: %s", r.Source.Root)
		if r.Source.Commit != "" {
			fmt.Fprintf(w, " @ %s", shortHash(r.Source.Commit))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, r.Summary)
	for _, f := range r.Findings {
		fmt.Fprintf(w, "- [%s] %s (%s)\n", severityLabel(f.Severity, noColor), f.Description, f.Location)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
