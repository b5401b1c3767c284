package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"

	"github.com/uklient/uklient/pkg/cache"
	"github.com/uklient/uklient/pkg/catalog"
	"github.com/uklient/uklient/pkg/sync"
	"github.com/uklient/uklient/pkg/transport"
	"github.com/uklient/uklient/pkg/ui/styles"
)

// Printer writes command results in one Format
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a Printer for w. FormatAuto is resolved against w when
// it is a file and falls back to text otherwise.
func NewPrinter(w io.Writer, format Format) *Printer {
	if format == FormatAuto {
		format = FormatText
		if f, ok := w.(*os.File); ok {
			format = DetectFormat(f)
		}
	}
	return &Printer{w: w, format: format}
}

// Format returns the resolved format
func (p *Printer) Format() Format {
	return p.format
}

// Styled reports whether output carries colors
func (p *Printer) Styled() bool {
	return p.format == FormatTerminal
}

func (p *Printer) style(name, text string) string {
	if !p.Styled() {
		return text
	}
	return styles.Render(name, text)
}

// Message prints one line in the named style
func (p *Printer) Message(style, format string, args ...interface{}) {
	_, _ = fmt.Fprintln(p.w, p.style(style, fmt.Sprintf(format, args...)))
}

// Error prints err the way every command reports failures
func (p *Printer) Error(err error) {
	if p.format == FormatJSON {
		_ = p.json(map[string]string{"error": err.Error()})
		return
	}
	_, _ = fmt.Fprintln(p.w, p.style("Error", "Error: "+err.Error()))
}

// Report prints the outcome of a sync or plan run
func (p *Printer) Report(report *sync.Report) error {
	if p.format == FormatJSON {
		return p.json(newReportView(report))
	}

	if m := report.Manifest; m != nil {
		_, _ = fmt.Fprintf(p.w, "%s %s %s\n",
			p.style("Title", m.Name),
			m.VersionName,
			p.style("Muted", "(game "+m.GameVersion+")"))
	}
	if report.DryRun {
		p.Message("Warning", "Dry run: nothing was changed")
	}
	if len(report.Duplicates) > 0 {
		p.Message("Warning", "Skipped duplicate files: %s", strings.Join(report.Duplicates, ", "))
	}

	if len(report.Directories) > 0 {
		rows := [][]string{{"Directory", "Kept", "Retired", "Deleted", "Skipped"}}
		for _, dir := range report.Directories {
			rows = append(rows, []string{
				relDir(report.InstanceDir, dir.Dir),
				fmt.Sprint(len(dir.Satisfied) + len(dir.Installed)),
				fmt.Sprint(len(dir.Retired)),
				fmt.Sprint(len(dir.Deleted)),
				fmt.Sprint(len(dir.Skipped)),
			})
		}
		p.section("Directories")
		if err := p.table(rows); err != nil {
			return err
		}
	}

	if len(report.Pending) > 0 {
		var total int64
		rows := [][]string{{"File", "Directory", "Size", "Source"}}
		for _, item := range report.Pending {
			total += item.Size
			rows = append(rows, []string{
				item.Filename,
				item.OutputPath,
				FormatBytes(item.Size),
				transport.Redact(item.Source),
			})
		}
		p.section(fmt.Sprintf("Downloads (%d, %s)", len(report.Pending), FormatBytes(total)))
		if err := p.table(rows); err != nil {
			return err
		}
	}

	if len(report.PendingInstalls) > 0 {
		p.section(fmt.Sprintf("Overrides (%d)", len(report.PendingInstalls)))
		for _, entry := range report.PendingInstalls {
			_, _ = fmt.Fprintf(p.w, "  %s\n", p.style("FilePath", entry.Name))
		}
	}

	_, _ = fmt.Fprintln(p.w)
	p.summary(report)
	return nil
}

func (p *Printer) summary(report *sync.Report) {
	switch {
	case report.UpToDate:
		p.Message("Success", "Everything is up to date")
	case report.DryRun:
		p.Message("Info", "Would download %d files and install %d overrides",
			len(report.Pending), len(report.PendingInstalls))
	case report.Manifest == nil:
	default:
		p.Message("Success", "Downloaded %d files and installed %d overrides in %s",
			report.Downloaded, report.Installed, report.Duration.Round(10*time.Millisecond))
	}
}

// Version prints a catalog version with its changelog. cached lists the
// archive cache entries, as returned by cache.Entries.
func (p *Printer) Version(project *catalog.Project, version *catalog.Version, cached []string, width int) error {
	file, hasFile := version.PrimaryFile()
	archiveCached := false
	if hasFile {
		key := cache.Key(file.URL, file.Filename)
		for _, entry := range cached {
			if entry == key {
				archiveCached = true
				break
			}
		}
	}

	if p.format == FormatJSON {
		return p.json(struct {
			Project *catalog.Project `json:"project"`
			Version *catalog.Version `json:"version"`
			Cached  bool             `json:"cached"`
		}{project, version, archiveCached})
	}

	title := project.Title
	if title == "" {
		title = project.Slug
	}
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.style("Title", title), version.VersionNumber)
	if project.Description != "" {
		_, _ = fmt.Fprintln(p.w, p.style("Muted", project.Description))
	}
	_, _ = fmt.Fprintln(p.w)

	rows := [][]string{
		{"Version", version.Name},
		{"ID", version.ID},
		{"Game versions", strings.Join(version.GameVersions, ", ")},
		{"Loaders", strings.Join(version.Loaders, ", ")},
		{"Published", version.DatePublished.Format("2006-01-02")},
	}
	if hasFile {
		archive := fmt.Sprintf("%s (%s)", file.Filename, FormatBytes(file.Size))
		if archiveCached {
			archive += ", cached"
		}
		rows = append(rows, []string{"Archive", archive})
	}
	rows = append(rows, []string{"Cached archives", fmt.Sprint(len(cached))})
	w := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", p.style("Header", row[0]), row[1])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if version.Changelog != "" {
		p.section("Changelog")
		_, _ = fmt.Fprintln(p.w, RenderMarkdown(version.Changelog, p.Styled(), width))
	}
	return nil
}

func (p *Printer) section(title string) {
	_, _ = fmt.Fprintf(p.w, "\n%s\n", p.style("Header", title))
}

// table renders rows with the first row as header. Terminal output uses a
// pterm table, text output a tab-aligned listing.
func (p *Printer) table(rows [][]string) error {
	if p.Styled() {
		out, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Srender()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, out)
		return err
	}

	w := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func (p *Printer) json(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func relDir(root, dir string) string {
	if root == "" {
		return dir
	}
	if rel, err := filepath.Rel(root, dir); err == nil {
		return rel
	}
	return dir
}

// FormatBytes renders n with a binary unit suffix
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
