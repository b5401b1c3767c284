package ui

import (
	"github.com/uklient/uklient/pkg/sync"
	"github.com/uklient/uklient/pkg/transport"
)

type reportView struct {
	Pack        string          `json:"pack,omitempty"`
	Version     string          `json:"version,omitempty"`
	GameVersion string          `json:"game_version,omitempty"`
	Stage       string          `json:"stage"`
	DryRun      bool            `json:"dry_run"`
	UpToDate    bool            `json:"up_to_date"`
	Duplicates  []string        `json:"duplicates,omitempty"`
	Directories []directoryView `json:"directories"`
	Downloads   []downloadView  `json:"downloads"`
	Overrides   []string        `json:"overrides"`
	Downloaded  int             `json:"downloaded"`
	Installed   int             `json:"installed"`
	DurationMS  int64           `json:"duration_ms"`
}

type directoryView struct {
	Dir     string   `json:"dir"`
	Kept    []string `json:"kept"`
	Retired []string `json:"retired"`
	Deleted []string `json:"deleted"`
	Skipped []string `json:"skipped"`
}

type downloadView struct {
	Filename   string `json:"filename"`
	OutputPath string `json:"output_path"`
	Source     string `json:"source"`
	Size       int64  `json:"size"`
}

func newReportView(report *sync.Report) reportView {
	view := reportView{
		Stage:       string(report.Stage),
		DryRun:      report.DryRun,
		UpToDate:    report.UpToDate,
		Duplicates:  report.Duplicates,
		Directories: []directoryView{},
		Downloads:   []downloadView{},
		Overrides:   []string{},
		Downloaded:  report.Downloaded,
		Installed:   report.Installed,
		DurationMS:  report.Duration.Milliseconds(),
	}
	if m := report.Manifest; m != nil {
		view.Pack = m.Name
		view.Version = m.VersionName
		view.GameVersion = m.GameVersion
	}
	for _, dir := range report.Directories {
		view.Directories = append(view.Directories, directoryView{
			Dir:     relDir(report.InstanceDir, dir.Dir),
			Kept:    append(append([]string{}, dir.Satisfied...), dir.Installed...),
			Retired: dir.Retired,
			Deleted: dir.Deleted,
			Skipped: dir.Skipped,
		})
	}
	for _, item := range report.Pending {
		view.Downloads = append(view.Downloads, downloadView{
			Filename:   item.Filename,
			OutputPath: item.OutputPath,
			Source:     transport.Redact(item.Source),
			Size:       item.Size,
		})
	}
	for _, entry := range report.PendingInstalls {
		view.Overrides = append(view.Overrides, entry.Name)
	}
	return view
}
