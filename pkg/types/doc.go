// Package types defines the values that flow through one sync run: the
// Downloadable artifacts of a Manifest, the OverrideEntry items staged for raw
// installation, and the DownloadSet and InstallSet plans that reconciliation
// narrows down before anything is fetched or copied.
package types
