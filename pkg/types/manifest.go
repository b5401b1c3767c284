package types

// Manifest is the full list of artifacts desired for one pack version. It is
// produced once per sync run and read-only afterwards.
type Manifest struct {
	// Name is the human readable pack name
	Name string

	// VersionID is the catalog identifier of the resolved version
	VersionID string

	// VersionName is the display name of the resolved version
	VersionName string

	// GameVersion is the game version the manifest was resolved for
	GameVersion string

	// Files are the desired downloads, in catalog order
	Files []Downloadable

	// Overrides are the raw entries staged for installation
	Overrides []OverrideEntry

	// Dependencies maps a runtime component (minecraft, fabric-loader, ...) to its version
	Dependencies map[string]string

	// Changelog is the markdown changelog of the resolved version
	Changelog string
}

// OverrideEntry is a raw file or directory to install verbatim. Identity is Name.
type OverrideEntry struct {
	// Name is the entry's file name inside the staging directory
	Name string

	// SourcePath is the absolute path of the staged entry
	SourcePath string
}
