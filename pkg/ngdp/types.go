package ngdp

import "strings"

// CDNEntry is one row of the cdns manifest: a named CDN with its content
// path and an ordered list of hosts.
type CDNEntry struct {
	Name  string
	Path  string
	Hosts []string
}

// cdnEntryFromRow builds a CDNEntry from a parsed manifest row. Hosts is a
// space-separated list on the wire.
func cdnEntryFromRow(row map[string]string) CDNEntry {
	return CDNEntry{
		Name:  row["Name"],
		Path:  row["Path"],
		Hosts: strings.Fields(row["Hosts"]),
	}
}

// Version is one row of the versions manifest for the client's region,
// enriched with its resolved build and CDN configs.
type Version struct {
	Region       string
	BuildID      string
	VersionsName string

	// BuildConfig and CDNConfig are the parsed config blobs the row's
	// BuildConfig/CDNConfig hash columns point at.
	BuildConfig Config
	CDNConfig   Config

	// Row holds every raw column of the manifest row, including the
	// config hashes the enriched fields were resolved from.
	Row map[string]string
}

// VersionResult is one element of the versions stream: a resolved row or
// the error that aborted the stream.
type VersionResult struct {
	Version *Version
	Err     error
}
