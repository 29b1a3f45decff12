package domain

// Tool describes the dump/restore binaries for one database engine.
type Tool interface {
	DumpPath() string
	DumpArgs(uri string) []string
	RestorePath() string
	RestoreArgs(uri string) []string
	// DumpLogMarker is the stderr fragment worth logging on backup.
	DumpLogMarker() string
}
