package database

import (
	"fmt"
	"path/filepath"
)

// MongoTools builds mongodump/mongorestore command lines for binaries shipped
// next to the deployed code.
type MongoTools struct {
	binDir      string
	dumpName    string
	restoreName string
}

func NewMongoTools(binDir, dumpName, restoreName string) *MongoTools {
	return &MongoTools{
		binDir:      binDir,
		dumpName:    dumpName,
		restoreName: restoreName,
	}
}

func (m *MongoTools) DumpPath() string {
	return filepath.Join(m.binDir, m.dumpName)
}

// DumpArgs writes a gzip'd archive to stdout. The URI is passed as a single
// argv entry, no shell quoting.
func (m *MongoTools) DumpArgs(uri string) []string {
	return []string{
		fmt.Sprintf("--uri=%s", uri),
		"--archive",
		"--gzip",
	}
}

func (m *MongoTools) RestorePath() string {
	return filepath.Join(m.binDir, m.restoreName)
}

// RestoreArgs reads the archive from stdin and drops existing collections.
func (m *MongoTools) RestoreArgs(uri string) []string {
	return []string{
		fmt.Sprintf("--uri=%s", uri),
		"--archive",
		"--gzip",
		"--drop",
	}
}

func (m *MongoTools) DumpLogMarker() string {
	return "done dumping"
}
