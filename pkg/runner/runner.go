package runner

import (
	"os"
	"path/filepath"
)

var (
	// Pwd is the working directory the engine was started from.
	Pwd string
	// Hostname of the machine running the engine.
	Hostname string
)

func init() {
	if pwd, err := os.Executable(); err == nil {
		Pwd = filepath.Dir(pwd)
	}
	Hostname, _ = os.Hostname()
}
