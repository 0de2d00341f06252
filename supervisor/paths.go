package supervisor

import "path/filepath"

// PidFileName and ShutdownFileName are the marker files a supervisor
// and any CLI process rendezvous through, both resolved relative to
// the shared data directory.
const (
	PidFileName      = "worker_manager.pid"
	ShutdownFileName = "worker_manager.shutdown"
)

// PidFilePath returns the PID file path under dataDir.
func PidFilePath(dataDir string) string {
	return filepath.Join(dataDir, PidFileName)
}

// ShutdownFilePath returns the shutdown sentinel path under dataDir.
func ShutdownFilePath(dataDir string) string {
	return filepath.Join(dataDir, ShutdownFileName)
}
