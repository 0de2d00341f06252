package supervisor

import (
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// readPID parses the PID file at path, returning 0 and no error if the
// file does not exist.
func readPID(path string) (int32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(pid), nil
}

// writePID writes pid to path as ASCII decimal text.
func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644)
}

func removeIfExists(path string) {
	_ = os.Remove(path)
}

// IsManagerRunning reports whether dataDir's PID file names a live
// process. Any PID file that is unparsable or names a dead process is
// removed as a side effect, so a crashed supervisor's PID file reconciles
// itself on the next observation.
func IsManagerRunning(dataDir string) bool {
	path := PidFilePath(dataDir)
	pid, err := readPID(path)
	if err != nil {
		removeIfExists(path)
		return false
	}
	if pid == 0 {
		return false
	}

	proc, err := process.NewProcess(pid)
	if err != nil {
		removeIfExists(path)
		return false
	}
	running, err := proc.IsRunning()
	if err != nil || !running {
		removeIfExists(path)
		return false
	}
	return true
}

// WorkerCount returns the number of direct children of the running
// supervisor, or 0 if no supervisor is running.
func WorkerCount(dataDir string) int {
	if !IsManagerRunning(dataDir) {
		return 0
	}
	pid, err := readPID(PidFilePath(dataDir))
	if err != nil || pid == 0 {
		return 0
	}
	proc, err := process.NewProcess(pid)
	if err != nil {
		return 0
	}
	children, err := proc.Children()
	if err != nil {
		return 0
	}
	return len(children)
}
