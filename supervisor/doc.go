// Package supervisor spawns, monitors, and tears down a fixed pool of
// worker OS processes.
//
// Two roles live in this package. The control-plane functions
// (StartManager, StopManager, IsManagerRunning, WorkerCount) run inside
// whatever short-lived CLI process an operator invokes; they never
// touch a worker directly, only the PID file, the shutdown file, and
// gopsutil's view of the process table. Supervise runs inside the
// detached supervisor process itself: it owns the worker children for
// its entire lifetime and is the only thing that ever signals them.
//
// The two roles rendezvous exclusively through the filesystem —
// PidFileName and ShutdownFileName in the data directory — because
// stop_manager must be callable from a CLI invocation wholly unrelated
// to the one that started the supervisor.
package supervisor
