package procname

import (
	"errors"
	"fmt"
	"github.com/shirou/gopsutil/process"
	"path/filepath"
	"strings"
)

// commLen is the kernel's TASK_COMM_LEN minus the terminating NUL.
const commLen = 15

var ErrNoProcess = errors.New("no process for window")

type Resolver struct{}

// Name returns the executable name of pid. Names the kernel truncated to 15
// bytes are completed from argv[0], so "gnome-terminal-server" is reported in
// full rather than as "gnome-terminal-".
func (r Resolver) Name(pid int) (string, error) {
	if pid <= 0 {
		return "", ErrNoProcess
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", fmt.Errorf("find process %d: %w", pid, err)
	}

	name, err := proc.Name()
	if err != nil {
		return "", fmt.Errorf("get name of %d: %w", pid, err)
	}

	if len(name) < commLen {
		return name, nil
	}

	args, err := proc.CmdlineSlice()
	if err != nil || len(args) == 0 {
		return name, nil
	}

	return extendName(name, args[0]), nil
}

func extendName(comm, argv0 string) string {
	full := filepath.Base(argv0)
	if strings.HasPrefix(full, comm) {
		return full
	}
	return comm
}
