package localos

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

// ProcessScanner enumerates running process image paths. Best effort:
// processes whose image path cannot be read (exited, access denied)
// are skipped.
type ProcessScanner struct{}

var _ ports.ProcessEnumerator = ProcessScanner{}

func NewProcessScanner() ProcessScanner { return ProcessScanner{} }

func (ProcessScanner) RunningExecutables(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	executables := make([]string, 0, len(procs))
	for _, proc := range procs {
		exe, err := proc.ExeWithContext(ctx)
		if err != nil || exe == "" {
			continue
		}
		executables = append(executables, exe)
	}
	return executables, nil
}
