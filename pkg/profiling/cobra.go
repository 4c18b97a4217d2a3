package profiling

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/grovetools/toolchange/errors"
	"github.com/spf13/cobra"
)

// CobraProfiler wires --timing and --cpu-profile into a command tree.
type CobraProfiler struct {
	recorder       *Recorder
	cpuProfilePath string
	cpuProfileFile *os.File
	timing         bool
}

// NewCobraProfiler returns a profiler reporting through the process-wide recorder.
func NewCobraProfiler() *CobraProfiler {
	return &CobraProfiler{recorder: defaultRecorder}
}

// AddFlags registers the profiling flags as hidden persistent flags on cmd.
func (p *CobraProfiler) AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolVar(&p.timing, "timing", false, "Print phase timings to stderr on exit")
	flags.StringVar(&p.cpuProfilePath, "cpu-profile", "", "Write a CPU profile to file")
	_ = flags.MarkHidden("timing")
	_ = flags.MarkHidden("cpu-profile")
}

// PreRun is a PersistentPreRunE hook.
func (p *CobraProfiler) PreRun(cmd *cobra.Command, args []string) error {
	if p.timing {
		p.recorder.Enable()
	}
	if p.cpuProfilePath == "" {
		return nil
	}

	f, err := os.Create(p.cpuProfilePath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidArgument, "create CPU profile").
			WithDetail("path", p.cpuProfilePath)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "start CPU profile")
	}
	p.cpuProfileFile = f
	return nil
}

// PostRun is a PersistentPostRun hook. Reports go to the command's stderr so
// machine output on stdout stays a single record.
func (p *CobraProfiler) PostRun(cmd *cobra.Command, args []string) {
	if p.cpuProfileFile != nil {
		pprof.StopCPUProfile()
		p.cpuProfileFile.Close()
		p.cpuProfileFile = nil
		fmt.Fprintf(cmd.ErrOrStderr(), "CPU profile written to %s\n", p.cpuProfilePath)
	}
	if p.timing {
		p.recorder.Summarize(cmd.ErrOrStderr())
	}
}
