package profiling

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderDisabled(t *testing.T) {
	r := &Recorder{}
	r.Start("scan").Stop()

	var buf bytes.Buffer
	r.Summarize(&buf)
	assert.Empty(t, buf.String())
}

func TestRecorderNesting(t *testing.T) {
	r := &Recorder{}
	r.Enable()

	outer := r.Start("scan")
	inner := r.Start("read file")
	inner.Stop()
	inner.Stop()
	outer.Stop()
	r.Start("save state").Stop()

	var buf bytes.Buffer
	r.Summarize(&buf)
	out := buf.String()

	assert.Contains(t, out, "- scan (")
	assert.Contains(t, out, "  - read file (")
	assert.Contains(t, out, "\n- save state (")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("read file")), bytes.Index(buf.Bytes(), []byte("save state")))
}

func TestCobraProfilerTiming(t *testing.T) {
	p := &CobraProfiler{recorder: &Recorder{}}
	cmd := &cobra.Command{Use: "test"}
	p.AddFlags(cmd)
	require.NoError(t, cmd.PersistentFlags().Set("timing", "true"))

	var stderr bytes.Buffer
	cmd.SetErr(&stderr)

	require.NoError(t, p.PreRun(cmd, nil))
	p.recorder.Start("work").Stop()
	p.PostRun(cmd, nil)

	assert.Contains(t, stderr.String(), "--- Timing ---")
	assert.Contains(t, stderr.String(), "- work (")
}

func TestCobraProfilerBadCPUProfilePath(t *testing.T) {
	p := &CobraProfiler{recorder: &Recorder{}}
	cmd := &cobra.Command{Use: "test"}
	p.AddFlags(cmd)
	require.NoError(t, cmd.PersistentFlags().Set("cpu-profile", t.TempDir()+"/missing/dir/cpu.prof"))

	assert.Error(t, p.PreRun(cmd, nil))
}
