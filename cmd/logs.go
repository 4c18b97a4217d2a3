package cmd

import (
	"bufio"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/logging"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tracker's own log file",
		Long: `Prints today's toolchange log file, or the file configured under
logging.file.path.

Examples:
  # Last 20 lines
  toolchange logs --tail 20

  # Follow while printing
  toolchange logs -f`,
		Args: cobra.NoArgs,
		RunE: runLogs,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of the log (default: all)")

	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")

	path := logging.LogFilePath("toolchange", logging.FromConfig(e.cfg), time.Now())
	out := cmd.OutOrStdout()

	lines, size, err := readLastLines(path, tailLines)
	if err != nil {
		if !os.IsNotExist(err) || !follow {
			return errors.SourceNotFound(path, err).WithDetail("kind", "log")
		}
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	if !follow {
		return nil
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: size, Whence: io.SeekStart},
		Logger:   stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "follow log file").WithDetail("path", path)
	}
	defer t.Cleanup()
	defer t.Stop()

	ctx, stop := watchContext(cmd.Context())
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				e.logger.WithError(line.Err).Warn("Log tail error")
				continue
			}
			fmt.Fprintln(out, line.Text)
		}
	}
}

// readLastLines returns the last n lines of path (all when n < 0) and the
// byte size read, so following can resume where reading stopped.
func readLastLines(path string, n int) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var (
		lines []string
		size  int64
	)
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		size += int64(len(line))
		if len(line) > 0 && line[len(line)-1] == '\n' {
			lines = append(lines, line[:len(line)-1])
			if n >= 0 && len(lines) > n {
				lines = lines[1:]
			}
		} else if len(line) > 0 {
			// Partial last line is left for the follower
			size -= int64(len(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}
	return lines, size, nil
}
