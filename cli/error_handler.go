package cli

import (
	"fmt"
	"io"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/tui/theme"
)

// ErrorHandler prints user-facing error messages for human output.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
	// CommandPath is used in the usage hint, e.g. "toolchange status".
	CommandPath string
}

// NewErrorHandler creates a new error handler writing to out.
func NewErrorHandler(out io.Writer, verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose:     verbose,
		Out:         out,
		CommandPath: "toolchange",
	}
}

// Handle prints err with guidance matching its code and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	t := theme.DefaultTheme
	label := t.Error.Render(theme.IconError + " Error:")

	tcErr, ok := errors.As(err)
	if !ok {
		fmt.Fprintf(h.Out, "%s %v\n", label, err)
		return err
	}

	fmt.Fprintf(h.Out, "%s %s\n", label, tcErr.Message)

	switch tcErr.Code {
	case errors.ErrCodeNotFound:
		if path, ok := tcErr.Details["path"]; ok {
			fmt.Fprintf(h.Out, "%s\n", t.Muted.Render(fmt.Sprintf("Looked in %v", path)))
		}

	case errors.ErrCodeCorruptData:
		if hint, ok := tcErr.Details["hint"]; ok {
			fmt.Fprintf(h.Out, "%s\n", t.Muted.Render(fmt.Sprint(hint)))
		}

	case errors.ErrCodeInvalidArgument:
		fmt.Fprintf(h.Out, "%s\n", t.Muted.Render(fmt.Sprintf("Run '%s --help' for usage.", h.CommandPath)))

	case errors.ErrCodeConfigInvalid:
		fmt.Fprintf(h.Out, "%s\n", t.Muted.Render("Check your toolchange config file; 'toolchange config' shows every layer."))
	}

	if h.Verbose {
		if tcErr.Cause != nil {
			fmt.Fprintf(h.Out, "\nCaused by: %v\n", tcErr.Cause)
		}
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", tcErr.ToJSON())
	}
	return err
}
