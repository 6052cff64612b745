package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// nameArg returns args[0], or asks for a name on stdin when none was given.
// A blank answer comes back as "" and the service treats it as cancelled.
func nameArg(cmd *cobra.Command, args []string, label string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}
