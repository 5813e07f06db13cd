package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// printJSON writes v as indented JSON to the command's output stream.
func printJSON(cmd *cobra.Command, v any) error {
	return fprintJSON(cmd.OutOrStdout(), v)
}

// fprintJSON writes v as indented JSON to w. Nil slices inside v encode as
// null; the jsonX view types normalize the ones callers rely on.
func fprintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
