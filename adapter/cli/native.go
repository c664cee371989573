package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/traa/pkg/traa"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the native library loads and answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}

		result := app.Probe(cmd.Context())
		if err := printProbe(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if !result.Loaded {
			return errors.New("native library unavailable")
		}
		return nil
	},
}

var helloCmd = &cobra.Command{
	Use:   "hello",
	Short: "Print the native library greeting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}
		exec, err := app.Executor()
		if err != nil {
			return err
		}

		text, err := exec.StringFromJNI(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]string{"message": text})
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var logLevelCmd = &cobra.Command{
	Use:   "log-level <trace|debug|info|warn|error|fatal|off>",
	Short: "Set native log verbosity",
	Long: `Set native log verbosity.

The level lives in the process that owns the library: this one, or the
traa-host started for it when TRAA_ISOLATED is set. Both end when the
command exits, so the change only covers this invocation. Use
TRAA_NATIVE_LOG_LEVEL for a lasting default, or the traa.set_log_level
MCP tool against a running server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}

		level, err := traa.ParseLogLevel(args[0])
		if err != nil {
			return err
		}
		exec, err := app.Executor()
		if err != nil {
			return err
		}
		if err := exec.SetLogLevel(cmd.Context(), level); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "native log level set to %s\n", level)
		return nil
	},
}

func printProbe(w io.Writer, result ProbeResult) error {
	if jsonOutput {
		return writeJSON(w, result)
	}

	fmt.Fprintf(w, "library: %s (%s)\n", result.Library, result.Mode)
	if !result.Loaded {
		fmt.Fprintf(w, "status:  unavailable\n")
		fmt.Fprintf(w, "error:   %s\n", result.Error)
		return nil
	}
	fmt.Fprintf(w, "status:  loaded\n")
	if result.Path != "" {
		fmt.Fprintf(w, "path:    %s\n", result.Path)
	}
	fmt.Fprintf(w, "message: %s\n", result.Message)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(helloCmd)
	rootCmd.AddCommand(logLevelCmd)
}
