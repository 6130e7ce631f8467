package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Main builds and runs the root cobra command: clipforge serve starts
// the long-running HTTP API (analyze/subtitles/cut/batch/jobs/output)
// that drives the highlight-clip pipeline.
func Main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "clipforge",
		Short: "Highlight-clip generation server",
	}

	serveCmd := &cobra.Command{
		Use:          "serve",
		Short:        "Start the HTTP API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	serveCmd.Flags().String("out", "", "Output directory for rendered clips")
	serveCmd.Flags().String("temp", "", "Scratch directory for per-job intermediates")
	serveCmd.Flags().Int("max-batch", 0, "Max URLs accepted by one /api/batch request")

	root.AddCommand(serveCmd)
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
