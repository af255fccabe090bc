package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docchat/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract, split and embed every unprocessed document",
	Long: `Processes every registered document that has not been ingested yet. A
failing document is reported and left unprocessed; the others still complete.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	pipeline := a.pipeline()
	reporter := progress.NewReporter()
	pipeline.SetProgressFunc(progress.Func(reporter))

	res, err := pipeline.Run(ctx)
	reporter.Finish()
	if err != nil {
		return err
	}

	if res.Processed == 0 && res.Failed == 0 {
		fmt.Println("Nothing to ingest.")
		return nil
	}

	fmt.Printf("\nIngested %d document(s), %d fragment(s) in %s\n", res.Processed, res.Fragments, res.Duration.Round(time.Millisecond))
	if res.Failed > 0 {
		fmt.Fprintf(os.Stderr, "%d document(s) failed:\n", res.Failed)
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "  - %v\n", e)
		}
	}
	return nil
}
