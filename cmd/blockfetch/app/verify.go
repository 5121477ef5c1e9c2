package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bitcoin-sv/blockfetch/internal/blockstore"
	"github.com/bitcoin-sv/blockfetch/internal/verifier"
)

var VerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that stored blocks decode, link to each other and match their merkle roots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		sink, err := blockstore.NewFileSink(logger, cfg.Fetch.OutputDir)
		if err != nil {
			return err
		}

		report, err := verifier.New(logger, sink).Verify(cmd.Context(), cfg.Fetch.StartHeight, cfg.Fetch.Count)
		if err != nil {
			return err
		}

		renderReport(os.Stdout, report)

		if err = report.Err(); err != nil {
			logger.Error("Verification failed", slog.String("dir", sink.Dir()), slog.String("err", err.Error()))
			return errors.Join(ErrCommandFailed, err)
		}

		logger.Info("Verification passed", slog.Int("blocks", len(report.Results)), slog.String("dir", sink.Dir()))

		return nil
	},
}

func renderReport(w io.Writer, report *verifier.Report) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Height", "File", "Hash", "Txs", "Status"})

	failed := 0
	for _, res := range report.Results {
		status := "ok"
		if !res.OK() {
			status = res.Err.Error()
			failed++
		}

		hash := ""
		if res.Txs > 0 || res.OK() {
			hash = res.Hash.String()
		}

		t.AppendRow(table.Row{res.Height, res.Name, hash, res.Txs, status})
	}

	t.AppendFooter(table.Row{"", "", "", "Failed", fmt.Sprintf("%d/%d", failed, len(report.Results))})

	fmt.Fprintln(w, t.Render())
}
