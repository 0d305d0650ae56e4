package main

import (
	"fmt"

	"github.com/bitfield/clfstat"
	"github.com/spf13/cobra"
)

func (a *app) analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <from> <to>",
		Short: "Count requests, hosts, paths, hours, and status codes in a log",
		Long: `Analyze reads the access log <from> and writes a JSON summary of it to <to>.
The summary is only written if every line could be read, and parsed unless
--skip-invalid is given.`,
		Args: cobra.ExactArgs(2),
		RunE: a.runAnalyze,
	}
	cmd.Flags().IntVar(&a.flags.Top, "top", 0, "keep only the N highest counts in each list (0 keeps all)")
	return cmd
}

func (a *app) runAnalyze(_ *cobra.Command, args []string) error {
	from, to := args[0], args[1]
	m := a.metrics()
	defer a.writeMetrics(m)
	res, err := clfstat.Analyze(a.source(from), a.libConfig(m))
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", from, err)
	}
	if err := clfstat.WriteSummary(res.Limit(a.cfg.Top), to, a.cfg.JQ, a.stdout); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	a.log.Info().
		Str("from", from).
		Str("to", to).
		Int("requests", res.TotalRequests).
		Int("hosts", res.UniqueRemoteHostsCount).
		Msg("logs analyzed")
	return nil
}

func (a *app) parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <from> <to>",
		Short: "Convert a log to one JSON object per line",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runParse,
	}
}

func (a *app) runParse(_ *cobra.Command, args []string) error {
	from, to := args[0], args[1]
	m := a.metrics()
	defer a.writeMetrics(m)
	p := clfstat.DecodeLines(a.source(from), a.libConfig(m))
	if a.cfg.JQ != "" {
		p = p.JQ(a.cfg.JQ)
	}
	var err error
	if to == "-" {
		_, err = p.WithStdout(a.stdout).Stdout()
	} else {
		_, err = p.WriteFile(to)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", from, err)
	}
	a.log.Info().Str("from", from).Str("to", to).Msg("logs parsed")
	return nil
}
