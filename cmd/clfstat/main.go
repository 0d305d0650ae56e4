// Command clfstat summarises web server access logs in the Common Log Format
// or the Combined Log Format.
//
//	clfstat analyze access.log summary.json
//	clfstat parse access.log records.ndjson
//
// Either path may be "-" for standard input or output.
package main

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/bitfield/clfstat"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	os.Exit(Main())
}

// Main runs the command with the program's arguments, and returns its exit
// status.
func Main() int {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "clfstat:", err)
		return 1
	}
	return 0
}

type app struct {
	stdout, stderr io.Writer
	configPath     string
	flags          Config
	cfg            Config
	log            zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:               "clfstat",
		Short:             "Summarise web server access logs",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	def := defaultConfig()
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", os.Getenv("CLFSTAT_CONFIG"), "YAML config file (env: CLFSTAT_CONFIG)")
	pf.StringVar(&a.flags.LogLevel, "log-level", def.LogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.LogFormat, "log-format", def.LogFormat, "log format: console, json")
	pf.BoolVar(&a.flags.SkipInvalid, "skip-invalid", false, "skip lines in no known format instead of failing")
	pf.StringVar(&a.flags.Exec, "exec", "", "pipe the input through this command first, e.g. 'gzip -dc'")
	pf.StringVar(&a.flags.Include, "include", "", "only read lines matching this regexp")
	pf.StringVar(&a.flags.Exclude, "exclude", "", "don't read lines matching this regexp")
	pf.IntVar(&a.flags.Head, "head", 0, "only read the first N lines (0 reads all)")
	pf.StringVar(&a.flags.JQ, "jq", "", "jq query to apply to the output")
	pf.StringVar(&a.flags.MetricsFile, "metrics-file", "", "write Prometheus metrics for the run to this file")

	root.AddCommand(a.analyzeCmd(), a.parseCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), &cfg, a.flags)
	if err := cfg.validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = newLogger(cfg.LogLevel, cfg.LogFormat, a.stderr).
		With().
		Str("run", uuid.NewString()).
		Logger()
	return nil
}

// source returns a pipe reading the log at path ("-" for standard input),
// passed through the configured command and line filters.
func (a *app) source(path string) *clfstat.Pipe {
	var p *clfstat.Pipe
	if path == "-" {
		p = clfstat.Stdin()
	} else {
		p = clfstat.File(path)
	}
	if a.cfg.Exec != "" {
		p = p.Exec(a.cfg.Exec)
	}
	if a.cfg.Include != "" {
		p = p.MatchRegexp(regexp.MustCompile(a.cfg.Include))
	}
	if a.cfg.Exclude != "" {
		p = p.RejectRegexp(regexp.MustCompile(a.cfg.Exclude))
	}
	if a.cfg.Head > 0 {
		p = p.First(a.cfg.Head)
	}
	return p
}

func (a *app) libConfig(m *clfstat.Metrics) clfstat.Config {
	return clfstat.Config{
		Logger:      &a.log,
		Metrics:     m,
		SkipInvalid: a.cfg.SkipInvalid,
	}
}

func (a *app) metrics() *clfstat.Metrics {
	if a.cfg.MetricsFile == "" {
		return nil
	}
	return clfstat.NewMetrics()
}

func (a *app) writeMetrics(m *clfstat.Metrics) {
	if m == nil {
		return
	}
	if err := m.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.log.Error().Err(err).Str("path", a.cfg.MetricsFile).Msg("writing metrics failed")
	}
}
