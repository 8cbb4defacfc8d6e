package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/etnz/taxwiz"
	"github.com/etnz/taxwiz/config"
	"github.com/etnz/taxwiz/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	mode   string
	file   string
	output string
	format string

	cfg *config.Config // nil loads the environment
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "generate a tax report from a brokerage export" }
func (*reportCmd) Usage() string {
	return `taxwiz report -mode <lightyear|revolut|revolut_saving> -f <export.csv> [-o <output>] [-format <xlsx|md|html|json>]

  Converts every transaction of the export to the home currency at the
  official rate of its date, and writes the realized gains, open positions
  and income. The default output is <mode>_report.xlsx, "-o -" prints the
  report to the terminal.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.mode, "mode", "", "Export profile: lightyear, revolut or revolut_saving.")
	f.StringVar(&c.file, "f", "", "Path to the CSV export.")
	f.StringVar(&c.output, "o", "", "Output file, or '-' for the terminal. Defaults to <mode>_report.<format>.")
	f.StringVar(&c.format, "format", "", "Output format: xlsx, md, html or json. Defaults to the output file extension.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	profile, err := taxwiz.ProfileByName(c.mode)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.file == "" {
		fmt.Fprintln(stderr, "Error: missing input file, use -f")
		return subcommands.ExitUsageError
	}
	format := c.format
	if format != "" && !slices.Contains(renderer.Formats(), format) {
		fmt.Fprintf(stderr, "Error: unknown format %q, want one of %s\n", format, strings.Join(renderer.Formats(), ", "))
		return subcommands.ExitUsageError
	}

	in, err := os.Open(c.file)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "Error: input file %q not found\n", c.file)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: cannot open input file %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	a, err := newApp(c.cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	txs, skipped, err := taxwiz.Import(in, profile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: cannot read %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	for _, err := range skipped {
		a.log.Warn().Err(err).Str("file", c.file).Msg("row skipped")
	}
	a.log.Info().Int("transactions", len(txs)).Int("skipped", len(skipped)).Str("file", c.file).Msg("export imported")

	report := taxwiz.BuildReport(ctx, profile, txs, a.resolver, a.resolver.Home(), a.log)

	output := c.output
	if output == "-" {
		printMarkdown(stdout, renderer.Markdown(report))
		return subcommands.ExitSuccess
	}
	if format == "" {
		format = renderer.FormatXLSX
		if output != "" {
			format = renderer.FormatOf(output)
		}
	}
	if output == "" {
		output = fmt.Sprintf("%s_report.%s", profile.Name, format)
	}

	var buf bytes.Buffer
	switch format {
	case renderer.FormatMarkdown:
		buf.WriteString(renderer.Markdown(report))
	case renderer.FormatHTML:
		content, err := renderer.HTML(report)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		buf.Write(content)
	case renderer.FormatJSON:
		err = renderer.JSON(report, &buf)
	default:
		err = renderer.XLSX(report, &buf)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: cannot render report: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		fmt.Fprintf(stderr, "Error: cannot write report %q: %v\n", output, err)
		return subcommands.ExitFailure
	}

	home := report.Home
	if profile.Positions {
		fmt.Fprintf(stdout, "Realized PnL: %s\n", taxwiz.NewMoney(report.RealizedTotal(), home))
		for _, typ := range profile.Income {
			fmt.Fprintf(stdout, "%s: %s\n", typ, taxwiz.NewMoney(report.IncomeTotal(typ), home))
		}
		fmt.Fprintf(stdout, "Total taxable: %s\n", taxwiz.NewMoney(report.TaxableTotal(), home))
	}
	for _, s := range report.SavingsSummary {
		fmt.Fprintf(stdout, "%s net interest: %s (%s)\n", s.Currency, taxwiz.NewMoney(s.NetFC, s.Currency), taxwiz.NewMoney(s.NetHome, home))
	}
	fmt.Fprintf(stdout, "Report written to %s\n", output)
	return subcommands.ExitSuccess
}
