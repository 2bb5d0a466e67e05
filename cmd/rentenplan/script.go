package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vorsorge/rentenplan/internal/config"
	"github.com/vorsorge/rentenplan/internal/formscript"
	"github.com/vorsorge/rentenplan/internal/report"
)

func scriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Print the embedded form-calculation JavaScript for a tax year",
		Long: `Generates the JavaScript that recalculates taxes and products inside a PDF form.
The script carries its own test fixtures; run selfTest() to check it against the Go engine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := loadRegulatory(cmd)
			if err != nil {
				return err
			}
			year, _ := cmd.Flags().GetInt("year")
			rules, err := config.RulesForYear(year, extra)
			if err != nil {
				return err
			}
			return formscript.NewGenerator(rules).Generate(cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int("year", 2024, "Tax year")
	cmd.Flags().String("regulatory-config", "", "Path to an additional tax-year file")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [input-file]",
		Short: "Write a PDF comparison report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, loaded, err := runComparison(cmd, args[0])
			if err != nil {
				return err
			}

			in := report.Input{
				Summary:     summary,
				Plans:       loaded.Plans,
				Rules:       loaded.Rules,
				GeneratedAt: time.Now(),
			}
			in.Title, _ = cmd.Flags().GetString("title")
			if noScript, _ := cmd.Flags().GetBool("no-script"); !noScript {
				if in.Script, err = formscript.NewGenerator(loaded.Rules).Script(); err != nil {
					return err
				}
			}

			pdf, err := report.GeneratePDF(in)
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("output")
			if out == "-" {
				_, err = bytes.NewReader(pdf).WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := os.WriteFile(out, pdf, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
			return nil
		},
	}
	addComparisonFlags(cmd)
	cmd.Flags().StringP("output", "o", "rentenplan.pdf", "Output file, - for stdout")
	cmd.Flags().String("title", "", "Report title")
	cmd.Flags().Bool("no-script", false, "Do not embed the form-calculation script")
	return cmd
}
