package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/ghosthand/internal/config"
	"github.com/xkilldash9x/ghosthand/internal/observability"
	"github.com/xkilldash9x/ghosthand/internal/sequence"
)

// newValidateCmd creates the `validate` command, which checks the area and
// sequence definition files without touching any backend.
func newValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Checks the area and sequence definition files",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("paths.areas", cmd.Flags().Lookup("areas")); err != nil {
				return err
			}
			return viper.BindPFlag("paths.sequences", cmd.Flags().Lookup("sequences"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			out := cmd.OutOrStdout()

			runCfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			problems := 0

			areas, err := sequence.LoadAreas(runCfg.Paths.Areas)
			if err != nil {
				problems++
				fmt.Fprintf(out, "FAIL areas     %v\n", err)
			} else {
				fmt.Fprintf(out, "ok   areas     %d area(s) in %s\n", len(areas.Areas), runCfg.Paths.Areas)
			}

			// A broken areas file still lets the sequences file be checked
			// structurally; area references are skipped in that case.
			seqs, err := sequence.LoadSequences(runCfg.Paths.Sequences, areas)
			if err != nil {
				problems++
				fmt.Fprintf(out, "FAIL sequences %v\n", err)
			} else {
				names := make([]string, 0, len(seqs.Sequences))
				for name := range seqs.Sequences {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "ok   sequence  %-20s %d action(s)\n", name, len(seqs.Sequences[name]))
				}
			}

			if problems > 0 {
				logger.Error("Validation failed")
				return fmt.Errorf("validation failed with %d problem(s)", problems)
			}
			fmt.Fprintln(out, "All definitions are valid.")
			return nil
		},
	}

	validateCmd.Flags().String("areas", "", "path to the named-areas file")
	validateCmd.Flags().String("sequences", "", "path to the sequences file")

	return validateCmd
}
