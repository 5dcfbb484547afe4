package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/guimauveb/guimauve.io/internal/repository"
	"github.com/guimauveb/guimauve.io/internal/service"
)

func exportCmd() *cobra.Command {
	var format, output string

	command := &cobra.Command{
		Use:   "export",
		Short: "Write every article, drafts included, as ndjson or json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			defer e.db.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}

			services := service.NewServices(repository.New(e.db), e.cfg, e.log)
			count, err := services.Export.ExportArticles(cmd.Context(), w, format)
			if err != nil {
				return err
			}

			e.log.Info().Int("articles", count).Str("format", format).Msg("Export finished")
			return nil
		},
	}

	command.Flags().StringVarP(&format, "format", "f", service.FormatNDJSON, "output format: ndjson or json")
	command.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	return command
}
