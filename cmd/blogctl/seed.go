package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guimauveb/guimauve.io/internal/repository"
	"github.com/guimauveb/guimauve.io/internal/seed"
	"github.com/guimauveb/guimauve.io/internal/service"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Create tags, projects and articles from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}

			e, err := connect()
			if err != nil {
				return err
			}
			defer e.db.Close()

			// The CLI talks to the database directly and always has write access
			e.cfg.Editable = true
			services := service.NewServices(repository.New(e.db), e.cfg, e.log)

			seeder, err := seed.New(services, e.log)
			if err != nil {
				return err
			}
			result, err := seeder.Apply(cmd.Context(), fixtures)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d tags, %d projects, %d articles\n",
				result.Tags, result.Projects, result.Articles)
			return nil
		},
	}
}
