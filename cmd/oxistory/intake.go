package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/parisxmas/OxiDB/OxiStory/internal/config"
	"github.com/parisxmas/OxiDB/OxiStory/internal/service"
	"github.com/parisxmas/OxiDB/OxiStory/internal/terminal"
)

func intakeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "intake",
		Short: "Fill in a story interactively on the terminal",
		Long: `Walk through the questionnaire, attach photos from local files and
submit the story to the configured store.

Type ` + terminal.BackCommand + ` as an answer to return to the previous question.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			b, err := openBackend(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer b.close()

			commits := newPipeline(cfg, b.stores)
			svc := service.NewIntakeService(commits, cfg.SessionTTL)
			defer svc.Close()

			res, err := terminal.NewWizard(terminal.NewSurveyDriver(), svc).Run(ctx)
			if errors.Is(err, terminal.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Cancelado.")
				return nil
			}
			if err != nil {
				return err
			}
			commits.Wait()
			fmt.Fprintf(cmd.OutOrStdout(), "Submissão %s criada com %d foto(s).\n", res.SubmissionID, len(res.Paths))
			return nil
		},
	}
}
