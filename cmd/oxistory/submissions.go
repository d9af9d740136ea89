package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/parisxmas/OxiDB/OxiStory/internal/config"
	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/service"
)

type filterFlags struct {
	search, status, from, to string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "query", "q", "", "match couple names or phone")
	cmd.Flags().StringVarP(&f.status, "status", "s", models.StatusAny, "novo, em-andamento, finalizado or todos")
	cmd.Flags().StringVar(&f.from, "from", "", "created on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "created on or before (YYYY-MM-DD)")
}

func (f *filterFlags) filter() (models.SubmissionFilter, error) {
	out := models.SubmissionFilter{Search: f.search, Status: models.Status(f.status)}
	if out.Status != models.StatusAny && !out.Status.Valid() {
		return out, fmt.Errorf("unknown status %q", f.status)
	}
	for _, d := range []struct {
		val string
		dst *time.Time
	}{{f.from, &out.From}, {f.to, &out.To}} {
		if d.val == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", d.val)
		if err != nil {
			return out, fmt.Errorf("invalid date %q", d.val)
		}
		*d.dst = t
	}
	return out, nil
}

// listSubmissions opens the backend and returns the filtered submissions.
func listSubmissions(load func() (*config.Config, error), flags *filterFlags) ([]*models.Submission, error) {
	f, err := flags.filter()
	if err != nil {
		return nil, err
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	b, err := openBackend(ctx, cfg, false)
	if err != nil {
		return nil, err
	}
	defer b.close()
	return service.NewSubmissionService(b.stores, nil, cfg.PublicURL).List(ctx, f)
}

func submissionsCmd(load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Inspect committed submissions",
	}
	cmd.AddCommand(listCmd(load), exportCmd(load))
	return cmd
}

func listCmd(load func() (*config.Config, error)) *cobra.Command {
	var flags filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := listSubmissions(load, &flags)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), subs)
		},
	}
	flags.register(cmd)
	return cmd
}

func writeTable(w io.Writer, subs []*models.Submission) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOMES\tTELEFONE\tSTATUS\tFOTOS\tCRIADO EM")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.Answer("nomes"), s.Answer("telefone"), s.Status, len(s.Photos), s.CreatedAt)
	}
	fmt.Fprintf(tw, "\n%d submission(s)\n", len(subs))
	return tw.Flush()
}

func exportCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		flags  filterFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export submissions as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (json or yaml)", format)
			}
			subs, err := listSubmissions(load, &flags)
			if err != nil {
				return err
			}
			return export(cmd.OutOrStdout(), format, subs)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	return cmd
}

// export writes the flat submission documents, the same shape the API
// serves.
func export(w io.Writer, format string, subs []*models.Submission) error {
	if subs == nil {
		subs = []*models.Submission{}
	}
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(subs)
	}
	raw, err := json.Marshal(subs)
	if err != nil {
		return err
	}
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(docs)
}
