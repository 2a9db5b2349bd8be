package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/certdesk/certdesk/internal/app"
	"github.com/certdesk/certdesk/internal/config"
	"github.com/certdesk/certdesk/internal/form"
	"github.com/certdesk/certdesk/internal/templates"
	"github.com/certdesk/certdesk/pkg/logger"
)

// refresher is the part of templates.Service the refresh command needs.
type refresher interface {
	Refresh(ctx context.Context, key string) (*templates.Template, bool, error)
	RefreshAll(ctx context.Context) ([]string, error)
}

func newRootCmd() *cobra.Command {
	var level string
	root := &cobra.Command{
		Use:           "templatesync",
		Short:         "Sync and inspect ACORD form templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Init(level)
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", os.Getenv("LOG_LEVEL"), "debug|info|warn|error")
	root.AddCommand(newRefreshCmd(func(ctx context.Context) (refresher, func(), error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		a := app.New(ctx, cfg)
		return a.Templates, a.Close, nil
	}))
	root.AddCommand(newInspectCmd())
	root.AddCommand(newCatalogCmd())
	return root
}

func newRefreshCmd(open func(ctx context.Context) (refresher, func(), error)) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [template-key...]",
		Short: "Re-store templates from the local template directory",
		Long:  "Refresh reads each template's local canonical file, extracts its fields and stores it when the bytes or field metadata changed. Without arguments every catalog template with a local file is refreshed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				changed, err := svc.RefreshAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d template(s) updated %v\n", len(changed), changed)
				return nil
			}
			for _, key := range args {
				t, changed, err := svc.Refresh(ctx, key)
				if err != nil {
					return fmt.Errorf("refresh %s: %w", key, err)
				}
				state := "unchanged"
				if changed {
					state = "updated"
				}
				fmt.Fprintf(out, "%s\t%s\t%d fields\t%s\n", t.TypeKey, state, len(t.KnownFields), t.ID)
			}
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	var asJSON, withValues bool
	cmd := &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "List the fillable fields of a PDF form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fields, err := form.Introspect(data)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}
			var values map[string]string
			if withValues {
				if values, err = form.ReadValues(data); err != nil {
					return err
				}
			}
			return printFields(cmd.OutOrStdout(), fields, values, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&withValues, "values", false, "include current field values")
	return cmd
}

func printFields(w io.Writer, fields []form.FieldInfo, values map[string]string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if values != nil {
			return enc.Encode(map[string]interface{}{"fields": fields, "values": values})
		}
		return enc.Encode(fields)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tREQUIRED\tSTATES\tVALUE")
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%v\t%s\n", f.Name, f.Kind, f.Required, f.States, values[f.Name])
	}
	return tw.Flush()
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List known ACORD template keys and local file names",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys := templates.CatalogKeys()
			sort.Strings(keys)
			for _, k := range keys {
				name, _ := templates.DisplayName(k)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s.pdf\n", k, name, templates.Slug(name))
			}
			return nil
		},
	}
}
