package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/askdb/internal/prompt"
	"github.com/suPer8Hu/askdb/internal/schema"
)

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the cached schema description",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the schema the model is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, release, err := opts.backend(cmd)
			if err != nil {
				return err
			}
			defer release()

			desc, err := backend.Schemas.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load schema: %w", err)
			}
			return printSchema(cmd, opts, desc)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Re-read the schema from the database and replace the cached copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, release, err := opts.backend(cmd)
			if err != nil {
				return err
			}
			defer release()

			desc, err := backend.Schemas.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refresh schema: %w", err)
			}
			if opts.json {
				return printSchema(cmd, opts, desc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema refreshed: %d tables\n", len(desc.Tables))
			return nil
		},
	})
	return cmd
}

func printSchema(cmd *cobra.Command, opts *rootOptions, desc schema.Description) error {
	out := cmd.OutOrStdout()
	if opts.json {
		b, err := json.MarshalIndent(desc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	}
	fmt.Fprintln(out, prompt.RenderSchema(desc))
	return nil
}
