// Package commands implements askctl, a terminal front end to the same
// pipeline the web page uses.
package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/askdb/internal/assistant"
	"github.com/suPer8Hu/askdb/internal/schema"
)

type Asker interface {
	Ask(ctx context.Context, question string) (*assistant.Answer, error)
}

type Schemas interface {
	Load(ctx context.Context) (schema.Description, error)
	Refresh(ctx context.Context) (schema.Description, error)
}

// Backend is what the subcommands run against.
type Backend struct {
	Asker   Asker
	Schemas Schemas
}

// OpenFunc builds a Backend. The returned func releases it.
type OpenFunc func(ctx context.Context, verbose bool) (Backend, func(), error)

type rootOptions struct {
	open    OpenFunc
	verbose bool
	json    bool
}

func (o *rootOptions) backend(cmd *cobra.Command) (Backend, func(), error) {
	if o.open == nil {
		return Backend{}, nil, errors.New("no backend configured")
	}
	return o.open(cmd.Context(), o.verbose)
}

// NewRootCmd builds the askctl command tree.
func NewRootCmd(open OpenFunc) *cobra.Command {
	opts := &rootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "askctl",
		Short: "Ask questions about a SQLite database in plain English",
		Long: `askctl turns a natural-language question into SQLite, runs it against the
configured target database and prints the SQL, the rows and a one-sentence answer.
Configuration comes from the environment (and an optional .env file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline activity to stdout")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of text")

	cmd.AddCommand(newAskCmd(opts))
	cmd.AddCommand(newSchemaCmd(opts))
	cmd.AddCommand(NewVersionCmd())
	return cmd
}
