package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/askdb/internal/assistant"
	"github.com/suPer8Hu/askdb/internal/prompt"
	"github.com/suPer8Hu/askdb/internal/query"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question against the target database",
		Long: `Generate SQL for the question, run it and summarize the result.
All arguments are joined into one question.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, release, err := opts.backend(cmd)
			if err != nil {
				return err
			}
			defer release()

			question := strings.Join(args, " ")
			ans, askErr := backend.Asker.Ask(cmd.Context(), question)

			out := cmd.OutOrStdout()
			if ans != nil {
				if opts.json {
					if err := writeAnswerJSON(out, ans); err != nil {
						return err
					}
				} else {
					writeAnswerText(out, ans)
				}
			}
			if askErr != nil {
				return errors.New(assistant.Message(askErr))
			}
			return nil
		},
	}
}

func writeAnswerText(w io.Writer, ans *assistant.Answer) {
	fmt.Fprintf(w, "SQL:\n%s\n\n", ans.SQL)
	fmt.Fprintf(w, "%s\n", prompt.RenderText(ans.Result))
	if ans.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", ans.Summary)
	}
}

func writeAnswerJSON(w io.Writer, ans *assistant.Answer) error {
	rows := ans.Result.Rows
	if rows == nil {
		rows = []query.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Question string      `json:"question"`
		SQL      string      `json:"sql"`
		Columns  []string    `json:"columns"`
		Rows     []query.Row `json:"rows"`
		Summary  string      `json:"summary"`
	}{ans.Question, ans.SQL, ans.Result.Columns, rows, ans.Summary})
}
