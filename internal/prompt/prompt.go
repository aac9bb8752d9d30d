// Package prompt renders the two prompts sent to the completion service.
package prompt

import (
	"fmt"
	"strings"

	"github.com/suPer8Hu/askdb/internal/query"
	"github.com/suPer8Hu/askdb/internal/schema"
)

const sqlTemplate = `You are a data analyst working with a SQLite database.

Here is the database schema:
%[1]s

Your task is to:
1. Convert the user's natural language query into a valid SQLite SQL query. Use SQLite syntax only.
2. Use only the table and column names **exactly as provided** in the schema above. Do not rename or modify them. Do not add or remove underscores or alter spacing.
3. For any text-based filters (such as names, categories, locations, etc.), use case-insensitive and partial matching using the pattern: LOWER(column_name) LIKE '%%value%%'.
4. If the query implies excluding similar but different values, use NOT LIKE appropriately to filter them out.
5. Return only the SQL query inside a code block formatted as ` + "```sql ... ```" + `
6. After the code block, provide exactly one sentence of natural language explanation of what the result means.

User query:
%[2]s
`

const summaryTemplate = `Given the following user question:

%[1]s

And the following SQL query result:

%[2]s

Generate a short, human-readable answer in plain English.
Avoid technical jargon or SQL syntax, just give a natural explanation based on the numbers, like:
"There are 100 unique brokers" or "The average investment is 10,000."

Only include the answer sentence. Do not add any extra explanation.
`

// RenderSchema lists each table followed by its columns and declared types.
func RenderSchema(d schema.Description) string {
	var b strings.Builder
	for i, t := range d.Tables {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Table: ")
		b.WriteString(t.Name)
		for _, c := range t.Columns {
			b.WriteString("\n - ")
			b.WriteString(c.Name)
			b.WriteString(": ")
			b.WriteString(c.Type)
		}
	}
	return b.String()
}

// SQLPrompt asks the model for a fenced SQLite query answering question.
func SQLPrompt(question string, d schema.Description) string {
	return fmt.Sprintf(sqlTemplate, RenderSchema(d), strings.TrimSpace(question))
}

// SummaryPrompt asks for a one-sentence plain-English answer grounded in res.
func SummaryPrompt(question string, res query.Result) string {
	return fmt.Sprintf(summaryTemplate, strings.TrimSpace(question), RenderText(res))
}
