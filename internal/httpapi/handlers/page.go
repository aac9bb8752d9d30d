package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/askdb/internal/assistant"
	"github.com/suPer8Hu/askdb/internal/query"
)

// PageTemplate is the name the router registers the page under.
const PageTemplate = "index.html"

type pageView struct {
	Question string
	SQL      string
	Columns  []string
	Rows     [][]string
	Summary  string
	Error    string
	// HasResult is set once the SQL ran, even if summarizing failed.
	HasResult bool
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, PageTemplate, pageView{})
}

// Ask handles the form post. Pipeline failures are shown inline on the page.
func (h *Handler) Ask(c *gin.Context) {
	question := c.PostForm("query")
	ctx := c.Request.Context()

	ans, err := h.Asker.Ask(ctx, question)
	h.record(ctx, question, ans, err)

	view := pageView{Question: question}
	if ans != nil {
		view.Question = ans.Question
		view.SQL = ans.SQL
		view.Summary = ans.Summary
		if ans.SQL != "" {
			view.HasResult = true
			view.Columns, view.Rows = displayRows(ans.Result)
		}
	}
	if err != nil {
		view.Error = assistant.Message(err)
	}
	c.HTML(http.StatusOK, PageTemplate, view)
}

func displayRows(res query.Result) ([]string, [][]string) {
	rows := make([][]string, 0, len(res.Rows))
	for _, r := range res.Rows {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = query.FormatValue(v)
		}
		rows = append(rows, cells)
	}
	return res.Columns, rows
}
