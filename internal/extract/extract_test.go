package extract

import "testing"

func TestSQL(t *testing.T) {
	cases := []struct {
		name      string
		in        string
		wantSQL   string
		wantFound bool
		wantRest  string
	}{
		{
			name:      "block then sentence",
			in:        "```sql\nSELECT SUM(amount) FROM orders;\n```\nThis is the total amount.",
			wantSQL:   "SELECT SUM(amount) FROM orders;",
			wantFound: true,
			wantRest:  "This is the total amount.",
		},
		{
			name:      "upper case tag",
			in:        "Here you go:\n```SQL\n  SELECT 1\n```",
			wantSQL:   "SELECT 1",
			wantFound: true,
			wantRest:  "Here you go:",
		},
		{
			name:      "mixed case tag, inline",
			in:        "  ```Sql SELECT * FROM t```  ",
			wantSQL:   "SELECT * FROM t",
			wantFound: true,
			wantRest:  "",
		},
		{
			name:      "no fence",
			in:        "  I cannot answer that question.  \n",
			wantFound: false,
			wantRest:  "I cannot answer that question.",
		},
		{
			name:      "untagged fence is not sql",
			in:        "```\nSELECT 1\n```",
			wantFound: false,
			wantRest:  "```\nSELECT 1\n```",
		},
		{
			name:      "unterminated fence",
			in:        "```sql\nSELECT 1",
			wantFound: false,
			wantRest:  "```sql\nSELECT 1",
		},
		{
			name:      "first of several blocks wins",
			in:        "```sql\nSELECT 1\n```\nor\n```sql\nSELECT 2\n```",
			wantSQL:   "SELECT 1",
			wantFound: true,
			wantRest:  "or\n```sql\nSELECT 2\n```",
		},
		{
			name:      "other language block skipped",
			in:        "```python\nprint('hi')\n```\n```sql\nSELECT 3\n```",
			wantSQL:   "SELECT 3",
			wantFound: true,
			wantRest:  "```python\nprint('hi')\n```",
		},
		{
			name:      "sqlite tag does not count",
			in:        "```sqlite\nSELECT 4\n```",
			wantFound: false,
			wantRest:  "```sqlite\nSELECT 4\n```",
		},
		{
			name:      "stray fence in prose before the block",
			in:        "Wrap code in ``` like this. ```sql\nSELECT 1\n```\nOne sentence.",
			wantSQL:   "SELECT 1",
			wantFound: true,
			wantRest:  "Wrap code in ``` like this. \nOne sentence.",
		},
		{
			name:      "unclosed bare fence before the block",
			in:        "```\n```sql\nSELECT 2\n```",
			wantSQL:   "SELECT 2",
			wantFound: true,
			wantRest:  "```",
		},
		{
			name:      "four backticks still open a sql block",
			in:        "````sql\nSELECT 5\n```",
			wantSQL:   "SELECT 5",
			wantFound: true,
			wantRest:  "`",
		},
		{
			name:      "empty block",
			in:        "```sql\n```",
			wantSQL:   "",
			wantFound: true,
			wantRest:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sql, found, rest := SQL(tc.in)
			if found != tc.wantFound {
				t.Fatalf("found = %v, want %v", found, tc.wantFound)
			}
			if sql != tc.wantSQL {
				t.Fatalf("sql = %q, want %q", sql, tc.wantSQL)
			}
			if rest != tc.wantRest {
				t.Fatalf("remainder = %q, want %q", rest, tc.wantRest)
			}
		})
	}
}
