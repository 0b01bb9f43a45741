package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Table is a loaded CSV file.
type Table struct {
	Header []string
	Rows   [][]string
}

// LoadCSV reads a header-bearing CSV file.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV is LoadCSV over a reader.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header")
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// Column returns the index of name or -1.
func (t *Table) Column(name string) int {
	return slices.Index(t.Header, name)
}

// ValueCount is one row of a frequency table.
type ValueCount struct {
	Value string
	Count int
}

// CountBy tallies column values, most frequent first; ties sort by value.
func (t *Table) CountBy(column string) ([]ValueCount, error) {
	idx := t.Column(column)
	if idx < 0 {
		return nil, fmt.Errorf("no column %q", column)
	}
	counts := make(map[string]int)
	for _, row := range t.Rows {
		if idx < len(row) {
			counts[row[idx]]++
		}
	}
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	slices.SortFunc(out, func(a, b ValueCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if a.Value < b.Value {
			return -1
		}
		if a.Value > b.Value {
			return 1
		}
		return 0
	})
	return out, nil
}

// Sample returns up to n rows whose column equals value, in file order.
func (t *Table) Sample(column, value string, n int) [][]string {
	idx := t.Column(column)
	if idx < 0 {
		return nil
	}
	var out [][]string
	for _, row := range t.Rows {
		if len(out) >= n {
			break
		}
		if idx < len(row) && row[idx] == value {
			out = append(out, row)
		}
	}
	return out
}

// Inspector prints a diagnostic summary of an exported table.
type Inspector struct {
	Out        io.Writer
	TagColumn  string
	SampleTags []string
	SampleSize int
}

// Inspect prints the row count, the tag frequency table and a sample per tag.
func (in *Inspector) Inspect(t *Table) error {
	fmt.Fprintf(in.Out, "Rows: %d\n", len(t.Rows))

	counts, err := t.CountBy(in.TagColumn)
	if err != nil {
		return err
	}
	fmt.Fprintf(in.Out, "\nCounts per %s:\n", in.TagColumn)
	ct := tablewriter.NewWriter(in.Out)
	ct.Header(in.TagColumn, "count")
	for _, c := range counts {
		if err := ct.Append(c.Value, strconv.Itoa(c.Count)); err != nil {
			return err
		}
	}
	if err := ct.Render(); err != nil {
		return err
	}

	for _, tag := range in.SampleTags {
		fmt.Fprintf(in.Out, "\nExample %s:\n", tag)
		rows := t.Sample(in.TagColumn, tag, in.SampleSize)
		if len(rows) == 0 {
			fmt.Fprintln(in.Out, "(none)")
			continue
		}
		st := tablewriter.NewWriter(in.Out)
		st.Header(cells(t.Header)...)
		for _, row := range rows {
			if err := st.Append(cells(row)...); err != nil {
				return err
			}
		}
		if err := st.Render(); err != nil {
			return err
		}
	}
	return nil
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
