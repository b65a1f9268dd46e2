package export

// Dataset defines tabular export content split into titled sections.
type Dataset struct {
	Title    string
	Headers  []string
	Sections []Section
}

// Section is one titled block of rows, keyed by header.
type Section struct {
	Name string
	Rows []map[string]string
}

// RowCount totals the rows across all sections.
func (d Dataset) RowCount() int {
	total := 0
	for _, section := range d.Sections {
		total += len(section.Rows)
	}
	return total
}
