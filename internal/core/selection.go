package core

// Selection maps each export column to its included flag. Methods never
// mutate the receiver; they return a fresh Selection.
type Selection map[Column]bool

// AllColumns is the dialog's initial state.
func AllColumns() Selection {
	s := make(Selection, len(Columns))
	for _, c := range Columns {
		s[c] = true
	}
	return s
}

func NoColumns() Selection {
	s := make(Selection, len(Columns))
	for _, c := range Columns {
		s[c] = false
	}
	return s
}

// SelectionOf includes exactly the given columns.
func SelectionOf(cols ...Column) Selection {
	s := NoColumns()
	for _, c := range cols {
		if _, ok := columnLabels[c]; ok {
			s[c] = true
		}
	}
	return s
}

func (s Selection) clone() Selection {
	out := NoColumns()
	for _, c := range Columns {
		out[c] = s[c]
	}
	return out
}

// Toggle flips one column.
func (s Selection) Toggle(c Column) Selection {
	out := s.clone()
	if _, ok := columnLabels[c]; ok {
		out[c] = !out[c]
	}
	return out
}

// ToggleAll deselects everything when all columns are selected and selects
// everything otherwise.
func (s Selection) ToggleAll() Selection {
	if s.AllSelected() {
		return NoColumns()
	}
	return AllColumns()
}

func (s Selection) Includes(c Column) bool {
	return s[c]
}

func (s Selection) Count() int {
	n := 0
	for _, c := range Columns {
		if s[c] {
			n++
		}
	}
	return n
}

func (s Selection) AllSelected() bool {
	return s.Count() == len(Columns)
}

func (s Selection) None() bool {
	return s.Count() == 0
}

// Selected returns the included columns in display order.
func (s Selection) Selected() []Column {
	out := make([]Column, 0, len(Columns))
	for _, c := range Columns {
		if s[c] {
			out = append(out, c)
		}
	}
	return out
}

// Labels returns the headers of the included columns in display order.
func (s Selection) Labels() []string {
	cols := s.Selected()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label()
	}
	return out
}
