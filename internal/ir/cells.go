package ir

// CellType selects the calorimeter a cell container belongs to.
type CellType int

const (
	CellUndefined CellType = iota
	CellPHOS
	CellEMCAL
)

// String returns the detector name.
func (t CellType) String() string {
	switch t {
	case CellPHOS:
		return "PHOS"
	case CellEMCAL:
		return "EMCAL"
	}
	return "undefined"
}

// Cell is one calorimeter channel deposit.
type Cell struct {
	AbsID     int32   `json:"abs_id" yaml:"abs_id"`
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Time      float64 `json:"time" yaml:"time"`
	MCLabel   int32   `json:"mc_label" yaml:"mc_label"`
	EFraction float64 `json:"e_fraction" yaml:"e_fraction"`
	HighGain  bool    `json:"high_gain" yaml:"high_gain"`
}

// Cells is the contract of a per-channel deposit container.
//
// Copy follows the container copy contract: the receiver overwrites dst's
// contents and also its name and title. Callers that need dst to keep its own
// name must restore it after the copy.
type Cells interface {
	Collection
	Title() string
	SetName(name string)
	SetTitle(title string)
	NumberOfCells() int
	Copy(dst Cells)

	assign(src *CaloCells)
}

// CaloCells is the concrete deposit container for both storage formats.
type CaloCells struct {
	name     string
	title    string
	format   Format
	cellType CellType
	cells    []Cell
}

// NewCaloCells creates an empty container.
func NewCaloCells(name, title string, format Format, cellType CellType) *CaloCells {
	return &CaloCells{
		name:     NormalizeName(name),
		title:    title,
		format:   format,
		cellType: cellType,
	}
}

func (c *CaloCells) Name() string  { return c.name }
func (c *CaloCells) Title() string { return c.title }
func (c *CaloCells) Kind() Kind    { return KindCells }
func (c *CaloCells) Len() int      { return len(c.cells) }

// Format returns the storage format the container was created for.
func (c *CaloCells) Format() Format { return c.format }

// CellType returns the detector the cells belong to.
func (c *CaloCells) CellType() CellType { return c.cellType }

func (c *CaloCells) SetName(name string)   { c.name = NormalizeName(name) }
func (c *CaloCells) SetTitle(title string) { c.title = title }

// NumberOfCells returns the number of stored deposits.
func (c *CaloCells) NumberOfCells() int { return len(c.cells) }

// Clear drops all deposits.
func (c *CaloCells) Clear() { c.cells = c.cells[:0] }

// Add appends a deposit.
func (c *CaloCells) Add(cell Cell) {
	c.cells = append(c.cells, cell)
}

// Cell returns the deposit at position i.
func (c *CaloCells) Cell(i int) (Cell, bool) {
	if i < 0 || i >= len(c.cells) {
		return Cell{}, false
	}
	return c.cells[i], true
}

// Cells returns a copy of all deposits in storage order.
func (c *CaloCells) Cells() []Cell {
	out := make([]Cell, len(c.cells))
	copy(out, c.cells)
	return out
}

// Copy overwrites dst with the receiver's contents, name and title.
// The destination keeps its own storage format.
func (c *CaloCells) Copy(dst Cells) {
	dst.assign(c)
}

func (c *CaloCells) assign(src *CaloCells) {
	c.name = src.name
	c.title = src.title
	c.cellType = src.cellType
	c.cells = append(c.cells[:0], src.cells...)
}
