package ir

// ClusterType tags the algorithm/detector that produced a cluster.
type ClusterType int

const (
	ClusterUndefined ClusterType = iota
	ClusterPHOSNeutral
	ClusterPHOSCharged
	ClusterEMCALv1
)

// Cluster is a geometric/energy aggregate of cell deposits.
//
// Format is the tagged variant of the record: it is stamped by the owning
// Array from its element type and decides which label operation applies.
type Cluster struct {
	Ref    `json:"-" yaml:"-"`
	Format Format `json:"-" yaml:"-"`

	Type                   ClusterType `json:"type" yaml:"type"`
	E                      float64     `json:"e" yaml:"e"`
	Position               [3]float64  `json:"position" yaml:"position"`
	CellsAbsID             []int32     `json:"cells_abs_id,omitempty" yaml:"cells_abs_id,omitempty"`
	CellsAmplitudeFraction []float64   `json:"cells_amplitude_fraction,omitempty" yaml:"cells_amplitude_fraction,omitempty"`
	ID                     int32       `json:"id" yaml:"id"`
	Dispersion             float64     `json:"dispersion" yaml:"dispersion"`
	EmcCpvDistance         float64     `json:"emc_cpv_distance" yaml:"emc_cpv_distance"`
	Chi2                   float64     `json:"chi2" yaml:"chi2"`
	TOF                    float64     `json:"tof" yaml:"tof"`
	NExMax                 int32       `json:"n_ex_max" yaml:"n_ex_max"`
	M02                    float64     `json:"m02" yaml:"m02"`
	M20                    float64     `json:"m20" yaml:"m20"`
	DistanceToBadChannel   float64     `json:"distance_to_bad_channel" yaml:"distance_to_bad_channel"`
	MCEnergyFraction       float64     `json:"mc_energy_fraction" yaml:"mc_energy_fraction"`
	Labels                 []int32     `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// ElementType returns the array element type matching the cluster's format.
func (c *Cluster) ElementType() ElementType {
	if c.Format == FormatAOD {
		return ElemAODCluster
	}
	if c.Format == FormatESD {
		return ElemESDCluster
	}
	return ""
}

// NCells returns the number of contributing cells.
func (c *Cluster) NCells() int { return len(c.CellsAbsID) }

// NLabels returns the number of originating-particle labels.
func (c *Cluster) NLabels() int { return len(c.Labels) }

// AddLabels attaches parent labels the ESD way: the whole label array is
// replaced by a private copy of parents.
func (c *Cluster) AddLabels(parents []int32) {
	c.Labels = append([]int32(nil), parents...)
}

// SetLabel attaches labels the AOD way: the first n entries of labels are
// copied.
func (c *Cluster) SetLabel(labels []int32, n int) {
	if n > len(labels) {
		n = len(labels)
	}
	if n <= 0 {
		c.Labels = nil
		return
	}
	c.Labels = append([]int32(nil), labels[:n]...)
}
