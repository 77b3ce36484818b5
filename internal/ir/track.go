package ir

import "math"

// ESDTrack is the ESD layout of a reconstructed track: external parameters
// at reference X in a frame rotated by Alpha, plus fit quality information.
type ESDTrack struct {
	Ref `json:"-" yaml:"-"`

	ID          int32       `json:"id" yaml:"id"`
	Label       int32       `json:"label" yaml:"label"`
	Status      uint64      `json:"status" yaml:"status"`
	Alpha       float64     `json:"alpha" yaml:"alpha"`
	X           float64     `json:"x" yaml:"x"`
	Param       [5]float64  `json:"param" yaml:"param"`
	Covariance  [15]float64 `json:"covariance" yaml:"covariance"`
	TPCNcls     int32       `json:"tpc_ncls" yaml:"tpc_ncls"`
	ITSNcls     int32       `json:"its_ncls" yaml:"its_ncls"`
	TPCChi2     float64     `json:"tpc_chi2" yaml:"tpc_chi2"`
	ITSChi2     float64     `json:"its_chi2" yaml:"its_chi2"`
	TrackLength float64     `json:"track_length" yaml:"track_length"`
}

// ElementType implements Object.
func (t *ESDTrack) ElementType() ElementType { return ElemESDTrack }

// Clone returns a value duplicate, identity fields included.
func (t *ESDTrack) Clone() *ESDTrack {
	c := *t
	return &c
}

// Pt returns the transverse momentum from the signed inverse pt parameter.
func (t *ESDTrack) Pt() float64 {
	if t.Param[4] == 0 {
		return math.Inf(1)
	}
	return 1 / math.Abs(t.Param[4])
}

// AODTrackType classifies an AOD track relative to its vertex.
type AODTrackType int

const (
	AODTrackUndefined AODTrackType = iota
	AODTrackPrimary
	AODTrackSecondary
	AODTrackOrphan
)

// AODTrack is the AOD layout of a reconstructed track: momentum and position
// vectors with a filter bit map.
type AODTrack struct {
	Ref `json:"-" yaml:"-"`

	ID            int32        `json:"id" yaml:"id"`
	Label         int32        `json:"label" yaml:"label"`
	Type          AODTrackType `json:"type" yaml:"type"`
	Charge        int8         `json:"charge" yaml:"charge"`
	Momentum      [3]float64   `json:"momentum" yaml:"momentum"`
	Position      [3]float64   `json:"position" yaml:"position"`
	Covariance    []float64    `json:"covariance,omitempty" yaml:"covariance,omitempty"`
	Chi2PerNDF    float64      `json:"chi2_per_ndf" yaml:"chi2_per_ndf"`
	FilterMap     uint32       `json:"filter_map" yaml:"filter_map"`
	Status        uint64       `json:"status" yaml:"status"`
	TPCNcls       int32        `json:"tpc_ncls" yaml:"tpc_ncls"`
	ITSClusterMap uint8        `json:"its_cluster_map" yaml:"its_cluster_map"`
}

// ElementType implements Object.
func (t *AODTrack) ElementType() ElementType { return ElemAODTrack }

// Clone returns a value duplicate, identity fields included.
// The covariance matrix is deep-copied.
func (t *AODTrack) Clone() *AODTrack {
	c := *t
	if t.Covariance != nil {
		c.Covariance = append([]float64(nil), t.Covariance...)
	}
	return &c
}

// Pt returns the transverse momentum.
func (t *AODTrack) Pt() float64 {
	return math.Hypot(t.Momentum[0], t.Momentum[1])
}

// TestFilterBit reports whether any of the given filter bits is set.
func (t *AODTrack) TestFilterBit(mask uint32) bool {
	return t.FilterMap&mask != 0
}
