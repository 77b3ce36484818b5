// Package testutil provides deterministic collection fixtures shared by
// package tests.
package testutil

import (
	"fmt"

	"github.com/roach88/collcopy/internal/event"
	"github.com/roach88/collcopy/internal/ir"
)

// Cells builds an EMCAL cell container holding n deposits with predictable
// contents. The title equals the name.
func Cells(name string, format ir.Format, n int) *ir.CaloCells {
	c := ir.NewCaloCells(name, name, format, ir.CellEMCAL)
	for i := 0; i < n; i++ {
		c.Add(ir.Cell{
			AbsID:     int32(100 + i),
			Amplitude: 0.5 + float64(i)*0.25,
			Time:      600e-9 + float64(i)*1e-9,
			MCLabel:   int32(i),
			EFraction: 1,
			HighGain:  i%2 == 0,
		})
	}
	return c
}

// Cluster returns a populated cluster whose fields derive from i.
// When labelled is false the cluster carries no labels.
func Cluster(i int, labelled bool) *ir.Cluster {
	c := &ir.Cluster{
		Type:                   ir.ClusterEMCALv1,
		E:                      1.5 + float64(i),
		Position:               [3]float64{float64(i), 2 * float64(i), 440},
		CellsAbsID:             []int32{int32(10 * i), int32(10*i + 1)},
		CellsAmplitudeFraction: []float64{0.75, 0.25},
		ID:                     int32(i),
		Dispersion:             0.1,
		EmcCpvDistance:         12.5,
		Chi2:                   3.25,
		TOF:                    610e-9,
		NExMax:                 1,
		M02:                    0.3,
		M20:                    0.2,
		DistanceToBadChannel:   4,
		MCEnergyFraction:       0.9,
	}
	if labelled {
		c.Labels = []int32{int32(i), int32(i + 1000), int32(i + 2000)}
	}
	return c
}

// Clusters builds a cluster array of the format's element type with n
// entries. Entries at odd positions are unlabelled when mixLabels is set.
func Clusters(name string, format ir.Format, n int, mixLabels bool) *ir.Array {
	arr := mustArray(clusterElem(format), name)
	for i := 0; i < n; i++ {
		labelled := !mixLabels || i%2 == 0
		if err := arr.Put(i, withFormat(Cluster(i, labelled), format)); err != nil {
			panic(err)
		}
	}
	return arr
}

// ESDTrack returns a populated ESD track whose fields derive from i.
func ESDTrack(i int) *ir.ESDTrack {
	return &ir.ESDTrack{
		ID:          int32(i),
		Label:       int32(500 + i),
		Status:      0x1 | 0x4,
		Alpha:       0.35,
		X:           3.9,
		Param:       [5]float64{0.1, 0.2, 0.01, 0.5, float64(i+1) * 0.8},
		TPCNcls:     120,
		ITSNcls:     6,
		TPCChi2:     95.5,
		ITSChi2:     4.5,
		TrackLength: 370,
	}
}

// AODTrack returns a populated AOD track whose fields derive from i.
func AODTrack(i int) *ir.AODTrack {
	return &ir.AODTrack{
		ID:            int32(i),
		Label:         int32(500 + i),
		Type:          ir.AODTrackPrimary,
		Charge:        1,
		Momentum:      [3]float64{float64(i) + 0.5, 0.25, 1},
		Position:      [3]float64{0, 0, 0.1},
		Covariance:    []float64{0.01, 0.02, 0.03},
		Chi2PerNDF:    1.2,
		FilterMap:     1 << 4,
		Status:        0x1,
		TPCNcls:       110,
		ITSClusterMap: 0x3f,
	}
}

// Tracks builds a track array of the format's element type with n entries.
func Tracks(name string, format ir.Format, n int) *ir.Array {
	arr := mustArray(trackElem(format), name)
	for i := 0; i < n; i++ {
		var obj ir.Object
		if format == ir.FormatESD {
			obj = ESDTrack(i)
		} else {
			obj = AODTrack(i)
		}
		if err := arr.Put(i, obj); err != nil {
			panic(err)
		}
	}
	return arr
}

// Record builds an event record whose input collections are cs, panicking
// on a name clash.
func Record(cs ...ir.Collection) *event.Record {
	rec := event.NewRecord()
	for _, c := range cs {
		if err := rec.Load(c); err != nil {
			panic(fmt.Sprintf("testutil.Record: %v", err))
		}
	}
	return rec
}

// Handler returns an input handler of the given format whose primary stream
// holds cs.
func Handler(format ir.Format, cs ...ir.Collection) *event.Handler {
	h := event.NewHandler(format)
	h.SetPrimary(Record(cs...))
	return h
}

func withFormat(c *ir.Cluster, format ir.Format) *ir.Cluster {
	c.Format = format
	return c
}

func clusterElem(format ir.Format) ir.ElementType {
	if format == ir.FormatESD {
		return ir.ElemESDCluster
	}
	return ir.ElemAODCluster
}

func trackElem(format ir.Format) ir.ElementType {
	if format == ir.FormatESD {
		return ir.ElemESDTrack
	}
	return ir.ElemAODTrack
}

func mustArray(elemType ir.ElementType, name string) *ir.Array {
	arr, err := ir.NewArray(elemType, name)
	if err != nil {
		panic(err)
	}
	return arr
}
