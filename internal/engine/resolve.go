package engine

import "github.com/roach88/collcopy/internal/ir"

// UseDefault is the sentinel name requesting the canonical collection name
// for the engine's kind and the run's storage format.
const UseDefault = "usedefault"

// defaultNames holds the canonical collection names per kind and format.
var defaultNames = map[ir.Kind]map[ir.Format]string{
	ir.KindCells: {
		ir.FormatESD: "EMCALCells",
		ir.FormatAOD: "emcalCells",
	},
	ir.KindClusters: {
		ir.FormatESD: "CaloClusters",
		ir.FormatAOD: "caloClusters",
	},
	ir.KindTracks: {
		ir.FormatESD: "Tracks",
		ir.FormatAOD: "tracks",
	},
}

// DefaultName returns the canonical collection name for kind and format.
// Any format other than ESD resolves to the AOD name.
func DefaultName(kind ir.Kind, format ir.Format) (string, error) {
	names, ok := defaultNames[kind]
	if !ok {
		return "", NewUnknownKindError(kind)
	}
	if format == ir.FormatESD {
		return names[ir.FormatESD], nil
	}
	return names[ir.FormatAOD], nil
}

// ResolveName maps the UseDefault sentinel to the canonical name for kind
// and format. Any other name passes through unchanged. The result depends
// only on the arguments.
func ResolveName(kind ir.Kind, name string, format ir.Format) (string, error) {
	if !kind.Valid() {
		return "", NewUnknownKindError(kind)
	}
	if name != UseDefault {
		return name, nil
	}
	return DefaultName(kind, format)
}

// ElementTypeFor returns the record type a destination array of kind must
// hold in the given format. Cells have no element type.
func ElementTypeFor(kind ir.Kind, format ir.Format) (ir.ElementType, error) {
	esd := format == ir.FormatESD
	switch kind {
	case ir.KindClusters:
		if esd {
			return ir.ElemESDCluster, nil
		}
		return ir.ElemAODCluster, nil
	case ir.KindTracks:
		if esd {
			return ir.ElemESDTrack, nil
		}
		return ir.ElemAODTrack, nil
	}
	return "", NewUnknownKindError(kind)
}
