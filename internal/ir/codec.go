package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encoded is the storage form of a collection.
// Payload holds the content only; name and title travel alongside it so that
// two collections with identical contents produce identical payloads.
type Encoded struct {
	Name        string
	Title       string
	Kind        Kind
	ElementType ElementType
	Format      Format
	Entries     int
	Payload     []byte
}

type cellsPayload struct {
	CellType CellType `json:"cell_type"`
	Cells    []Cell   `json:"cells"`
}

// MarshalCollection encodes a collection for storage.
func MarshalCollection(c Collection) (Encoded, error) {
	switch coll := c.(type) {
	case *CaloCells:
		cells := coll.cells
		if cells == nil {
			cells = []Cell{}
		}
		payload, err := marshalJSON(cellsPayload{CellType: coll.cellType, Cells: cells})
		if err != nil {
			return Encoded{}, fmt.Errorf("marshal cells %q: %w", coll.name, err)
		}
		return Encoded{
			Name:    coll.name,
			Title:   coll.title,
			Kind:    KindCells,
			Format:  coll.format,
			Entries: len(coll.cells),
			Payload: payload,
		}, nil
	case *Array:
		items := make([]any, len(coll.items))
		for i, obj := range coll.items {
			if obj != nil {
				items[i] = obj
			}
		}
		payload, err := marshalJSON(items)
		if err != nil {
			return Encoded{}, fmt.Errorf("marshal array %q: %w", coll.name, err)
		}
		return Encoded{
			Name:        coll.name,
			Kind:        coll.Kind(),
			ElementType: coll.elemType,
			Format:      coll.elemType.Format(),
			Entries:     coll.Entries(),
			Payload:     payload,
		}, nil
	case nil:
		return Encoded{}, fmt.Errorf("marshal collection: nil collection")
	default:
		return Encoded{}, fmt.Errorf("marshal collection %q: unsupported type %T", c.Name(), c)
	}
}

// UnmarshalCollection rebuilds a collection from its storage form.
func UnmarshalCollection(enc Encoded) (Collection, error) {
	switch enc.Kind {
	case KindCells:
		var p cellsPayload
		if err := json.Unmarshal(enc.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal cells %q: %w", enc.Name, err)
		}
		cells := NewCaloCells(enc.Name, enc.Title, enc.Format, p.CellType)
		cells.cells = p.Cells
		return cells, nil
	case KindClusters, KindTracks:
		if enc.ElementType.Kind() != enc.Kind {
			return nil, fmt.Errorf("unmarshal array %q: element type %q does not hold %s", enc.Name, enc.ElementType, enc.Kind)
		}
		arr, err := NewArray(enc.ElementType, enc.Name)
		if err != nil {
			return nil, err
		}
		var raw []json.RawMessage
		if err := json.Unmarshal(enc.Payload, &raw); err != nil {
			return nil, fmt.Errorf("unmarshal array %q: %w", enc.Name, err)
		}
		arr.Reset(len(raw))
		for i, item := range raw {
			if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
				continue
			}
			obj := arr.New(i)
			if err := json.Unmarshal(item, obj); err != nil {
				return nil, fmt.Errorf("unmarshal array %q[%d]: %w", enc.Name, i, err)
			}
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unmarshal collection %q: unknown kind %s", enc.Name, enc.Kind)
}

// marshalJSON encodes without HTML escaping and without a trailing newline.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
