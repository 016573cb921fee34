package cfgeom

import (
	"encoding/binary"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
)

// fgbIndexColumn holds each feature's position in the container. Indexed
// FlatGeobuf files store features in spatial order, so the reader sorts on
// this column to restore the write order.
const fgbIndexColumn = "cf_index"

// indexColumns returns the column schema written with every container.
func indexColumns(builder *flatbuffers.Builder) []*writer.Column {
	col := writer.NewColumn(builder)
	col.SetName(fgbIndexColumn)
	col.SetTitle(fgbIndexColumn) // Set title to match name for JS library compatibility
	col.SetType(flattypes.ColumnTypeUInt)
	col.SetNullable(false)
	return []*writer.Column{col}
}

// encodeIndex encodes the properties of feature i.
// The format is: [2-byte column index][value bytes].
func encodeIndex(i int) []byte {
	b := make([]byte, 6)
	binary.LittleEndian.PutUint16(b[:2], 0)
	binary.LittleEndian.PutUint32(b[2:], uint32(i))
	return b
}

// fgbColumn is the part of a header column needed to walk properties.
type fgbColumn struct {
	name string
	typ  flattypes.ColumnType
}

func headerColumns(header *flattypes.Header) []fgbColumn {
	cols := make([]fgbColumn, 0, header.ColumnsLength())
	for i := 0; i < header.ColumnsLength(); i++ {
		var col flattypes.Column
		if !header.Columns(&col, i) {
			break
		}
		cols = append(cols, fgbColumn{name: string(col.Name()), typ: col.Type()})
	}
	return cols
}

// featureIndex returns the cf_index property of a feature, or false when
// the feature has no such property.
func featureIndex(f *flattypes.Feature, cols []fgbColumn) (int, bool) {
	propsLen := f.PropertiesLength()
	if propsLen == 0 || len(cols) == 0 {
		return 0, false
	}
	return propertyIndex(f.PropertiesBytes(), cols)
}

// propertyIndex walks encoded properties, each a 2-byte column index
// followed by the value, until it reaches the cf_index column. Other
// columns are skipped by their wire width.
func propertyIndex(data []byte, cols []fgbColumn) (int, bool) {
	offset := 0
	for offset+2 <= len(data) {
		ci := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
		if ci >= len(cols) {
			return 0, false
		}
		col := cols[ci]
		n, ok := propertyWidth(data[offset:], col.typ)
		if !ok {
			return 0, false
		}
		if col.name == fgbIndexColumn {
			return indexValue(data[offset:offset+n], col.typ)
		}
		offset += n
	}
	return 0, false
}

// propertyWidth returns the encoded size of a value of type t at the start
// of data. Strings, JSON, date-times and binaries carry a uint32 length
// prefix.
func propertyWidth(data []byte, t flattypes.ColumnType) (int, bool) {
	var n int
	switch t {
	case flattypes.ColumnTypeBool, flattypes.ColumnTypeByte, flattypes.ColumnTypeUByte:
		n = 1
	case flattypes.ColumnTypeShort, flattypes.ColumnTypeUShort:
		n = 2
	case flattypes.ColumnTypeInt, flattypes.ColumnTypeUInt, flattypes.ColumnTypeFloat:
		n = 4
	case flattypes.ColumnTypeLong, flattypes.ColumnTypeULong, flattypes.ColumnTypeDouble:
		n = 8
	case flattypes.ColumnTypeString, flattypes.ColumnTypeJson,
		flattypes.ColumnTypeDateTime, flattypes.ColumnTypeBinary:
		if len(data) < 4 {
			return 0, false
		}
		n = 4 + int(binary.LittleEndian.Uint32(data))
	default:
		return 0, false
	}
	return n, n <= len(data)
}

func indexValue(b []byte, t flattypes.ColumnType) (int, bool) {
	switch t {
	case flattypes.ColumnTypeUInt:
		return int(binary.LittleEndian.Uint32(b)), true
	case flattypes.ColumnTypeInt:
		return int(int32(binary.LittleEndian.Uint32(b))), true
	case flattypes.ColumnTypeULong, flattypes.ColumnTypeLong:
		return int(int64(binary.LittleEndian.Uint64(b))), true
	}
	return 0, false
}
