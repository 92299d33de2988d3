package postgres

import (
	"reflect"
	"sync"

	"github.com/Masterminds/squirrel"
)

// ExtractDBColumns lists the "db" tag names of T in field order, descending into
// embedded structs. Fields tagged "-" are skipped.
//
//	columns := ExtractDBColumns[catalog.Product]()
//	// ["id", "owner_id", "name", "sku", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	meta := metadataOf(t)
	cols := make([]string, 0, len(meta.fields))
	for _, f := range meta.fields {
		cols = append(cols, f.column)
	}
	return cols
}

// fieldInfo locates one tagged field, possibly inside an embedded struct.
type fieldInfo struct {
	index  []int
	column string
}

type typeMetadata struct {
	fields []fieldInfo
}

// typeCache: map[reflect.Type]*typeMetadata
var typeCache sync.Map

func metadataOf(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, meta)
	}
	typeCache.Store(t, meta)
	return meta
}

func collectFields(t reflect.Type, prefix []int, meta *typeMetadata) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int{}, prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, meta)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.fields = append(meta.fields, fieldInfo{index: index, column: tag})
	}
}

// StructToMap converts a struct to a column→value map using "db" tags.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataOf(rv.Type())
	res := make(map[string]any, len(meta.fields))
	for _, f := range meta.fields {
		res[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}

// SetMapFor returns the values of v restricted to cols, ready for squirrel SetMap.
func SetMapFor(v any, cols []string) squirrel.Eq {
	data := StructToMap(v)
	out := make(squirrel.Eq, len(cols))
	for _, col := range cols {
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out
}
