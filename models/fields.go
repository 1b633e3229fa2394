package models

import (
	"reflect"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx/reflectx"
)

// Fields частичное обновление строки: имя колонки -> новое значение
type Fields map[string]any

// Mapper сопоставляет db-теги полям структур, общий для моделей и хранилищ
var Mapper = reflectx.NewMapperFunc("db", strings.ToLower)

// Merge возвращает новую карту, поля other перекрывают f
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Columns отсортированный список колонок (стабильный порядок для SQL)
func (f Fields) Columns() []string {
	cols := make([]string, 0, len(f))
	for k := range f {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// FieldsOf собирает Fields из patch-структуры: учитываются только ненулевые указатели
func FieldsOf(patch any) Fields {
	out := Fields{}
	v := reflect.Indirect(reflect.ValueOf(patch))
	if v.Kind() != reflect.Struct {
		return out
	}
	tm := Mapper.TypeMap(v.Type())
	for name, fi := range tm.Names {
		if strings.Contains(name, ".") || len(fi.Index) != 1 {
			continue
		}
		fv := reflectx.FieldByIndexesReadOnly(v, fi.Index)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		out[name] = fv.Elem().Interface()
	}
	return out
}
