// Package mapping resolves a typed data object to its table key in the
// mapping registry. Types declare their key either by implementing Mapped
// or through an explicit Register call at startup; declaring both is an
// error, as is declaring neither.
package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/sqlbridge/sqlbridge/pkg/config"
	"github.com/sqlbridge/sqlbridge/pkg/errcat"
)

// Mapped is the declarative metadata carrier: a mapped type returns the
// table key identifying its property-to-column map.
type Mapped interface {
	TableKey() string
}

// Resolver validates declared table keys against the mapping registry.
// Read-only after construction; Register calls belong in startup code.
type Resolver struct {
	reg    *config.Registry
	manual map[reflect.Type]string
}

// NewResolver builds a resolver over the given registry.
func NewResolver(reg *config.Registry) *Resolver {
	return &Resolver{
		reg:    reg,
		manual: make(map[reflect.Type]string),
	}
}

// Register declares a table key for a type that cannot carry the Mapped
// method. prototype may be a value or pointer of the type.
func (r *Resolver) Register(prototype any, tableKey string) {
	r.manual[baseType(prototype)] = tableKey
}

// ResolveTableKey returns the normalized table key declared by obj's type.
// Exactly one declaration must exist and it must name a table present in
// the mapping registry.
func (r *Resolver) ResolveTableKey(obj any) (string, error) {
	if obj == nil {
		return "", errcat.New("TYPE_NOT_MAPPED", "nil object")
	}

	typeName := baseType(obj).String()

	var key string
	declared := 0
	if m, ok := obj.(Mapped); ok {
		key = m.TableKey()
		declared++
	}
	if k, ok := r.manual[baseType(obj)]; ok {
		key = k
		declared++
	}

	switch {
	case declared == 0:
		return "", errcat.New("TYPE_NOT_MAPPED", typeName)
	case declared > 1:
		return "", errcat.New("TYPE_MAPPED_MULTIPLE_TIMES", typeName)
	}

	if strings.TrimSpace(key) == "" {
		return "", errcat.New("EMPTY_MAPPING_KEY", typeName)
	}

	normalized := strings.ToLower(key)
	if !r.reg.HasTable(normalized) {
		return "", errcat.New("UNKNOWN_MAPPING_KEY",
			fmt.Sprintf("%s declares table %q", typeName, key))
	}
	return normalized, nil
}

// Columns resolves obj's table key and returns its property-to-column map.
func (r *Resolver) Columns(obj any) (map[string]string, error) {
	key, err := r.ResolveTableKey(obj)
	if err != nil {
		return nil, err
	}
	cols, _ := r.reg.Mapping(key)
	return cols, nil
}

func baseType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
