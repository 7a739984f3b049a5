// Package metadata is the side table the container queries to build classes.
//
// A class is a type produced by a constructor function. Marking a constructor
// injectable records the constructed type, its ordered parameter types and any
// per-parameter override tokens:
//
//	table := metadata.New()
//	table.Mark(NewUserService, metadata.Inject(1, DSNToken))
//
// Afterwards the table answers the three questions the resolver asks:
// IsInjectable, ParameterTypes and OverrideToken.
package metadata

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/toutaio/toutago-nasc-injector/token"
)

var errorInterface = reflect.TypeFor[error]()

// Default is the table used by containers that are not given one explicitly.
var Default = New()

// Table stores class metadata keyed by the constructed type.
// It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	classes map[reflect.Type]*Class
}

// New creates an empty table.
func New() *Table {
	return &Table{
		classes: make(map[reflect.Type]*Class),
	}
}

// Option configures a class while it is being marked.
type Option func(*Class) error

// Inject redirects the constructor parameter at index to tok instead of the
// parameter's declared type.
func Inject(index int, tok token.Token) Option {
	return func(c *Class) error {
		return c.setOverride(index, tok)
	}
}

// Mark records ctor as the constructor of its first return type and marks that
// type injectable. Marking the same type again replaces the previous entry.
//
// Supported constructor signatures:
//   - func(...) T
//   - func(...) (T, error)
func (t *Table) Mark(ctor any, opts ...Option) (reflect.Type, error) {
	class, err := parseConstructor(ctor)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(class); err != nil {
			return nil, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.classes[class.typ] = class
	return class.typ, nil
}

// SetOverride adds or replaces the override token for parameter index of an
// already marked type.
func (t *Table) SetOverride(typ reflect.Type, index int, tok token.Token) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	class, ok := t.classes[typ]
	if !ok {
		return &NotMarkedError{Type: typ}
	}

	// Copy so that readers holding the old *Class never see it change.
	updated := class.clone()
	if err := updated.setOverride(index, tok); err != nil {
		return err
	}
	t.classes[typ] = updated
	return nil
}

// Lookup returns the class recorded for typ.
func (t *Table) Lookup(typ reflect.Type) (*Class, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	class, ok := t.classes[typ]
	return class, ok
}

// IsInjectable reports whether typ has been marked.
func (t *Table) IsInjectable(typ reflect.Type) bool {
	if typ == nil {
		return false
	}
	_, ok := t.Lookup(typ)
	return ok
}

// ParameterTypes returns the ordered constructor parameter types of typ.
func (t *Table) ParameterTypes(typ reflect.Type) ([]reflect.Type, bool) {
	class, ok := t.Lookup(typ)
	if !ok {
		return nil, false
	}
	return class.Params(), true
}

// OverrideToken returns the token registered for parameter index of typ.
func (t *Table) OverrideToken(typ reflect.Type, index int) (token.Token, bool) {
	class, ok := t.Lookup(typ)
	if !ok {
		return nil, false
	}
	return class.Override(index)
}

// Len returns the number of marked types.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.classes)
}

// Class describes how to construct one type.
type Class struct {
	typ          reflect.Type
	fn           reflect.Value
	params       []reflect.Type
	returnsError bool
	overrides    map[int]token.Token
}

// Type returns the constructed type.
func (c *Class) Type() reflect.Type {
	return c.typ
}

// NumParams returns the number of constructor parameters.
func (c *Class) NumParams() int {
	return len(c.params)
}

// Param returns the declared type of parameter i.
func (c *Class) Param(i int) reflect.Type {
	return c.params[i]
}

// Params returns a copy of the ordered parameter types.
func (c *Class) Params() []reflect.Type {
	out := make([]reflect.Type, len(c.params))
	copy(out, c.params)
	return out
}

// Override returns the override token for parameter i, if any.
func (c *Class) Override(i int) (token.Token, bool) {
	tok, ok := c.overrides[i]
	return tok, ok
}

// Construct calls the constructor with args, which must already match the
// parameter types. A non-nil error returned by the constructor is returned
// unchanged.
func (c *Class) Construct(args []reflect.Value) (any, error) {
	if len(args) != len(c.params) {
		return nil, fmt.Errorf("constructor for %v takes %d arguments, got %d", c.typ, len(c.params), len(args))
	}

	results := c.fn.Call(args)

	if c.returnsError {
		if errValue := results[1]; !errValue.IsNil() {
			return nil, errValue.Interface().(error)
		}
	}

	return results[0].Interface(), nil
}

func (c *Class) setOverride(index int, tok token.Token) error {
	if tok == nil {
		return fmt.Errorf("override token for parameter %d of %v cannot be nil", index, c.typ)
	}
	if index < 0 || index >= len(c.params) {
		return &ParameterIndexError{Type: c.typ, Index: index, NumParams: len(c.params)}
	}
	if c.overrides == nil {
		c.overrides = make(map[int]token.Token)
	}
	c.overrides[index] = tok
	return nil
}

func (c *Class) clone() *Class {
	out := *c
	out.overrides = make(map[int]token.Token, len(c.overrides))
	for i, tok := range c.overrides {
		out.overrides[i] = tok
	}
	return &out
}

// parseConstructor analyzes a constructor function and extracts metadata.
func parseConstructor(ctor any) (*Class, error) {
	if ctor == nil {
		return nil, &InvalidConstructorError{Reason: "constructor cannot be nil"}
	}

	fnValue := reflect.ValueOf(ctor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, &InvalidConstructorError{Reason: fmt.Sprintf("constructor must be a function, got %v", fnType)}
	}
	if fnValue.IsNil() {
		return nil, &InvalidConstructorError{Reason: "constructor cannot be a nil function"}
	}
	if fnType.IsVariadic() {
		return nil, &InvalidConstructorError{Reason: fmt.Sprintf("constructor %v cannot be variadic", fnType)}
	}

	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 {
		return nil, &InvalidConstructorError{
			Reason: fmt.Sprintf("constructor must return (T) or (T, error), got %d return values", numOut),
		}
	}

	returnType := fnType.Out(0)
	if returnType == errorInterface {
		return nil, &InvalidConstructorError{Reason: "constructor's first return value cannot be error"}
	}

	returnsError := false
	if numOut == 2 {
		if fnType.Out(1) != errorInterface {
			return nil, &InvalidConstructorError{
				Reason: fmt.Sprintf("constructor's second return value must be error, got %v", fnType.Out(1)),
			}
		}
		returnsError = true
	}

	params := make([]reflect.Type, fnType.NumIn())
	for i := range params {
		params[i] = fnType.In(i)
	}

	return &Class{
		typ:          returnType,
		fn:           fnValue,
		params:       params,
		returnsError: returnsError,
	}, nil
}
