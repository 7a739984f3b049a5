package nasc

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/toutaio/toutago-nasc-injector/metadata"
	"github.com/toutaio/toutago-nasc-injector/token"
)

// frame is one class under construction and the parameter it is resolving.
type frame struct {
	typ   reflect.Type
	index int
}

// resolution is the state of a single Resolve call. It is never shared
// between calls.
type resolution struct {
	ctx   context.Context
	stack []frame
}

// enter pushes typ onto the construction stack. If typ is already being
// constructed the dependency graph loops back on itself.
func (r *resolution) enter(typ reflect.Type) error {
	for i, f := range r.stack {
		if f.typ != typ {
			continue
		}

		path := make([]string, 0, len(r.stack)-i+1)
		for _, g := range r.stack[i:] {
			path = append(path, token.Of(g.typ).Name())
		}
		path = append(path, token.Of(typ).Name())

		return &RecursiveDependencyError{
			Type:  token.Of(typ).Name(),
			Index: f.index,
			Path:  path,
		}
	}

	r.stack = append(r.stack, frame{typ: typ, index: -1})
	return nil
}

func (r *resolution) leave() {
	r.stack = r.stack[:len(r.stack)-1]
}

// at records that the innermost class is resolving parameter i.
func (r *resolution) at(i int) {
	r.stack[len(r.stack)-1].index = i
}

// construct builds typ by resolving each constructor parameter through the
// full resolution algorithm and calling the constructor.
func (c *Container) construct(r *resolution, tok Token, typ reflect.Type) (instance any, err error) {
	if err := r.enter(typ); err != nil {
		return nil, err
	}
	defer r.leave()

	class, ok := c.metadata.Lookup(typ)
	if !ok {
		return nil, &NotInjectableError{Provide: token.Name(tok), Class: token.Of(typ).Name()}
	}

	className := token.Of(typ).Name()
	ctx, span := c.tracer.Start(r.ctx, "nasc.construct",
		trace.WithAttributes(
			attribute.String("nasc.class", className),
			attribute.Int("nasc.params", class.NumParams()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	parent := r.ctx
	r.ctx = ctx
	defer func() { r.ctx = parent }()

	args := make([]reflect.Value, class.NumParams())
	for i := range args {
		r.at(i)

		param := class.Param(i)
		var effective Token = token.Of(param)
		if override, ok := class.Override(i); ok {
			effective = override
		}

		value, _, err := c.resolve(r, effective)
		if err != nil {
			return nil, err
		}

		arg, err := argumentValue(value, param)
		if err != nil {
			return nil, &ResolutionError{
				Token:   className,
				Context: fmt.Sprintf("parameter %d (%s)", i, token.Name(effective)),
				Cause:   err,
			}
		}
		args[i] = arg
	}

	return c.invokeConstructor(className, class, args)
}

// invokeConstructor calls the constructor, converting errors and panics into
// ResolutionError.
func (c *Container) invokeConstructor(className string, class *metadata.Class, args []reflect.Value) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			instance = nil
			err = &ResolutionError{
				Token:   className,
				Context: "constructor panicked",
				Cause:   fmt.Errorf("%w: %v", ErrPanic, rec),
			}
		}
	}()

	instance, err = class.Construct(args)
	if err != nil {
		return nil, &ResolutionError{Token: className, Context: "constructor returned error", Cause: err}
	}
	return instance, nil
}

// argumentValue converts a resolved dependency into a call argument for param.
// A nil dependency becomes the zero value of param.
func argumentValue(value any, param reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(param), nil
	}

	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(param) {
		return reflect.Value{}, fmt.Errorf("%w: %v is not assignable to %v", ErrArgumentType, v.Type(), param)
	}
	return v, nil
}
