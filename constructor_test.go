package nasc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type BasicConstructorService struct {
	value string
}

func NewBasicService() *BasicConstructorService {
	return &BasicConstructorService{value: "basic"}
}

type ConstructorServiceImpl struct {
	logger Logger
	db     Database
}

func NewServiceWithDeps(logger Logger, db Database) *ConstructorServiceImpl {
	return &ConstructorServiceImpl{logger: logger, db: db}
}

func NewServiceWithError(logger Logger) (*ConstructorServiceImpl, error) {
	return &ConstructorServiceImpl{logger: logger}, nil
}

// Cyclic graphs

type SelfDependent struct{}

func NewSelfDependent(*SelfDependent) *SelfDependent { return &SelfDependent{} }

type CircularA struct{ b *CircularB }
type CircularB struct{ a *CircularA }

func NewCircularA(b *CircularB) *CircularA { return &CircularA{b: b} }
func NewCircularB(a *CircularA) *CircularB { return &CircularB{a: a} }

type ChainA struct{}
type ChainB struct{}
type ChainC struct{}

func NewChainA(_ Logger, _ *ChainB) *ChainA { return &ChainA{} }
func NewChainB(_ *ChainC) *ChainB          { return &ChainB{} }
func NewChainC(_ Logger, _ *ChainA) *ChainC { return &ChainC{} }

func TestConstruct_NoParams(t *testing.T) {
	container := newContainer(t)
	mustMark(t, container, NewBasicService)

	service, err := Get[*BasicConstructorService](container)
	require.NoError(t, err)
	assert.Equal(t, "basic", service.value)
}

func TestConstruct_MultipleDependencies(t *testing.T) {
	container := newContainer(t)
	mustMark(t, container, NewConsoleLogger)
	mustMark(t, container, NewServiceWithDeps)

	db := &MockDB{}
	container.MustRegister(
		Bind[Logger, *ConsoleLogger](),
		ValueProvider(Type[Database](), db),
	)

	service, err := Get[*ConstructorServiceImpl](container)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleLogger{}, service.logger)
	assert.Same(t, db, service.db)
}

func TestConstruct_WithErrorReturn(t *testing.T) {
	container := newContainer(t)
	mustMark(t, container, NewConsoleLogger)
	mustMark(t, container, NewServiceWithError)
	container.MustRegister(Bind[Logger, *ConsoleLogger]())

	service, err := Get[*ConstructorServiceImpl](container)
	require.NoError(t, err)
	assert.NotNil(t, service.logger)
}

func TestConstruct_ParametersResolvedInOrder(t *testing.T) {
	type Ordered struct{}

	var order []string
	first := NewInjectionToken("first")
	second := NewInjectionToken("second")

	container := newContainer(t)
	mustMark(t, container, func(string, string) *Ordered { return &Ordered{} }, Inject(0, first), Inject(1, second))
	container.MustRegister(
		FactoryProvider(first, func() (any, error) { order = append(order, "first"); return "1", nil }),
		FactoryProvider(second, func() (any, error) { order = append(order, "second"); return "2", nil }),
	)

	_, err := Get[*Ordered](container)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestConstruct_StopsAtFirstFailingParameter(t *testing.T) {
	type Stopped struct{}

	calls := 0
	boom := errors.New("boom")
	first := NewInjectionToken("first")
	second := NewInjectionToken("second")

	container := newContainer(t)
	mustMark(t, container, func(string, string) *Stopped { return &Stopped{} }, Inject(0, first), Inject(1, second))
	container.MustRegister(
		FactoryProvider(first, func() (any, error) { return nil, boom }),
		FactoryProvider(second, func() (any, error) { calls++; return "2", nil }),
	)

	_, err := Get[*Stopped](container)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, calls)
}

func TestConstruct_ClassProviderForOtherToken(t *testing.T) {
	container := newContainer(t)
	mustMark(t, container, NewBasicService)
	basic := NewInjectionToken("basic")

	require.NoError(t, container.Register(ClassProvider(basic, reflect.TypeFor[*BasicConstructorService]())))

	instance, err := container.Resolve(basic)
	require.NoError(t, err)
	assert.IsType(t, &BasicConstructorService{}, instance)
}

func TestCircularDependency_Self(t *testing.T) {
	container := newContainer(t)
	mustMark(t, container, NewSelfDependent)

	_, err := container.Resolve(Type[*SelfDependent]())

	var recursive *RecursiveDependencyError
	require.ErrorAs(t, err, &recursive)
	assert.Equal(t, "*nasc.SelfDependent", recursive.Type)
	assert.Equal(t, 0, recursive.Index)
	assert.Equal(t, []string{"*nasc.SelfDependent", "*nasc.SelfDependent"}, recursive.Path)
}

func TestCircularDependency_Direct(t *testing.T) {
	container := newContainer(t)
	mustMark(t, container, NewCircularA)
	mustMark(t, container, NewCircularB)

	_, err := container.Resolve(Type[*CircularA]())

	var recursive *RecursiveDependencyError
	require.ErrorAs(t, err, &recursive)
	assert.Equal(t, "*nasc.CircularA", recursive.Type)
	assert.Equal(t, 0, recursive.Index)
	assert.Equal(t, []string{"*nasc.CircularA", "*nasc.CircularB", "*nasc.CircularA"}, recursive.Path)
	assert.Equal(t,
		"recursive dependency detected in constructor for type *nasc.CircularA with parameter at index 0 "+
			"(*nasc.CircularA -> *nasc.CircularB -> *nasc.CircularA)",
		err.Error(),
	)

	_, err = container.Resolve(Type[*CircularB]())

	recursive = nil
	require.ErrorAs(t, err, &recursive)
	assert.Equal(t, "*nasc.CircularB", recursive.Type)
	assert.Equal(t, 0, recursive.Index)
	assert.Equal(t, []string{"*nasc.CircularB", "*nasc.CircularA", "*nasc.CircularB"}, recursive.Path)
}

func TestCircularDependency_IndirectChain(t *testing.T) {
	container := newContainer(t)
	mustMark(t, container, NewConsoleLogger)
	mustMark(t, container, NewChainA)
	mustMark(t, container, NewChainB)
	mustMark(t, container, NewChainC)
	container.MustRegister(Bind[Logger, *ConsoleLogger]())

	_, err := container.Resolve(Type[*ChainB]())

	var recursive *RecursiveDependencyError
	require.ErrorAs(t, err, &recursive)
	assert.Equal(t, "*nasc.ChainB", recursive.Type)
	assert.Equal(t, 0, recursive.Index)
	assert.Equal(t, []string{"*nasc.ChainB", "*nasc.ChainC", "*nasc.ChainA", "*nasc.ChainB"}, recursive.Path)

	// Entering the same cycle elsewhere reports the parameter that closes it.
	_, err = container.Resolve(Type[*ChainA]())
	require.ErrorAs(t, err, &recursive)
	assert.Equal(t, "*nasc.ChainA", recursive.Type)
	assert.Equal(t, 1, recursive.Index)
}

func TestCircularDependency_ThroughClassProvider(t *testing.T) {
	type Node struct{}

	next := NewInjectionToken("next")
	container := newContainer(t)
	mustMark(t, container, func(any) *Node { return &Node{} }, Inject(0, next))
	container.MustRegister(ClassProvider(next, reflect.TypeFor[*Node]()))

	_, err := container.Resolve(next)

	var recursive *RecursiveDependencyError
	require.ErrorAs(t, err, &recursive)
	assert.Equal(t, "*nasc.Node", recursive.Type)
}

func TestCircularDependency_DoesNotPoisonContainer(t *testing.T) {
	container := newContainer(t)
	mustMark(t, container, NewCircularA)
	mustMark(t, container, NewCircularB)

	_, err := container.Resolve(Type[*CircularA]())
	require.Error(t, err)

	// Breaking the cycle with a registered value makes both resolvable.
	container.MustRegister(ValueProvider(Type[*CircularA](), &CircularA{}))

	b, err := Get[*CircularB](container)
	require.NoError(t, err)
	assert.NotNil(t, b.a)
}

func TestDiamondDependency_IsNotACycle(t *testing.T) {
	type Shared struct{}
	type Left struct{ s *Shared }
	type Right struct{ s *Shared }
	type Top struct {
		l *Left
		r *Right
	}

	container := newContainer(t)
	mustMark(t, container, func() *Shared { return &Shared{} })
	mustMark(t, container, func(s *Shared) *Left { return &Left{s: s} })
	mustMark(t, container, func(s *Shared) *Right { return &Right{s: s} })
	mustMark(t, container, func(l *Left, r *Right) *Top { return &Top{l: l, r: r} })

	top, err := Get[*Top](container)
	require.NoError(t, err)
	assert.NotNil(t, top.l.s)
	assert.NotNil(t, top.r.s)
}

func TestRepeatedTypeInSiblings_IsNotACycle(t *testing.T) {
	type Twice struct{ a, b *BasicConstructorService }

	container := newContainer(t)
	mustMark(t, container, NewBasicService)
	mustMark(t, container, func(a, b *BasicConstructorService) *Twice { return &Twice{a: a, b: b} })

	twice, err := Get[*Twice](container)
	require.NoError(t, err)
	assert.NotSame(t, twice.a, twice.b)
}

func TestConcurrentResolutionsDoNotShareCycleState(t *testing.T) {
	container := newContainer(t)
	mustMark(t, container, NewConsoleLogger)
	mustMark(t, container, NewServiceWithDeps)
	container.MustRegister(
		Bind[Logger, *ConsoleLogger](),
		ValueProvider(Type[Database](), &MockDB{}),
	)

	done := make(chan error, 50)
	for range 50 {
		go func() {
			_, err := Get[*ConstructorServiceImpl](container)
			done <- err
		}()
	}
	for range 50 {
		assert.NoError(t, <-done)
	}
}
