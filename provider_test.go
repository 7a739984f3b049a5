package nasc

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toutaio/toutago-nasc-injector/metadata"
)

type defaultTableService struct {
	name string
}

type defaultTableConsumer struct {
	service *defaultTableService
}

var serviceName = NewInjectionToken("service.name")

var (
	_ = MustInjectable(func(name string) *defaultTableService {
		return &defaultTableService{name: name}
	}, Inject(0, serviceName))
	_ = MustInjectable(func(s *defaultTableService) *defaultTableConsumer {
		return &defaultTableConsumer{service: s}
	})
)

func TestInjectable_DefaultTable(t *testing.T) {
	assert.True(t, metadata.Default.IsInjectable(reflect.TypeFor[*defaultTableService]()))

	container := New()
	container.MustRegister(ValueProvider(serviceName, "default"))

	consumer, err := Get[*defaultTableConsumer](container)
	require.NoError(t, err)
	assert.Equal(t, "default", consumer.service.name)
}

func TestInjectable_Errors(t *testing.T) {
	_, err := Injectable(nil)
	assert.Error(t, err)

	assert.Panics(t, func() { MustInjectable(42) })
}

func TestProviderConstructors(t *testing.T) {
	tok := NewInjectionToken("tok")

	value := ValueProvider(tok, 1)
	assert.Equal(t, KindValue, value.Kind())
	assert.Same(t, tok, value.Provide())

	factory := FactoryProvider(tok, func() (any, error) { return nil, nil })
	assert.Equal(t, KindFactory, factory.Kind())

	class := ClassProvider(tok, reflect.TypeFor[*ConsoleLogger]())
	assert.Equal(t, KindClass, class.Kind())
	assert.Equal(t, reflect.TypeFor[*ConsoleLogger](), class.Class())

	self := ClassOf[*ConsoleLogger]()
	assert.Equal(t, Type[*ConsoleLogger](), self.Provide())
	assert.Equal(t, reflect.TypeFor[*ConsoleLogger](), self.Class())

	bound := Bind[Logger, *ConsoleLogger]()
	assert.Equal(t, Type[Logger](), bound.Provide())
	assert.Equal(t, reflect.TypeFor[*ConsoleLogger](), bound.Class())
}

func TestType(t *testing.T) {
	assert.Equal(t, Type[*ConsoleLogger](), Type[*ConsoleLogger]())
	assert.NotEqual(t, Type[*ConsoleLogger](), Type[ConsoleLogger]())
	assert.Equal(t, "nasc.Logger", Type[Logger]().Name())
}
