package amf

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/stewi1014/amf/encio"
)

var (
	// ErrAlreadyRegistered is returned if a class name or type is already registered.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrNotRegistered is returned if a class name has not been registered.
	ErrNotRegistered = errors.New("not registered")
)

// Accessor selects how struct members are read and written.
type Accessor uint8

const (
	// ReflectAccessor walks reflect field indexes on every access.
	ReflectAccessor Accessor = iota

	// OffsetAccessor precomputes field offsets and accesses members through unsafe pointers.
	// It is faster for large structs and deeply embedded fields.
	OffsetAccessor
)

// RegistryConfig is configuration for a Registry.
type RegistryConfig struct {
	// StructTag is the struct tag used to rename or skip members. Defaults to "amf".
	//
	//	Field int `amf:"name"`          // member "name"
	//	Field int `amf:"-"`             // skipped
	//	Field int `amf:"name,readonly"` // written, but ignored when read
	StructTag string

	// Accessor selects the struct member access strategy.
	Accessor Accessor
}

func (c *RegistryConfig) copyAndFill() RegistryConfig {
	var config RegistryConfig
	if c != nil {
		config = *c
	}
	if config.StructTag == "" {
		config.StructTag = "amf"
	}
	return config
}

// DefaultRegistry is the Registry used when Config.Registry is nil.
var DefaultRegistry = NewRegistry(nil)

// Register registers prototype's type under className in DefaultRegistry.
// It is a shortcut for DefaultRegistry.Register()
func Register(className string, prototype any) error {
	return DefaultRegistry.Register(className, prototype)
}

// NewRegistry returns a new Registry, with ArrayCollection and ObjectProxy registered.
func NewRegistry(config *RegistryConfig) *Registry {
	reg := &Registry{
		config: config.copyAndFill(),
	}

	for name, prototype := range builtin {
		if err := reg.Register(name, prototype); err != nil {
			panic(err)
		}
	}

	return reg
}

// builtin classes registered with every Registry.
var builtin = map[string]any{
	"flex.messaging.io.ArrayCollection": ArrayCollection{},
	"flex.messaging.io.ObjectProxy":     ObjectProxy{},
}

// Registry maps class names to Go types and Go types to TypeAdapters.
// It also owns the trait cache and the cache of write strategies.
//
// It is safe for concurrent use. Lookups never block; registration is expected to happen once, before encoding.
// Registries are values to be constructed and passed in Config; DefaultRegistry is only the default.
type Registry struct {
	config RegistryConfig

	registerMutex sync.Mutex
	types         cowMap[string, reflect.Type]
	names         cowMap[reflect.Type, string]

	explicit   cowMap[reflect.Type, TypeAdapter]
	adapters   cowMap[reflect.Type, TypeAdapter]
	strategies cowMap[reflect.Type, *strategy]

	traits TraitCache
}

// Register maps className to the type of prototype, which may be a reflect.Type.
// Pointer types are registered as their element type; decoded objects are always pointers to it.
func (reg *Registry) Register(className string, prototype any) error {
	ty, ok := prototype.(reflect.Type)
	if !ok {
		ty = reflect.TypeOf(prototype)
	}
	if ty == nil {
		return encio.NewError(encio.ErrNilPointer, "cannot register nil", 0)
	}
	if className == "" {
		return encio.NewError(encio.ErrBadType, fmt.Sprintf("cannot register %v with an empty class name", ty), 0)
	}
	ty = elemType(ty)

	reg.registerMutex.Lock()
	defer reg.registerMutex.Unlock()

	if oty, ok := reg.types.load(className); ok {
		if oty == ty {
			return encio.NewError(ErrAlreadyRegistered, fmt.Sprintf("type %v as %v", ty, className), 0)
		}
		return encio.NewError(ErrAlreadyRegistered, fmt.Sprintf("%v is registered to %v, cannot register %v", className, oty, ty), 0)
	}
	if oname, ok := reg.names.load(ty); ok {
		return encio.NewError(ErrAlreadyRegistered, fmt.Sprintf("%v is registered as %v, cannot register as %v", ty, oname, className), 0)
	}

	reg.types.loadOrStore(className, ty)
	reg.names.loadOrStore(ty, className)
	return nil
}

// RegisterAdapter sets the TypeAdapter for the type of prototype, which may be a reflect.Type.
// It must be called before values of the type are first encoded or decoded.
func (reg *Registry) RegisterAdapter(prototype any, adapter TypeAdapter) error {
	ty, ok := prototype.(reflect.Type)
	if !ok {
		ty = reflect.TypeOf(prototype)
	}
	if ty == nil || adapter == nil {
		return encio.NewError(encio.ErrNilPointer, "cannot register nil adapter or type", 0)
	}
	ty = elemType(ty)

	if _, loaded := reg.explicit.loadOrStore(ty, adapter); loaded {
		return encio.NewError(ErrAlreadyRegistered, fmt.Sprintf("adapter for %v", ty), 0)
	}
	return nil
}

// Resolve returns the type registered as className.
func (reg *Registry) Resolve(className string) (reflect.Type, bool) {
	return reg.types.load(className)
}

// ClassName returns the class name of ty.
// Registered types use their registered name; other named types use their package path and name.
// Unnamed types have no class name.
func (reg *Registry) ClassName(ty reflect.Type) string {
	ty = elemType(ty)
	if name, ok := reg.names.load(ty); ok {
		return name
	}
	if ty.Name() == "" {
		return ""
	}
	if ty.PkgPath() == "" {
		return ty.Name()
	}
	return ty.PkgPath() + "." + ty.Name()
}

// Traits returns the registry's trait cache.
func (reg *Registry) Traits() *TraitCache {
	return &reg.traits
}

// AdapterFor returns the TypeAdapter for ty, or nil if ty cannot be written as an object.
func (reg *Registry) AdapterFor(ty reflect.Type) TypeAdapter {
	ty = elemType(ty)
	if a, ok := reg.explicit.load(ty); ok {
		return a
	}

	a, _ := reg.adapters.computeIfAbsent(ty, func() (TypeAdapter, error) {
		return reg.newAdapter(ty), nil
	})
	return a
}

func (reg *Registry) newAdapter(ty reflect.Type) TypeAdapter {
	ptrt := reflect.PointerTo(ty)
	switch {
	case ty == objectType:
		return objectAdapter{reg: reg}
	case ptrt.Implements(externalizableType):
		return externalizableAdapter{reg: reg, ty: ty}
	case ty.Implements(errorType) || ptrt.Implements(errorType):
		return newErrorAdapter(reg, ty)
	case ty.Kind() == reflect.Struct:
		return newStructAdapter(reg, ty)
	default:
		return nil
	}
}

// ClassDefinition returns the class definition of v.
func (reg *Registry) ClassDefinition(v any) (*ClassDefinition, error) {
	if v == nil {
		return nil, encio.NewError(encio.ErrNilPointer, "nil has no class definition", 0)
	}
	a := reg.AdapterFor(reflect.TypeOf(v))
	if a == nil {
		return nil, encio.NewError(encio.ErrNoSerializer, fmt.Sprintf("%T has no class definition", v), 0)
	}
	return a.ClassDefinition(v)
}

// New returns a new instance of the type registered as className, along with its adapter.
func (reg *Registry) New(className string) (any, TypeAdapter, error) {
	ty, ok := reg.Resolve(className)
	if !ok {
		return nil, nil, encio.NewError(ErrNotRegistered, className, 0)
	}
	a := reg.AdapterFor(ty)
	if a == nil {
		return nil, nil, encio.NewError(encio.ErrNoSerializer, fmt.Sprintf("%v is registered as %v but has no adapter", ty, className), 0)
	}
	return a.New(), a, nil
}

func elemType(ty reflect.Type) reflect.Type {
	if ty.Kind() == reflect.Pointer {
		return ty.Elem()
	}
	return ty
}
