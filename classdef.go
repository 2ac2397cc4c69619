package amf

import (
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// ClassDefinition describes how an object is laid out on the wire; AMF3 calls it a trait.
// Members are written in order, and the order is part of the wire contract once a definition has been sent.
// A definition must not be modified after it is first used.
type ClassDefinition struct {
	// ClassName is empty for anonymous objects.
	ClassName string

	// Members are the sealed member names. Externalizable definitions have none.
	Members []string

	// Externalizable objects write and read their own payload.
	Externalizable bool

	// Dynamic objects are followed by a tail of name-value pairs.
	Dynamic bool
}

// anonymousDefinition is the definition of every untyped dynamic object.
var anonymousDefinition = &ClassDefinition{Dynamic: true}

// IsTyped reports whether the definition has a class name.
func (cd *ClassDefinition) IsTyped() bool {
	return cd.ClassName != ""
}

// Equal reports whether cd and other describe the same wire layout.
func (cd *ClassDefinition) Equal(other *ClassDefinition) bool {
	if cd == other {
		return true
	}
	if cd == nil || other == nil {
		return false
	}
	if cd.ClassName != other.ClassName ||
		cd.Externalizable != other.Externalizable ||
		cd.Dynamic != other.Dynamic ||
		len(cd.Members) != len(other.Members) {
		return false
	}
	for i := range cd.Members {
		if cd.Members[i] != other.Members[i] {
			return false
		}
	}
	return true
}

// Fingerprint returns a hash of the definition's wire layout.
// Equal definitions have equal fingerprints.
func (cd *ClassDefinition) Fingerprint() uint64 {
	h := murmur3.New64()
	var buff [4]byte

	write := func(s string) {
		binary.BigEndian.PutUint32(buff[:], uint32(len(s)))
		h.Write(buff[:])
		h.Write([]byte(s))
	}

	write(cd.ClassName)
	var flags byte
	if cd.Externalizable {
		flags |= 1
	}
	if cd.Dynamic {
		flags |= 2
	}
	h.Write([]byte{flags})
	for _, m := range cd.Members {
		write(m)
	}

	return h.Sum64()
}

// header returns the inline trait header; member count, dynamic and externalizable flags, and the inline bits.
func (cd *ClassDefinition) header() uint32 {
	h := uint32(len(cd.Members))<<4 | 0x03
	if cd.Dynamic {
		h |= 0x08
	}
	if cd.Externalizable {
		h |= 0x04
	}
	return h
}

func (cd *ClassDefinition) String() string {
	var flags []string
	if cd.Dynamic {
		flags = append(flags, "dynamic")
	}
	if cd.Externalizable {
		flags = append(flags, "externalizable")
	}
	name := cd.ClassName
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%v%v%v", name, flags, cd.Members)
}

// TraitCache is a concurrent cache of class definitions, keyed by class name.
// Definitions are built once per class and shared by every codec using the cache.
type TraitCache struct {
	defs cowMap[string, *ClassDefinition]
}

// Load returns the cached definition for className.
func (tc *TraitCache) Load(className string) (*ClassDefinition, bool) {
	return tc.defs.load(className)
}

// GetOrBuild returns the cached definition for className, calling build and caching its result if there is none.
// Concurrent callers racing on the same class converge on the first stored definition.
func (tc *TraitCache) GetOrBuild(className string, build func() (*ClassDefinition, error)) (*ClassDefinition, error) {
	return tc.defs.computeIfAbsent(className, build)
}

// Len returns the number of cached definitions.
func (tc *TraitCache) Len() int {
	return tc.defs.len()
}
