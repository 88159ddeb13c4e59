package economy

import "fmt"

// Resource is a spendable currency.
type Resource string

const (
	Pollen Resource = "pollen"
	Nectar Resource = "nectar"
)

// Valid reports whether r is one of the known currencies.
func (r Resource) Valid() bool {
	return r == Pollen || r == Nectar
}

// Kind identifies a purchasable upgrade. Mobile kinds are creatures that orbit the
// hive; level kinds only raise a counter.
type Kind string

const (
	Bee        Kind = "bee"
	Wasp       Kind = "wasp"
	Duck       Kind = "duck"
	Rabbit     Kind = "rabbit"
	Production Kind = "production"
	Hive       Kind = "hive"
)

var allKinds = []Kind{Bee, Wasp, Duck, Rabbit, Production, Hive}

// AllKinds returns every known kind in a stable order.
func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// MobileKinds returns the creature kinds in a stable order.
func MobileKinds() []Kind {
	return []Kind{Bee, Wasp, Duck, Rabbit}
}

// Mobile reports whether buying k adds a creature to the hive.
func (k Kind) Mobile() bool {
	switch k {
	case Bee, Wasp, Duck, Rabbit:
		return true
	}
	return false
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts a tag such as "bee" into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown upgrade kind %q", s)
	}
	return k, nil
}
