package odata

// KeyField describes one component of an entity type's key.
type KeyField struct {
	Name string
	Type EdmType
}

// Property describes a structural property of an entity type. Listing
// properties is optional; an entity type without them cannot validate sort
// fields and accepts any name.
type Property struct {
	Name string
	Type EdmType
}

// NavigationProperty describes a named relationship to another entity type,
// exposed as an association shortcut on request definitions.
type NavigationProperty struct {
	Name string

	// Target describes the related entity type. It may be nil when only the
	// relationship name is known; navigation requests then carry a model
	// without key or property information.
	Target *EntityType
}

// EntityType is the schema a request definition is validated against: key
// composition, navigation properties, and whether the entity carries a
// binary media stream.
type EntityType struct {
	Name                 string
	Key                  []KeyField
	Properties           []Property
	NavigationProperties []NavigationProperty
	HasStream            bool
}

// HasProperty reports whether name is a known key, structural, or navigation
// property. A model that declares neither keys nor properties carries no
// property information and accepts any name.
func (t *EntityType) HasProperty(name string) bool {
	if len(t.Key) == 0 && len(t.Properties) == 0 {
		return true
	}

	for _, k := range t.Key {
		if k.Name == name {
			return true
		}
	}

	for _, p := range t.Properties {
		if p.Name == name {
			return true
		}
	}

	for _, n := range t.NavigationProperties {
		if n.Name == name {
			return true
		}
	}

	return false
}
