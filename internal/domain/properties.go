package domain

import (
	"cmp"
	"slices"
)

// NameProperty is the node property holding a display name.
const NameProperty = "name"

// Default property lists fetched when a caller does not name any.
var (
	DefaultEntityProps   = []string{NameProperty, "isoCode"}
	DefaultVariableProps = []string{NameProperty}
)

// NodePropertyTable maps property name to node dcid to the first value of
// that property. A nil value means the node has no value for the property.
type NodePropertyTable map[string]map[string]*string

// Lookup returns the value of prop for id, or false when absent.
func (t NodePropertyTable) Lookup(prop, id string) (string, bool) {
	v, ok := t[prop][id]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Properties is the resolved property bag for one node.
type Properties map[string]*string

// PropertiesFor builds the property bag of id. The name property defaults to
// the empty string; every other requested property defaults to nil.
func (t NodePropertyTable) PropertiesFor(id string, props []string) Properties {
	out := Properties{NameProperty: stringPtr("")}
	for _, prop := range props {
		if v, ok := t.Lookup(prop, id); ok {
			out[prop] = stringPtr(v)
			continue
		}
		if prop != NameProperty {
			out[prop] = nil
		}
	}
	return out
}

// FirstValues reduces a propvals response to the first value per node.
func FirstValues(propvals map[string][]NodePropval) map[string]*string {
	out := make(map[string]*string, len(propvals))
	for id, values := range propvals {
		if len(values) == 0 {
			out[id] = nil
			continue
		}
		switch first := values[0]; {
		case first.Value != "":
			out[id] = stringPtr(first.Value)
		case first.DCID != "":
			out[id] = stringPtr(first.DCID)
		default:
			out[id] = nil
		}
	}
	return out
}

func sortedKeys[M ~map[K]V, K cmp.Ordered, V any](m M) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a copy of p whose values do not alias p's.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		if v != nil {
			out[k] = stringPtr(*v)
			continue
		}
		out[k] = nil
	}
	return out
}
