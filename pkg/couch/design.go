package couch

import (
	"encoding/json"
	"fmt"
)

// ViewFunction is the map function and optional reduce function of one
// view in a design document. Construct instances via NewViewFunction or
// NewViewFunctionWithReduce; decoding rejects a missing map function.
type ViewFunction struct {
	mapFn  string
	reduce string
}

// NewViewFunction returns a view function without a reduce part.
func NewViewFunction(mapFunction string) ViewFunction {
	return ViewFunction{mapFn: mapFunction}
}

// NewViewFunctionWithReduce returns a view function with a reduce part,
// e.g. "_sum" or "_count".
func NewViewFunctionWithReduce(mapFunction, reduceFunction string) ViewFunction {
	return ViewFunction{mapFn: mapFunction, reduce: reduceFunction}
}

// Map returns the view's map function.
func (v ViewFunction) Map() string { return v.mapFn }

// Reduce returns the view's reduce function and whether one is set.
func (v ViewFunction) Reduce() (string, bool) {
	return v.reduce, v.reduce != ""
}

// MarshalJSON encodes the view function, omitting an absent reduce part.
func (v ViewFunction) MarshalJSON() ([]byte, error) {
	raw := struct {
		Map    string `json:"map"`
		Reduce string `json:"reduce,omitempty"`
	}{Map: v.mapFn, Reduce: v.reduce}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a view function, requiring the "map" field and
// rejecting fields this package does not know about.
func (v *ViewFunction) UnmarshalJSON(data []byte) error {
	var raw struct {
		Map    *string `json:"map"`
		Reduce string  `json:"reduce"`
	}
	if err := decodeStrict(data, &raw); err != nil {
		return err
	}
	if raw.Map == nil {
		return fmt.Errorf("view function is missing required field %q", "map")
	}
	v.mapFn = *raw.Map
	v.reduce = raw.Reduce
	return nil
}

// Design is the content of a design document. Only the views field is
// supported. Build instances with a DesignBuilder or decode them from a
// server response.
type Design struct {
	views map[string]ViewFunction
}

// View returns the view function stored under the given name.
func (d *Design) View(name string) (ViewFunction, bool) {
	v, ok := d.views[name]
	return v, ok
}

// Views returns a copy of the name-to-view-function mapping.
func (d *Design) Views() map[string]ViewFunction {
	views := make(map[string]ViewFunction, len(d.views))
	for name, v := range d.views {
		views[name] = v
	}
	return views
}

// MarshalJSON encodes the design document content.
func (d Design) MarshalJSON() ([]byte, error) {
	views := d.views
	if views == nil {
		views = map[string]ViewFunction{}
	}
	raw := struct {
		Views map[string]ViewFunction `json:"views"`
	}{Views: views}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes design document content. A missing "views" field
// decodes as an empty design. Document metadata fields (_id, _rev) are
// tolerated so a design document read straight off the server decodes.
func (d *Design) UnmarshalJSON(data []byte) error {
	var raw struct {
		Views map[string]ViewFunction `json:"views"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Views == nil {
		raw.Views = map[string]ViewFunction{}
	}
	d.views = raw.Views
	return nil
}

// DesignBuilder accumulates design document content and finalizes it
// into an immutable Design. Insertion order does not matter; views are
// keyed by name and a repeated name overwrites the earlier entry.
type DesignBuilder struct {
	views map[string]ViewFunction
}

// NewDesignBuilder returns a builder holding empty design content.
func NewDesignBuilder() *DesignBuilder {
	return &DesignBuilder{views: map[string]ViewFunction{}}
}

// InsertView adds a view under the given name, returning the builder for
// chaining.
func (b *DesignBuilder) InsertView(name string, fn ViewFunction) *DesignBuilder {
	b.views[name] = fn
	return b
}

// Build finalizes the accumulated content. The returned Design does not
// share state with the builder.
func (b *DesignBuilder) Build() *Design {
	views := make(map[string]ViewFunction, len(b.views))
	for name, v := range b.views {
		views[name] = v
	}
	return &Design{views: views}
}
