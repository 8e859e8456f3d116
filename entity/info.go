package entity

// Info is a detached, serializable snapshot of an entity subtree.
type Info struct {
	Kind       Kind          `yaml:"kind"`
	Name       string        `yaml:"name,omitempty"`
	FullName   string        `yaml:"full_name,omitempty"`
	Type       string        `yaml:"type,omitempty"`
	Value      string        `yaml:"value,omitempty"`
	Line       int           `yaml:"line,omitempty"`
	Properties PropertyGroup `yaml:"properties,omitempty"`
	Children   []*Info       `yaml:"children,omitempty"`
}

// Info returns a snapshot of e and its descendants.
func (e *Entity) Info() *Info {
	info := &Info{
		Kind:     e.Kind,
		Name:     e.Name,
		FullName: e.FullName(),
		Type:     e.Type,
		Value:    e.Value,
		Line:     e.Line,
	}
	if len(e.Properties) > 0 {
		info.Properties = make(PropertyGroup, len(e.Properties))
		for i, p := range e.Properties {
			info.Properties[i] = Property{Name: p.Name, SubProperties: append([]string(nil), p.SubProperties...)}
		}
	}
	for _, c := range e.Children {
		info.Children = append(info.Children, c.Info())
	}
	return info
}

// Count returns the number of entities in the snapshot, itself included.
func (i *Info) Count() int {
	n := 1
	for _, c := range i.Children {
		n += c.Count()
	}
	return n
}
