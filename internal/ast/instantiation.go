package ast

import "github.com/robert-at-pretension-io/vhdl-sema/internal/memo"

// InstantiationKind distinguishes component instantiations from direct
// entity instantiations.
type InstantiationKind string

const (
	ComponentInstance InstantiationKind = "component"
	EntityInstance    InstantiationKind = "entity"
)

// Instantiation is a component or entity instantiation.
type Instantiation struct {
	nodeBase
	Label         string
	Kind          InstantiationKind
	Library       string
	ComponentName string
	GenericMap    *Map
	PortMap       *Map

	flatReads  memo.Cell[[]*Read]
	flatWrites memo.Cell[[]*Write]
}

func NewInstantiation(parent Node, start, end int) *Instantiation {
	i := &Instantiation{}
	attach(i, parent, start, end)
	return i
}

// Map is a port map or generic map.
type Map struct {
	nodeBase
	Mappings []*Mapping
}

func NewMap(parent Node, start, end int) *Map {
	m := &Map{}
	attach(m, parent, start, end)
	return m
}

// Mapping is one association of a map. The actual is recorded twice: as
// reads for the case where the formal is an input, and split into reads and
// writes for the case where it is an output. For s(i) the output side writes
// s and reads i. Formal is empty for positional associations.
type Mapping struct {
	nodeBase
	Formal         []*Read
	IfInput        []*Read
	IfOutputReads  []*Read
	IfOutputWrites []*Write
}

func NewMapping(parent Node, start, end int) *Mapping {
	m := &Mapping{}
	attach(m, parent, start, end)
	return m
}

// FormalName returns the formal's base name, or "" for a positional association.
func (m *Mapping) FormalName() string {
	for _, f := range m.Formal {
		if !f.Element {
			return f.Text
		}
	}
	return ""
}

// FlatReads returns the names read by the instantiation. Generic actuals are
// always reads. A port actual is a read when its formal is in or inout, and
// its index expressions are reads when the formal is out. Without a target
// every port actual is treated as a read. The result is computed once; later
// calls return it regardless of target.
func (i *Instantiation) FlatReads(target Interface) []*Read {
	return i.flatReads.Get(func() []*Read {
		var out []*Read
		if i.GenericMap != nil {
			for _, m := range i.GenericMap.Mappings {
				out = append(out, m.IfInput...)
			}
		}
		if i.PortMap == nil {
			return out
		}
		for pos, m := range i.PortMap.Mappings {
			port, ok := formalPort(target, m, pos)
			if !ok {
				out = append(out, m.IfInput...)
				continue
			}
			switch port.Direction {
			case In, Inout:
				out = append(out, m.IfInput...)
			case Out:
				out = append(out, m.IfOutputReads...)
			}
		}
		return out
	})
}

// FlatWrites returns the names driven by the instantiation: actuals of out
// and inout formals. Without a target nothing is written.
func (i *Instantiation) FlatWrites(target Interface) []*Write {
	return i.flatWrites.Get(func() []*Write {
		if i.PortMap == nil {
			return nil
		}
		var out []*Write
		for pos, m := range i.PortMap.Mappings {
			port, ok := formalPort(target, m, pos)
			if ok && port.Direction.Writable() {
				out = append(out, m.IfOutputWrites...)
			}
		}
		return out
	})
}

func formalPort(target Interface, m *Mapping, pos int) (*Port, bool) {
	if target == nil {
		return nil, false
	}
	ports := target.InterfacePorts()
	name := m.FormalName()
	if name == "" {
		if pos < len(ports) {
			return ports[pos], true
		}
		return nil, false
	}
	for _, p := range ports {
		if SameName(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}
