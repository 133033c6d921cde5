package ast

// IsRegisterProcess reports whether one of the process's top-level if
// clauses tests a clock edge. Conditions nested deeper are not inspected.
func (p *Process) IsRegisterProcess() bool {
	return p.register.Get(func() bool {
		edge := p.Root().Rules().ClockEdge
		for _, s := range p.Statements {
			i, ok := s.(*If)
			if !ok {
				continue
			}
			for _, c := range i.Clauses {
				if edge.MatchString(c.ConditionText) {
					return true
				}
			}
		}
		return false
	})
}

// Resets returns the names assigned directly inside the top-level reset
// clauses of a register process. Assignments nested further inside a reset
// clause are not included. A process that is not a register process has no
// resets.
func (p *Process) Resets() []string {
	return p.resets.Get(func() []string {
		if !p.IsRegisterProcess() {
			return nil
		}
		reset := p.Root().Rules().Reset
		var names []string
		for _, s := range p.Statements {
			i, ok := s.(*If)
			if !ok {
				continue
			}
			for _, c := range i.Clauses {
				if !reset.MatchString(c.ConditionText) {
					continue
				}
				for _, sub := range c.Body {
					if a, ok := sub.(*Assignment); ok {
						for _, w := range a.Writes {
							names = append(names, w.Text)
						}
					}
				}
			}
		}
		return names
	})
}

// ResetsName reports whether name is among the process's resets.
func (p *Process) ResetsName(name string) bool {
	for _, r := range p.Resets() {
		if SameName(r, name) {
			return true
		}
	}
	return false
}

// IsRegister reports whether the signal is assigned by a register process of
// its enclosing body. The assigning process is recorded and exposed by
// RegisterProcess. When several register processes assign the signal, the
// last one in declaration order is recorded.
func (s *SignalLike) IsRegister() bool {
	return s.register.Get(s.findRegisterProcess) != nil
}

// RegisterProcess returns the register process assigning the signal. It
// reports false until IsRegister has been evaluated, and for signals that
// are not registers.
func (s *SignalLike) RegisterProcess() (*Process, bool) {
	p, ok := s.register.Peek()
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

func (s *SignalLike) findRegisterProcess() *Process {
	var found *Process
	for _, p := range s.candidateProcesses() {
		if !p.IsRegisterProcess() {
			continue
		}
		for _, w := range p.FlatWrites() {
			if SameName(w.Text, s.Name) {
				found = p
				break
			}
		}
	}
	return found
}

// candidateProcesses are the processes of the body the signal is declared
// in: the owning architecture or generate for signals, the file's
// architecture for ports, and the owning process for variables.
func (s *SignalLike) candidateProcesses() []*Process {
	switch parent := s.Parent().(type) {
	case *Architecture:
		return parent.Processes
	case *Generate:
		return parent.Processes
	case *Process:
		return []*Process{parent}
	case *Entity:
		if arch := s.Root().Architecture; arch != nil {
			return arch.AllProcesses()
		}
	}
	return nil
}
