package ast

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const counterSrc = `entity counter is
  port(clk, rst : in std_logic; q : out std_logic);
end entity;
architecture rtl of counter is
  signal count, next_count : integer;
begin
  reg: process(clk, rst)
  begin
    if rst = '1' then
      count <= 0;
    elsif rising_edge(clk) then
      count <= next_count;
    end if;
  end process;
end architecture;
`

// builder creates nodes whose ranges cover the first occurrence of a
// substring of the file text.
type builder struct {
	t *testing.T
	f *File
}

func newBuilder(t *testing.T, text string) *builder {
	t.Helper()
	return &builder{t: t, f: NewFile("counter.vhd", text)}
}

func (b *builder) span(sub string) (int, int) {
	b.t.Helper()
	i := strings.Index(b.f.Text(), sub)
	if i < 0 {
		return 0, 0
	}
	return i, i + len(sub)
}

func (b *builder) read(parent Node, name string) *Read {
	s, e := b.span(name)
	r := NewRead(parent, s, e)
	r.Text = name
	return r
}

func (b *builder) write(parent Node, name string) *Write {
	s, e := b.span(name)
	w := NewWrite(parent, s, e)
	w.Text = name
	return w
}

func (b *builder) assign(parent Node, target string, sources ...string) *Assignment {
	s, e := b.span(target)
	a := NewAssignment(parent, s, e)
	a.Writes = []*Write{b.write(a, target)}
	for _, src := range sources {
		a.Reads = append(a.Reads, b.read(a, src))
	}
	return a
}

func (b *builder) clause(i *If, cond string, reads ...string) *IfClause {
	s, e := b.span(cond)
	c := NewIfClause(i, s, e)
	c.ConditionText = cond
	for _, r := range reads {
		c.Condition = append(c.Condition, b.read(c, r))
	}
	i.Clauses = append(i.Clauses, c)
	return c
}

func (b *builder) architecture() *Architecture {
	s, e := b.span("architecture rtl")
	a := NewArchitecture(b.f, s, e)
	a.Name = "rtl"
	b.f.Architecture = a
	return a
}

func (b *builder) process(a *Architecture, label string) *Process {
	s, e := b.span(label + ":")
	p := NewProcess(a, s, e)
	p.Label = label
	a.Processes = append(a.Processes, p)
	return p
}

func (b *builder) signal(a *Architecture, name string) *Signal {
	s, e := b.span(name)
	sig := NewSignal(a, s, e)
	sig.Name = name
	a.Signals = append(a.Signals, sig)
	return sig
}

func names[T interface{ *Read | *Write }](occ []T) []string {
	var out []string
	for _, o := range occ {
		switch o := any(o).(type) {
		case *Read:
			out = append(out, o.Text)
		case *Write:
			out = append(out, o.Text)
		}
	}
	return out
}

func TestArenaRegistersInConstructionOrder(t *testing.T) {
	b := newBuilder(t, counterSrc)
	a := b.architecture()
	p := b.process(a, "reg")
	assign := b.assign(p, "count", "next_count")

	nodes := b.f.Nodes()
	require.Len(t, nodes, 6)
	for i, n := range nodes {
		require.Equal(t, NodeID(i), n.ID())
	}
	require.Same(t, b.f, nodes[0])
	require.Same(t, p, assign.Parent())
	require.Same(t, a, p.Parent())
	require.Nil(t, b.f.Parent())
	require.Same(t, b.f, assign.Reads[0].Root())
	require.Same(t, b.f, b.f.Root())
}

func TestRootDetectsCycles(t *testing.T) {
	b := newBuilder(t, counterSrc)
	a := b.architecture()
	r := NewRead(a, 0, 1)
	r.parent = r.id

	defer func() {
		var inv *InvariantError
		err, _ := recover().(error)
		require.True(t, errors.As(err, &inv), "expected InvariantError, got %v", err)
		require.Equal(t, r.ID(), inv.Node)
	}()
	r.Root()
}

func TestConstructionRejectsRangeOutsideText(t *testing.T) {
	b := newBuilder(t, "abc")
	require.Panics(t, func() { NewRead(b.f, 2, 10) })
	require.Panics(t, func() { NewRead(b.f, 2, 1) })
}

func TestScopesYieldsScopeAncestorsNearestFirst(t *testing.T) {
	b := newBuilder(t, counterSrc)
	a := b.architecture()
	g := NewGenerate(a, 0, 0)
	a.Generates = append(a.Generates, g)
	p := NewProcess(g, 0, 0)
	l := NewLoop(p, 0, 0)
	i := NewIf(l, 0, 0)
	c := b.clause(i, "rst = '1'", "rst")

	var got []Node
	for s := range Scopes(c.Condition[0]) {
		got = append(got, s)
	}
	require.Equal(t, []Node{l, p, g, a}, got)
}

func TestFlatten(t *testing.T) {
	b := newBuilder(t, counterSrc)
	a := b.architecture()
	p := b.process(a, "reg")

	outer := NewIf(p, 0, 0)
	c1 := b.clause(outer, "rst = '1'", "rst")
	c1.Body = []Statement{b.assign(c1, "count")}
	c2 := b.clause(outer, "rising_edge(clk)", "rising_edge", "clk")
	cs := NewCase(c2, 0, 0)
	cs.Selector = []*Read{b.read(cs, "q")}
	arm := NewWhen(cs, 0, 0)
	arm.Choices = []*Read{b.read(arm, "rtl")}
	loop := NewLoop(arm, 0, 0)
	loop.Variable = "i"
	loop.Body = []Statement{b.assign(loop, "next_count", "count")}
	arm.Body = []Statement{loop}
	cs.Arms = []*When{arm}
	c2.Body = []Statement{cs}
	outer.Else = []Statement{b.assign(outer, "q", "d")}
	p.Statements = []Statement{outer}

	wantWrites := []string{"count", "next_count", "q"}
	if diff := cmp.Diff(wantWrites, names(p.FlatWrites())); diff != "" {
		t.Fatalf("FlatWrites mismatch (-want +got):\n%s", diff)
	}
	wantReads := []string{"rst", "rising_edge", "clk", "q", "rtl", "count", "d"}
	if diff := cmp.Diff(wantReads, names(p.FlatReads())); diff != "" {
		t.Fatalf("FlatReads mismatch (-want +got):\n%s", diff)
	}

	first := p.FlatWrites()
	p.Statements = nil
	require.Equal(t, first, p.FlatWrites(), "flat writes are cached")
}

func TestFlattenRejectsUnknownStatement(t *testing.T) {
	require.PanicsWithError(t, "ast: invariant violated at node -1: unknown statement variant <nil>", func() {
		FlattenWrites([]Statement{nil})
	})
	require.Panics(t, func() { FlattenReads([]Statement{nil}) })
}

func TestIsRegisterProcessInspectsTopLevelOnly(t *testing.T) {
	tests := []struct {
		name   string
		nested bool
		cond   string
		want   bool
	}{
		{"top-level rising edge", false, "rising_edge(clk)", true},
		{"event attribute", false, "clk'event and clk = '1'", true},
		{"falling edge upper case", false, "FALLING_EDGE(clk)", true},
		{"nested in loop", true, "rising_edge(clk)", false},
		{"plain condition", false, "en = '1'", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t, counterSrc)
			a := b.architecture()
			p := b.process(a, "reg")
			var parent Node = p
			var loop *Loop
			if tt.nested {
				loop = NewLoop(p, 0, 0)
				parent = loop
			}
			i := NewIf(parent, 0, 0)
			b.clause(i, tt.cond)
			if tt.nested {
				loop.Body = []Statement{i}
				p.Statements = []Statement{loop}
			} else {
				p.Statements = []Statement{i}
			}
			require.Equal(t, tt.want, p.IsRegisterProcess())
		})
	}
}

func TestResetsCollectDirectAssignmentsOnly(t *testing.T) {
	b := newBuilder(t, counterSrc)
	a := b.architecture()
	p := b.process(a, "reg")

	i := NewIf(p, 0, 0)
	reset := b.clause(i, "reset = '1'", "reset")
	inner := NewIf(reset, 0, 0)
	innerClause := b.clause(inner, "q = '1'", "q")
	innerClause.Body = []Statement{b.assign(innerClause, "next_count")}
	reset.Body = []Statement{b.assign(reset, "count"), inner, b.assign(reset, "q")}
	clock := b.clause(i, "rising_edge(clk)", "clk")
	clock.Body = []Statement{b.assign(clock, "count", "next_count")}
	p.Statements = []Statement{i}

	require.Equal(t, []string{"count", "q"}, p.Resets())
	require.True(t, p.ResetsName("COUNT"))
	require.False(t, p.ResetsName("next_count"))
}

func TestResetsEmptyForCombinationalProcess(t *testing.T) {
	b := newBuilder(t, counterSrc)
	a := b.architecture()
	p := b.process(a, "reg")
	i := NewIf(p, 0, 0)
	c := b.clause(i, "rst = '1'")
	c.Body = []Statement{b.assign(c, "count")}
	p.Statements = []Statement{i}

	require.False(t, p.IsRegisterProcess())
	require.Empty(t, p.Resets())
}

func TestCustomRules(t *testing.T) {
	b := newBuilder(t, counterSrc)
	b.f.SetRules(InferenceRules{Reset: DefaultRules.ClockEdge})
	require.Equal(t, DefaultRules.ClockEdge, b.f.Rules().ClockEdge)
	require.Equal(t, DefaultRules.ClockEdge, b.f.Rules().Reset)
}

func TestIsRegisterRecordsProcess(t *testing.T) {
	b := newBuilder(t, counterSrc)
	a := b.architecture()
	count := b.signal(a, "count")
	next := b.signal(a, "next_count")

	comb := b.process(a, "reg")
	comb.Statements = []Statement{b.assign(comb, "next_count", "count")}
	clocked := b.process(a, "reg")
	i := NewIf(clocked, 0, 0)
	c := b.clause(i, "rising_edge(clk)", "clk")
	c.Body = []Statement{b.assign(c, "COUNT", "next_count")}
	clocked.Statements = []Statement{i}

	_, ok := count.RegisterProcess()
	require.False(t, ok, "register process is unknown before IsRegister")

	require.True(t, count.IsRegister())
	p, ok := count.RegisterProcess()
	require.True(t, ok)
	require.Same(t, clocked, p)

	require.False(t, next.IsRegister())
	_, ok = next.RegisterProcess()
	require.False(t, ok)
}

func TestPortRegisterUsesArchitectureProcesses(t *testing.T) {
	b := newBuilder(t, counterSrc)
	e := NewEntity(b.f, 0, 10)
	b.f.Entity = e
	q := NewPort(e, 0, 0)
	q.Name = "q"
	q.Direction = Out
	e.Ports = []*Port{q}

	a := b.architecture()
	g := NewGenerate(a, 0, 0)
	a.Generates = []*Generate{g}
	p := NewProcess(g, 0, 0)
	g.Processes = []*Process{p}
	i := NewIf(p, 0, 0)
	c := b.clause(i, "rising_edge(clk)")
	c.Body = []Statement{b.assign(c, "q", "count")}
	p.Statements = []Statement{i}

	require.True(t, q.IsRegister())
	got, _ := q.RegisterProcess()
	require.Same(t, p, got)
}

func TestExportDeduplicatesSharedNodes(t *testing.T) {
	b := newBuilder(t, counterSrc)
	a := b.architecture()
	p := b.process(a, "reg")
	clk := b.read(p, "clk")
	p.Sensitivity = []*Read{clk}
	assign := b.assign(p, "count", "next_count")
	assign.Reads = append(assign.Reads, clk)
	p.Statements = []Statement{assign}
	orphan := b.read(a, "rst")

	out := Export(b.f)
	data, err := json.Marshal(out)
	require.NoError(t, err)
	text := string(data)

	require.Contains(t, text, `{"$ref":`+itoa(int(clk.ID()))+`}`)
	require.NotContains(t, text, "entity counter is", "raw text must not be exported")
	require.NotContains(t, text, `"parent"`)

	arch := out["architecture"].(map[string]any)
	require.Equal(t, "Architecture", arch["kind"])
	procs := arch["processes"].([]any)
	require.Len(t, procs, 1)
	require.Equal(t, "reg", procs[0].(map[string]any)["label"])

	detached := out["detached"].([]any)
	require.Len(t, detached, 1)
	require.Equal(t, int(orphan.ID()), detached[0].(map[string]any)["id"])
}

func itoa(i int) string {
	data, _ := json.Marshal(i)
	return string(data)
}
