package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
)

const counterVHDL = `library ieee;
use ieee.std_logic_1164.all, ieee.numeric_std.all;

entity counter is
  generic (WIDTH : natural := 8);
  port (
    clk, reset : in std_logic;
    en       : in  std_logic;
    q        : out std_logic_vector(WIDTH-1 downto 0);
    data     : inout std_logic;
    flag     : buffer std_logic
  );
end entity counter;

architecture rtl of counter is
  type state_t is (IDLE, RUN);
  type pair_t is record
    lo, hi : std_logic;
  end record;
  signal count : unsigned(WIDTH-1 downto 0) := (others => '0');
  signal state : state_t;
  signal pair  : pair_t;
  constant MAX : natural := 2**WIDTH - 1;

  function inc(x : unsigned) return unsigned is
    variable tmp : unsigned(x'range);
  begin
    if x = 0 then
      return x;
    end if;
    return x + 1;
  end function;

  component child is
    port (a : in std_logic; y : out std_logic);
  end component;
begin
  reg: process (clk, reset)
    variable v : integer;
  begin
    if reset = '1' then
      count <= (others => '0');
    elsif rising_edge(clk) then
      if en = '1' then
        count <= inc(count);
      end if;
      case state is
        when IDLE => state <= RUN;
        when others => null;
      end case;
      for i in 0 to 3 loop
        v := i;
      end loop;
      pair.lo <= work.helpers.ONE;
    end if;
  end process reg;

  q <= std_logic_vector(count) when en = '1' else (others => '0');

  u_child: child port map (a => clk'delayed, y => flag);

  gen: for k in 0 to 1 generate
    signal local : std_logic;
  begin
    local <= q(k);
  end generate gen;
end architecture rtl;
`

func mustParse(t *testing.T, text string) *ast.File {
	t.Helper()
	f, err := Parse("counter.vhd", text)
	require.NoError(t, err)
	return f
}

func readNames(reads []*ast.Read) []string {
	var out []string
	for _, r := range reads {
		out = append(out, r.Text)
	}
	return out
}

func writeNames(writes []*ast.Write) []string {
	var out []string
	for _, w := range writes {
		out = append(out, w.Text)
	}
	return out
}

func TestParseContextClauses(t *testing.T) {
	f := mustParse(t, counterVHDL)
	require.Equal(t, []string{"ieee"}, f.Libraries)
	require.Len(t, f.Uses, 2)
	require.Equal(t, "ieee", f.Uses[1].Library)
	require.Equal(t, "numeric_std", f.Uses[1].Package)
	require.Equal(t, "all", f.Uses[1].Item)
	require.Equal(t, "ieee.numeric_std", f.Uses[1].Qualified())
}

func TestParseEntity(t *testing.T) {
	f := mustParse(t, counterVHDL)
	e := f.Entity
	require.NotNil(t, e)
	require.Equal(t, "counter", e.Name)
	require.Len(t, e.Generics, 1)
	require.Equal(t, "natural", e.Generics[0].Type)

	type port struct {
		Name string
		Dir  ast.Direction
		Type string
	}
	var got []port
	for _, p := range e.Ports {
		got = append(got, port{p.Name, p.Direction, p.Type})
	}
	want := []port{
		{"clk", ast.In, "std_logic"},
		{"reset", ast.In, "std_logic"},
		{"en", ast.In, "std_logic"},
		{"q", ast.Out, "std_logic_vector(WIDTH-1 downto 0)"},
		{"data", ast.Inout, "std_logic"},
		{"flag", ast.Out, "std_logic"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestParseArchitectureDeclarations(t *testing.T) {
	f := mustParse(t, counterVHDL)
	a := f.Architecture
	require.NotNil(t, a)
	require.Equal(t, "counter", a.EntityName)

	require.Len(t, a.Types, 2)
	require.Equal(t, ast.EnumType, a.Types[0].Kind)
	require.Equal(t, "RUN", a.Types[0].States[1].Name)
	require.Equal(t, ast.RecordType, a.Types[1].Kind)
	require.Len(t, a.Types[1].Fields, 2)

	require.Len(t, a.Signals, 3)
	require.Empty(t, readNames(a.Signals[0].Default), "aggregate choices are not reads")
	require.Equal(t, []string{"WIDTH"}, readNames(a.Constants[0].Value))

	require.Len(t, a.Functions, 1)
	require.Equal(t, "inc", a.Functions[0].Name)
	require.Equal(t, "unsigned", a.Functions[0].ReturnType)
	require.Len(t, a.Components, 1)
	require.Equal(t, ast.Out, a.Components[0].Ports[1].Direction)
}

func TestParseProcess(t *testing.T) {
	f := mustParse(t, counterVHDL)
	proc := f.Architecture.Processes[0]
	require.Equal(t, "reg", proc.Label)
	require.Equal(t, []string{"clk", "reset"}, readNames(proc.Sensitivity))
	require.Len(t, proc.Variables, 1)

	top := proc.Statements[0].(*ast.If)
	require.Len(t, top.Clauses, 2)
	require.Equal(t, "reset = '1'", top.Clauses[0].ConditionText)
	require.Equal(t, "rising_edge(clk)", top.Clauses[1].ConditionText)
	require.Nil(t, top.Else)

	body := top.Clauses[1].Body
	require.Len(t, body, 4)
	require.IsType(t, &ast.If{}, body[0])
	require.IsType(t, &ast.Case{}, body[1])
	loop := body[2].(*ast.Loop)
	require.Equal(t, "i", loop.Variable)
	assign := body[3].(*ast.Assignment)
	require.Equal(t, []string{"pair"}, writeNames(assign.Writes))
	require.Len(t, assign.Reads, 2)
	require.Equal(t, "helpers", assign.Reads[0].Text)
	require.False(t, assign.Reads[0].Element, "library prefix is dropped")
	require.Equal(t, "ONE", assign.Reads[1].Text)
	require.True(t, assign.Reads[1].Element)

	wantWrites := []string{"count", "count", "state", "v", "pair"}
	if diff := cmp.Diff(wantWrites, writeNames(proc.FlatWrites())); diff != "" {
		t.Fatalf("flat writes mismatch (-want +got):\n%s", diff)
	}
	wantReads := []string{"reset", "rising_edge", "clk", "en", "inc", "count", "state", "IDLE", "RUN", "i", "helpers", "ONE"}
	if diff := cmp.Diff(wantReads, readNames(proc.FlatReads())); diff != "" {
		t.Fatalf("flat reads mismatch (-want +got):\n%s", diff)
	}
	require.True(t, proc.IsRegisterProcess())
	require.Equal(t, []string{"count"}, proc.Resets())
}

func TestParseClauseRangeTrimmed(t *testing.T) {
	f := mustParse(t, counterVHDL)
	clause := f.Architecture.Processes[0].Statements[0].(*ast.If).Clauses[0]
	end := clause.Range().End.Offset()
	require.Equal(t, byte(';'), f.Text()[end-1], "clause ends after its last statement")
}

func TestParseConcurrentStatements(t *testing.T) {
	f := mustParse(t, counterVHDL)
	a := f.Architecture

	require.Len(t, a.Assignments, 1)
	require.Equal(t, []string{"q"}, writeNames(a.Assignments[0].Writes))
	require.Equal(t, []string{"std_logic_vector", "count", "en"}, readNames(a.Assignments[0].Reads))

	require.Len(t, a.Instantiations, 1)
	inst := a.Instantiations[0]
	require.Equal(t, "u_child", inst.Label)
	require.Equal(t, ast.ComponentInstance, inst.Kind)
	require.Equal(t, "child", inst.ComponentName)
	require.Nil(t, inst.GenericMap)
	require.Len(t, inst.PortMap.Mappings, 2)
	m := inst.PortMap.Mappings[0]
	require.Equal(t, "a", m.FormalName())
	require.Equal(t, []string{"clk"}, readNames(m.IfInput), "attribute name is not a read")
	out := inst.PortMap.Mappings[1]
	require.Equal(t, []string{"flag"}, writeNames(out.IfOutputWrites))
	require.Empty(t, out.IfOutputReads)

	require.Len(t, a.Generates, 1)
	g := a.Generates[0]
	require.Equal(t, ast.ForGenerate, g.Kind)
	require.Equal(t, "k", g.Variable)
	require.Len(t, g.Signals, 1)
	require.Equal(t, []string{"local"}, writeNames(g.Assignments[0].Writes))
	require.Equal(t, []string{"q", "k"}, readNames(g.Assignments[0].Reads))
}

func TestParseIndexedActual(t *testing.T) {
	f := mustParse(t, `architecture a of e is
begin
  u: entity lib.sub(rtl) generic map (N => 4) port map (x(i) => bus_a, y => bus_b(j + 1), z => open);
end;
`)
	inst := f.Architecture.Instantiations[0]
	require.Equal(t, ast.EntityInstance, inst.Kind)
	require.Equal(t, "lib", inst.Library)
	require.Equal(t, "sub", inst.ComponentName)
	require.Len(t, inst.GenericMap.Mappings, 1)

	y := inst.PortMap.Mappings[1]
	require.Equal(t, []string{"bus_b", "j"}, readNames(y.IfInput))
	require.Equal(t, []string{"bus_b"}, writeNames(y.IfOutputWrites))
	require.Equal(t, []string{"j"}, readNames(y.IfOutputReads))

	z := inst.PortMap.Mappings[2]
	require.Equal(t, "z", z.FormalName())
	require.Empty(t, z.IfInput)
}

func TestParseIfGenerateBranches(t *testing.T) {
	f := mustParse(t, `architecture a of e is
  signal s : bit;
begin
  g: if FAST generate
    s <= '1';
  elsif SLOW generate
    s <= '0';
  else generate
  begin
    s <= '0';
  end;
  end generate g;
  b: block (en = '1') is
    signal t : bit;
  begin
    t <= guarded s;
  end block b;
end architecture;
`)
	gens := f.Architecture.Generates
	require.Len(t, gens, 4)
	require.Equal(t, []string{"FAST"}, readNames(gens[0].Condition))
	require.Equal(t, []string{"SLOW"}, readNames(gens[1].Condition))
	require.Empty(t, gens[2].Condition)
	require.Equal(t, ast.Block, gens[3].Kind)
	require.Equal(t, []string{"en"}, readNames(gens[3].Condition))
	require.Equal(t, []string{"s"}, readNames(gens[3].Assignments[0].Reads))
}

func TestParsePackage(t *testing.T) {
	f := mustParse(t, `package helpers is
  constant ONE : bit := '1';
  type color is (red, green);
  type time_like is range 0 to 100 units
    tick;
    tock = 10 tick;
  end units;
  function "and"(l, r : color) return color;
  procedure pulse(signal s : out bit);
  component leaf port (i : in bit); end component;
end package helpers;

package body helpers is
  function "and"(l, r : color) return color is
  begin
    case l is
      when red => return red;
      when others => return r;
    end case;
  end function "and";
  procedure pulse(signal s : out bit) is
  begin
    s <= '1';
  end procedure;
end package body;
`)
	pkg := f.Package
	require.NotNil(t, pkg)
	require.Equal(t, "helpers", pkg.Name)
	require.Len(t, pkg.Constants, 1)
	require.Len(t, pkg.Types, 2)
	require.Equal(t, ast.PhysicalType, pkg.Types[1].Kind)
	require.Equal(t, "tock", pkg.Types[1].States[1].Name)
	require.Len(t, pkg.Functions, 2)
	require.True(t, pkg.Functions[1].Procedure)
	require.Len(t, pkg.Components, 1)
	require.NotNil(t, f.PackageBody)
	require.Len(t, f.PackageBody.Functions, 2)
}

func TestParseSequentialStatements(t *testing.T) {
	f := mustParse(t, `architecture a of e is
begin
  p: process
    variable i : integer;
  begin
    outer: while i < 10 loop
      i := i + 1;
      exit outer when done = '1';
      next when skip;
    end loop;
    wait until rising_edge(clk) for 10 ns;
    assert ok report "bad" severity error;
    (hi, lo) <= pair;
    write_out(x, y);
    null;
  end process;
end;
`)
	stmts := f.Architecture.Processes[0].Statements
	require.Len(t, stmts, 5)
	loop := stmts[0].(*ast.Loop)
	require.Empty(t, loop.Variable)
	require.Equal(t, "outer", loop.Label)
	require.Equal(t, []string{"i"}, readNames(loop.Bounds))
	require.Equal(t, []string{"done"}, readNames(loop.Body[1].(*ast.Assignment).Reads))
	require.Equal(t, []string{"skip"}, readNames(loop.Body[2].(*ast.Assignment).Reads))

	require.Equal(t, []string{"rising_edge", "clk", "ns"}, readNames(stmts[1].(*ast.Assignment).Reads))
	require.Equal(t, []string{"ok", "error"}, readNames(stmts[2].(*ast.Assignment).Reads))
	agg := stmts[3].(*ast.Assignment)
	require.Equal(t, []string{"hi", "lo"}, writeNames(agg.Writes))
	call := stmts[4].(*ast.Assignment)
	require.Empty(t, call.Writes)
	require.Equal(t, []string{"write_out", "x", "y"}, readNames(call.Reads))
}

func TestParseSelectedAssignmentAndQualifiedExpression(t *testing.T) {
	f := mustParse(t, `architecture a of e is
begin
  with sel select
    y <= a when "00",
         unsigned'("01") when others;
  z <= x'high;
end;
`)
	sel := f.Architecture.Assignments[0]
	require.Equal(t, []string{"y"}, writeNames(sel.Writes))
	require.Equal(t, []string{"sel", "a", "unsigned"}, readNames(sel.Reads))
	require.Equal(t, []string{"x"}, readNames(f.Architecture.Assignments[1].Reads))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"missing semicolon", "entity e is\nend entity e\n", 2},
		{"bad design unit", "signal s : bit;", 0},
		{"unterminated process", "architecture a of e is\nbegin\n  process begin\n    x <= y;\n", 4},
		{"second entity", "entity a is end;\nentity b is end;\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.vhd", tt.text)
			var perr *Error
			require.True(t, errors.As(err, &perr), "expected *Error, got %v", err)
			require.Equal(t, tt.line, perr.Coordinate.Line)
			require.Equal(t, "bad.vhd", perr.Path)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counter.vhd")
	require.NoError(t, os.WriteFile(path, []byte(counterVHDL), 0o644))

	f, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, path, f.Path)

	_, err = ParseFile(filepath.Join(dir, "missing.vhd"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTokenizeSplitsAttributeTicks(t *testing.T) {
	toks, err := tokenize("t.vhd", "x <= s'('1') & '0'; -- c\n/* block */ y")
	require.NoError(t, err)
	var kinds []tokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.kind)
	}
	want := []tokenKind{tIdent, tDelim, tIdent, tTick, tDelim, tChar, tDelim, tDelim, tChar, tDelim, tIdent, tEOF}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("token kinds mismatch (-want +got):\n%s", diff)
	}
}
