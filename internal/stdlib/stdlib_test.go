package stdlib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
)

func TestEmbeddedPackagesLoad(t *testing.T) {
	for _, name := range []string{
		"ieee.math_real",
		"ieee.numeric_std",
		"ieee.std_logic_1164",
		"ieee.std_logic_arith",
		"ieee.std_logic_unsigned",
		"std.env",
		"std.standard",
		"std.textio",
	} {
		library, pkgName, _ := strings.Cut(name, ".")
		pkg, ok := Package(library, pkgName)
		require.True(t, ok, name)
		require.Equal(t, pkgName, pkg.Name)
	}
	_, ok := Package("work", "standard")
	require.False(t, ok, "only std and ieee are predeclared")
}

func TestPackageLookupIsCaseInsensitive(t *testing.T) {
	pkg, ok := Package("IEEE", "Std_Logic_1164")
	require.True(t, ok)
	require.Equal(t, "std_logic_1164", pkg.Name)
	require.Equal(t, "ieee", pkg.Root().Library)

	_, ok = Package("ieee", "fixed_pkg")
	require.False(t, ok)
	_, ok = Package("work", "standard")
	require.False(t, ok)
}

func typeNamed(pkg *ast.Package, name string) *ast.Type {
	for _, typ := range pkg.Types {
		if ast.SameName(typ.Name, name) {
			return typ
		}
	}
	return nil
}

func functionNamed(pkg *ast.Package, name string) *ast.Function {
	for _, f := range pkg.Functions {
		if ast.SameName(f.Name, name) {
			return f
		}
	}
	return nil
}

func TestStandard(t *testing.T) {
	std := Standard()
	require.NotNil(t, std)

	boolean := typeNamed(std, "boolean")
	require.NotNil(t, boolean)
	require.Equal(t, ast.EnumType, boolean.Kind)
	require.Len(t, boolean.States, 2)

	character := typeNamed(std, "character")
	require.NotNil(t, character)
	require.Len(t, character.States, 128)

	tm := typeNamed(std, "time")
	require.NotNil(t, tm)
	require.Equal(t, ast.PhysicalType, tm.Kind)
	var units []string
	for _, s := range tm.States {
		units = append(units, s.Name)
	}
	require.Equal(t, []string{"fs", "ps", "ns", "us", "ms", "sec", "min", "hr"}, units)

	for _, name := range []string{"natural", "positive", "string", "bit_vector", "severity_level"} {
		require.NotNil(t, typeNamed(std, name), name)
	}
	require.NotNil(t, functionNamed(std, "now"))
}

func TestStdLogic1164(t *testing.T) {
	pkg, ok := Package("ieee", "std_logic_1164")
	require.True(t, ok)

	ulogic := typeNamed(pkg, "std_ulogic")
	require.NotNil(t, ulogic)
	require.Len(t, ulogic.States, 9)
	require.Equal(t, "'U'", ulogic.States[0].Name)
	require.Equal(t, "'-'", ulogic.States[8].Name)

	require.NotNil(t, typeNamed(pkg, "std_logic"))
	require.NotNil(t, typeNamed(pkg, "std_logic_vector"))

	edge := functionNamed(pkg, "rising_edge")
	require.NotNil(t, edge)
	require.Equal(t, "boolean", edge.ReturnType)
	require.NotNil(t, functionNamed(pkg, "falling_edge"))
}

func TestNumericStdAndTextio(t *testing.T) {
	numeric, ok := Package("ieee", "numeric_std")
	require.True(t, ok)
	require.NotNil(t, typeNamed(numeric, "unsigned"))
	require.NotNil(t, typeNamed(numeric, "signed"))
	for _, name := range []string{"to_unsigned", "to_signed", "to_integer", "resize", "shift_left", "std_match"} {
		require.NotNil(t, functionNamed(numeric, name), name)
	}

	textio, ok := Package("std", "textio")
	require.True(t, ok)
	require.NotNil(t, typeNamed(textio, "line"))
	require.NotNil(t, functionNamed(textio, "writeline"))
	require.True(t, functionNamed(textio, "writeline").Procedure)

	var files []string
	for _, c := range textio.Constants {
		files = append(files, c.Name)
	}
	require.Equal(t, []string{"input", "output"}, files)
}

func TestMathReal(t *testing.T) {
	pkg, ok := Package("ieee", "math_real")
	require.True(t, ok)
	require.Len(t, pkg.Constants, 18)
	require.NotNil(t, functionNamed(pkg, "uniform"))
	require.True(t, functionNamed(pkg, "uniform").Procedure)
}
