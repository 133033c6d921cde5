package indexer

import (
	"strings"
	"sync"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
)

// Symbol kinds
const (
	KindEntity    = "entity"
	KindPackage   = "package"
	KindComponent = "component"
)

// SymbolTable holds all exported design units across files
type SymbolTable struct {
	mu      sync.RWMutex
	symbols map[string]Symbol
}

// Symbol represents an exported VHDL construct
type Symbol struct {
	Name string   // Qualified name: work.my_entity, work.my_pkg.my_comp
	Kind string   // entity, package, component
	File string   // Source file path
	Line int      // Line number (1-based)
	Node ast.Node `json:"-"`
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]Symbol)}
}

// qualify builds the lower-case symbol key for a library and name path.
func qualify(library string, names ...string) string {
	parts := append([]string{library}, names...)
	return strings.ToLower(strings.Join(parts, "."))
}

func (st *SymbolTable) Add(sym Symbol) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.symbols[sym.Name] = sym
}

func (st *SymbolTable) Get(name string) (Symbol, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sym, ok := st.symbols[strings.ToLower(name)]
	return sym, ok
}

// Entity finds an entity by library and name. It satisfies
// scope.EntityLookup.
func (st *SymbolTable) Entity(library, name string) (*ast.Entity, bool) {
	sym, ok := st.Get(qualify(library, name))
	if !ok || sym.Kind != KindEntity {
		return nil, false
	}
	e, ok := sym.Node.(*ast.Entity)
	return e, ok
}

// Package finds a package declaration by library and name. It satisfies
// scope.PackageLookup.
func (st *SymbolTable) Package(library, name string) (*ast.Package, bool) {
	sym, ok := st.Get(qualify(library, name))
	if !ok || sym.Kind != KindPackage {
		return nil, false
	}
	p, ok := sym.Node.(*ast.Package)
	return p, ok
}

func (st *SymbolTable) All() map[string]Symbol {
	st.mu.RLock()
	defer st.mu.RUnlock()
	// Return a copy
	result := make(map[string]Symbol)
	for k, v := range st.symbols {
		result[k] = v
	}
	return result
}

func (st *SymbolTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.symbols)
}
