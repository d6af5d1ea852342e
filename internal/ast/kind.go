package ast

import "fmt"

// Kind identifies the syntactic category of a Node.
type Kind uint8

const (
	KindOther Kind = iota
	KindCompilationUnit

	// Declarations
	KindNamespace
	KindClass
	KindInterface
	KindTrait
	KindEnum
	KindAnonymousClass
	KindFunction
	KindMethod
	KindProperty
	KindParameter

	// Statements
	KindIf
	KindElseIf
	KindFor
	KindForeach
	KindWhile
	KindDo
	KindSwitch
	KindCase
	KindTry
	KindCatch
	KindReturn
	KindThrow
	KindUse

	// Expressions
	KindNew
	KindInstanceof
	KindStaticCall
	KindStaticPropertyFetch
	KindClassConstFetch
	KindFuncCall
	KindMethodCall
	KindBooleanAnd
	KindBooleanOr
	KindLogicalAnd
	KindLogicalOr
	KindTernary

	kindCount
)

var kindNames = [kindCount]string{
	KindOther:               "Other",
	KindCompilationUnit:     "CompilationUnit",
	KindNamespace:           "Namespace",
	KindClass:               "Class",
	KindInterface:           "Interface",
	KindTrait:               "Trait",
	KindEnum:                "Enum",
	KindAnonymousClass:      "AnonymousClass",
	KindFunction:            "Function",
	KindMethod:              "Method",
	KindProperty:            "Property",
	KindParameter:           "Parameter",
	KindIf:                  "StmtIf",
	KindElseIf:              "StmtElseIf",
	KindFor:                 "StmtFor",
	KindForeach:             "StmtForeach",
	KindWhile:               "StmtWhile",
	KindDo:                  "StmtDo",
	KindSwitch:              "StmtSwitch",
	KindCase:                "StmtCase",
	KindTry:                 "StmtTry",
	KindCatch:               "StmtCatch",
	KindReturn:              "StmtReturn",
	KindThrow:               "StmtThrow",
	KindUse:                 "StmtUse",
	KindNew:                 "ExprNew",
	KindInstanceof:          "ExprInstanceof",
	KindStaticCall:          "ExprStaticCall",
	KindStaticPropertyFetch: "ExprStaticPropertyFetch",
	KindClassConstFetch:     "ExprClassConstFetch",
	KindFuncCall:            "ExprFuncCall",
	KindMethodCall:          "ExprMethodCall",
	KindBooleanAnd:          "ExprBooleanAnd",
	KindBooleanOr:           "ExprBooleanOr",
	KindLogicalAnd:          "ExprLogicalAnd",
	KindLogicalOr:           "ExprLogicalOr",
	KindTernary:             "ExprTernary",
}

// String returns the event name used by analyzers, e.g. "Class" or "StmtIf".
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsDeclaration reports whether nodes of this kind can carry a declaration
// wrapper after decoration.
func (k Kind) IsDeclaration() bool {
	switch k {
	case KindNamespace, KindClass, KindInterface, KindFunction, KindMethod, KindProperty:
		return true
	}
	return false
}

// IsOpaque reports whether members below nodes of this kind are kept out
// of the registry. Traits, enums and anonymous classes are opaque.
func (k Kind) IsOpaque() bool {
	return k == KindTrait || k == KindEnum || k == KindAnonymousClass
}

// MarshalText encodes the kind by name so persisted trees survive enum reordering.
func (k Kind) MarshalText() ([]byte, error) {
	if k >= kindCount {
		return nil, fmt.Errorf("unknown node kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown node kind %q", text)
	}
	*k = kind
	return nil
}

// ParseKind returns the kind with the given event name.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return KindOther, false
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Modifier is a bit set of declaration modifiers.
type Modifier uint8

const (
	ModPublic Modifier = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModFinal
)

// Has reports whether all bits of m2 are set.
func (m Modifier) Has(m2 Modifier) bool {
	return m&m2 == m2
}
