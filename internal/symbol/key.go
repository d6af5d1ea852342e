package symbol

import "strings"

// Key is the name-based handle references use to find a declaration:
// the case-folded qualified name plus the kind suffix. Unlike an ID it can
// be computed from a raw name without knowing the declaring file.
type Key string

// Kind returns the kind encoded in the key suffix.
func (k Key) Kind() (Kind, bool) {
	return kindFromSuffix(string(k))
}

func (k Key) String() string {
	return string(k)
}

// Name returns the key without its kind suffix.
func (k Key) Name() string {
	if _, ok := k.Kind(); ok {
		return string(k[:len(k)-2])
	}
	return string(k)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, `\`))
}

// NamespaceKey returns the key of a namespace.
func NamespaceKey(name string) Key {
	return Key(normalize(name) + KindNamespace.Suffix())
}

// TypeKey returns the key of a class or interface.
func TypeKey(qualifiedName string, kind Kind) Key {
	return Key(normalize(qualifiedName) + kind.Suffix())
}

// FunctionKey returns the key of a function.
func FunctionKey(qualifiedName string) Key {
	return Key(normalize(qualifiedName) + "()" + KindFunction.Suffix())
}

// MethodKey returns the key of a method declared on typeName.
func MethodKey(typeName, method string) Key {
	return Key(normalize(typeName) + "::" + strings.ToLower(method) + "()" + KindMethod.Suffix())
}

// PropertyKey returns the key of a property declared on typeName.
// Property names are case-sensitive and keep their case.
func PropertyKey(typeName, property string) Key {
	return Key(normalize(typeName) + "::$" + strings.TrimPrefix(property, "$") + KindProperty.Suffix())
}
