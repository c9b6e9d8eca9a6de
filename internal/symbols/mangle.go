package symbols

import "strings"

// reservedConstructorName is the internal name used for a spec's
// constructor. It is reserved from user code so that a user-declared
// function can never collide with it.
const reservedConstructorName = "$construct"

// MangleFunction produces the mangled key for a function or constructor:
// "<spec>::<name>$<argT1>$<argT2>…", with spec empty for module-level
// functions. argTypes are the mangled/canonical names of the parameter
// types, in declaration order.
func MangleFunction(specName, funcName string, argTypes []string) string {
	var sb strings.Builder
	sb.WriteString(specName)
	sb.WriteString("::")
	sb.WriteString(funcName)
	for _, t := range argTypes {
		sb.WriteByte('$')
		sb.WriteString(t)
	}
	return sb.String()
}

// ConstructorName is the fixed, user-unreachable identifier used internally
// for a spec's constructor function.
func ConstructorName() string {
	return reservedConstructorName
}

// MangleGetter produces the mangled key for a property getter:
// "<spec><-<name>".
func MangleGetter(specName, propName string) string {
	return specName + "<-" + propName
}

// MangleSetter produces the mangled key for a property setter:
// "<spec>-><name>".
func MangleSetter(specName, propName string) string {
	return specName + "->" + propName
}

// MangleLocal produces the mangled key for a local variable or parameter:
// "Local%%<name>".
func MangleLocal(name string) string {
	return "Local%%" + name
}

// MangleGenericTemplate produces the mangled key for an unapplied generic
// template: "<name>~~…", one '~' per type parameter, so that List<T> and
// Pair<T,U> map to distinct templates.
func MangleGenericTemplate(name string, paramCount int) string {
	return name + "~~" + strings.Repeat("~", paramCount)
}

// MangleGenericApplied produces the mangled key for an applied generic:
// "<name><T1,T2,…>", where each Tn is the mangled name of the concrete
// argument type.
func MangleGenericApplied(name string, argTypeNames []string) string {
	return name + "<" + strings.Join(argTypeNames, ",") + ">"
}
