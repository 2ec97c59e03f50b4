package graph

// PropertyKind is the closed set of property value kinds.
type PropertyKind uint8

const (
	PropBoolean PropertyKind = iota
	PropInteger
	PropDouble
	PropEnum
	PropMatrix3x3
	PropFilepath
	PropString
)

// String returns the lowercase spelling used by the serializer's "type"
// field for property entries.
func (k PropertyKind) String() string {
	switch k {
	case PropBoolean:
		return "boolean"
	case PropInteger:
		return "integer"
	case PropDouble:
		return "double"
	case PropEnum:
		return "enum"
	case PropMatrix3x3:
		return "matrix3x3"
	case PropFilepath:
		return "filepath"
	case PropString:
		return "string"
	default:
		return "string"
	}
}

// ParsePropertyKind parses the serializer's lowercase spelling back into a
// PropertyKind. Unknown spellings yield PropString.
func ParsePropertyKind(s string) PropertyKind {
	for k := PropBoolean; k <= PropString; k++ {
		if k.String() == s {
			return k
		}
	}
	return PropString
}

// PropertyValue is the closed tagged union of scalar/matrix/path/enum values
// a node property may hold. Exactly one field is meaningful,
// selected by Kind.
type PropertyValue struct {
	Kind PropertyKind
	Boolean bool
	Integer int32
	Double float64
	Enum int32
	Matrix3 [9]float64
	Filepath string
	String string
}

// BoolValue constructs a PropBoolean PropertyValue.
func BoolValue(v bool) PropertyValue { return PropertyValue{Kind: PropBoolean, Boolean: v} }

// IntValue constructs a PropInteger PropertyValue.
func IntValue(v int32) PropertyValue { return PropertyValue{Kind: PropInteger, Integer: v} }

// DoubleValue constructs a PropDouble PropertyValue.
func DoubleValue(v float64) PropertyValue { return PropertyValue{Kind: PropDouble, Double: v} }

// EnumValue constructs a PropEnum PropertyValue.
func EnumValue(v int32) PropertyValue { return PropertyValue{Kind: PropEnum, Enum: v} }

// Matrix3x3Value constructs a PropMatrix3x3 PropertyValue from 9 elements in
// row-major order.
func Matrix3x3Value(m [9]float64) PropertyValue {
	return PropertyValue{Kind: PropMatrix3x3, Matrix3: m}
}

// FilepathValue constructs a PropFilepath PropertyValue.
func FilepathValue(v string) PropertyValue { return PropertyValue{Kind: PropFilepath, Filepath: v} }

// StringValue constructs a PropString PropertyValue.
func StringValue(v string) PropertyValue { return PropertyValue{Kind: PropString, String: v} }

// PropertyValidator inspects a candidate value before it is accepted.
// Returning false rejects the write; NodeSetProperty then returns false
// and the node is not tagged.
type PropertyValidator func(v PropertyValue) bool

// PropertyObserver is invoked after a value is accepted, to let the node
// type react to configuration changes (e.g. recompute a derived kernel).
type PropertyObserver func(v PropertyValue)

// PropertyConfig describes one property slot of a NodeConfig: its id,
// human-readable name, UI hint string, and optional validator/observer.
type PropertyConfig struct {
	ID PropertyID
	Name string
	Kind PropertyKind
	UIHint string
	Default PropertyValue
	Validator PropertyValidator
	Observer PropertyObserver
}
