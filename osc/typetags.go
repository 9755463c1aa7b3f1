package osc

type TypeTag rune

const (
	TypeInt32   TypeTag = 'i'
	TypeFloat32 TypeTag = 'f'
	TypeInvalid TypeTag = 0
)

// ToTypeTag returns the OSC TypeTag for the given argument.
// Returns TypeInvalid if the argument type is unsupported.
func ToTypeTag(arg interface{}) TypeTag {
	switch arg.(type) {
	case int32:
		return TypeInt32
	case float32:
		return TypeFloat32
	default:
		return TypeInvalid
	}
}

// GetTypeTag returns the type tag string for the given argument.
func GetTypeTag(arg interface{}) (string, error) {
	t := ToTypeTag(arg)
	if t == TypeInvalid {
		return "", unsupportedType(arg)
	}
	return string(t), nil
}
