package gltf

import "fmt"

// ComponentType is the numeric storage type of one accessor component.
type ComponentType uint8

const (
	ComponentUnknown       ComponentType = iota // Unrecognized or absent code
	ComponentByte                               // 5120, signed 8-bit
	ComponentUnsignedByte                       // 5121, unsigned 8-bit
	ComponentShort                              // 5122, signed 16-bit
	ComponentUnsignedShort                      // 5123, unsigned 16-bit
	ComponentUnsignedInt                        // 5125, unsigned 32-bit
	ComponentFloat                              // 5126, 32-bit float
)

// componentTypeFromCode translates a manifest componentType code.
func componentTypeFromCode(code int) ComponentType {
	switch code {
	case 5120:
		return ComponentByte
	case 5121:
		return ComponentUnsignedByte
	case 5122:
		return ComponentShort
	case 5123:
		return ComponentUnsignedShort
	case 5125:
		return ComponentUnsignedInt
	case 5126:
		return ComponentFloat
	default:
		return ComponentUnknown
	}
}

// Code returns the manifest code for the component type, or 0 if unknown.
func (c ComponentType) Code() int {
	switch c {
	case ComponentByte:
		return 5120
	case ComponentUnsignedByte:
		return 5121
	case ComponentShort:
		return 5122
	case ComponentUnsignedShort:
		return 5123
	case ComponentUnsignedInt:
		return 5125
	case ComponentFloat:
		return 5126
	default:
		return 0
	}
}

// Size returns the component width in bytes (0 for unknown).
func (c ComponentType) Size() int {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// String returns a human-readable component type name.
func (c ComponentType) String() string {
	switch c {
	case ComponentByte:
		return "BYTE"
	case ComponentUnsignedByte:
		return "UNSIGNED_BYTE"
	case ComponentShort:
		return "SHORT"
	case ComponentUnsignedShort:
		return "UNSIGNED_SHORT"
	case ComponentUnsignedInt:
		return "UNSIGNED_INT"
	case ComponentFloat:
		return "FLOAT"
	default:
		return "UNKNOWN"
	}
}

// AccessorType is the element shape of an accessor.
type AccessorType uint8

const (
	TypeUnknown AccessorType = iota
	TypeScalar
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat2
	TypeMat3
	TypeMat4
)

func accessorTypeFromTag(tag string) AccessorType {
	switch tag {
	case "SCALAR":
		return TypeScalar
	case "VEC2":
		return TypeVec2
	case "VEC3":
		return TypeVec3
	case "VEC4":
		return TypeVec4
	case "MAT2":
		return TypeMat2
	case "MAT3":
		return TypeMat3
	case "MAT4":
		return TypeMat4
	default:
		return TypeUnknown
	}
}

// String returns the manifest tag for the type.
func (t AccessorType) String() string {
	switch t {
	case TypeScalar:
		return "SCALAR"
	case TypeVec2:
		return "VEC2"
	case TypeVec3:
		return "VEC3"
	case TypeVec4:
		return "VEC4"
	case TypeMat2:
		return "MAT2"
	case TypeMat3:
		return "MAT3"
	case TypeMat4:
		return "MAT4"
	default:
		return "UNKNOWN"
	}
}

// Components returns the number of components per element.
func (t AccessorType) Components() int {
	return t.Columns() * t.Rows()
}

// Columns returns the matrix column count (1 for scalars and vectors).
func (t AccessorType) Columns() int {
	switch t {
	case TypeScalar, TypeVec2, TypeVec3, TypeVec4:
		return 1
	case TypeMat2:
		return 2
	case TypeMat3:
		return 3
	case TypeMat4:
		return 4
	default:
		return 0
	}
}

// Rows returns the number of components in one column.
func (t AccessorType) Rows() int {
	switch t {
	case TypeScalar:
		return 1
	case TypeVec2, TypeMat2:
		return 2
	case TypeVec3, TypeMat3:
		return 3
	case TypeVec4, TypeMat4:
		return 4
	default:
		return 0
	}
}

// IsMatrix reports whether the type is one of the MAT shapes.
func (t AccessorType) IsMatrix() bool {
	return t == TypeMat2 || t == TypeMat3 || t == TypeMat4
}

// Target is the intended use of a buffer view.
type Target uint8

const (
	TargetNone               Target = iota // No target declared
	TargetArrayBuffer                      // 34962, vertex attributes
	TargetElementArrayBuffer               // 34963, vertex indices
	TargetUnknown                          // Declared with an unrecognized code
)

func targetFromCode(code int) Target {
	switch code {
	case 34962:
		return TargetArrayBuffer
	case 34963:
		return TargetElementArrayBuffer
	default:
		return TargetUnknown
	}
}

// String returns a human-readable target name.
func (t Target) String() string {
	switch t {
	case TargetNone:
		return "NONE"
	case TargetArrayBuffer:
		return "ARRAY_BUFFER"
	case TargetElementArrayBuffer:
		return "ELEMENT_ARRAY_BUFFER"
	default:
		return "UNKNOWN"
	}
}

// Mode is the primitive topology.
type Mode uint8

const (
	ModePoints Mode = iota
	ModeLines
	ModeLineLoop
	ModeLineStrip
	ModeTriangles
	ModeTriangleStrip
	ModeTriangleFan
	ModeUnknown
)

// DefaultMode is used when a primitive omits "mode".
const DefaultMode = ModeTriangles

func modeFromCode(code int) Mode {
	if code < 0 || code > int(ModeTriangleFan) {
		return ModeUnknown
	}
	return Mode(code)
}

// String returns a human-readable topology name.
func (m Mode) String() string {
	switch m {
	case ModePoints:
		return "POINTS"
	case ModeLines:
		return "LINES"
	case ModeLineLoop:
		return "LINE_LOOP"
	case ModeLineStrip:
		return "LINE_STRIP"
	case ModeTriangles:
		return "TRIANGLES"
	case ModeTriangleStrip:
		return "TRIANGLE_STRIP"
	case ModeTriangleFan:
		return "TRIANGLE_FAN"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Attribute is a vertex attribute role of a primitive.
type Attribute uint8

const (
	AttrPosition Attribute = iota
	AttrNormal
	AttrTangent
	AttrTexCoord0
	AttrTexCoord1
	AttrColor0
)

// attributeFromName returns the role for a manifest attribute name.
// Names outside the supported set report ok=false and are ignored.
func attributeFromName(name string) (Attribute, bool) {
	switch name {
	case "POSITION":
		return AttrPosition, true
	case "NORMAL":
		return AttrNormal, true
	case "TANGENT":
		return AttrTangent, true
	case "TEXCOORD_0":
		return AttrTexCoord0, true
	case "TEXCOORD_1":
		return AttrTexCoord1, true
	case "COLOR_0":
		return AttrColor0, true
	default:
		return 0, false
	}
}

// String returns the manifest attribute name.
func (a Attribute) String() string {
	switch a {
	case AttrPosition:
		return "POSITION"
	case AttrNormal:
		return "NORMAL"
	case AttrTangent:
		return "TANGENT"
	case AttrTexCoord0:
		return "TEXCOORD_0"
	case AttrTexCoord1:
		return "TEXCOORD_1"
	case AttrColor0:
		return "COLOR_0"
	default:
		return fmt.Sprintf("Attribute(%d)", a)
	}
}
