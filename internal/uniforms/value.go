package uniforms

import "github.com/go-gl/mathgl/mgl32"

// Kind tags the type of a parameter value.
type Kind uint8

const (
	KindFloat Kind = iota + 1
	KindUint
	KindVec2
	KindVec3
	KindVec4
	KindMat4
	KindTexture
)

var kindNames = map[Kind]string{
	KindFloat:   "float",
	KindUint:    "uint",
	KindVec2:    "vec2",
	KindVec3:    "vec3",
	KindVec4:    "vec4",
	KindMat4:    "mat4",
	KindTexture: "texture",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "invalid"
}

// Value is one parameter value. Floats, vectors and the matrix share one column-major array.
type Value struct {
	kind    Kind
	f       [16]float32
	u       uint32
	texture any
}

func Float(f float32) Value { return Value{kind: KindFloat, f: [16]float32{f}} }

func Uint(u uint32) Value { return Value{kind: KindUint, u: u} }

func Vec2(v mgl32.Vec2) Value { return Value{kind: KindVec2, f: [16]float32{v[0], v[1]}} }

func Vec3(v mgl32.Vec3) Value { return Value{kind: KindVec3, f: [16]float32{v[0], v[1], v[2]}} }

func Vec4(v mgl32.Vec4) Value { return Value{kind: KindVec4, f: [16]float32{v[0], v[1], v[2], v[3]}} }

func Mat4(m mgl32.Mat4) Value { return Value{kind: KindMat4, f: m} }

// Texture wraps an opaque texture handle. The handle is passed through untouched.
func Texture(handle any) Value { return Value{kind: KindTexture, texture: handle} }

func (v Value) Kind() Kind { return v.kind }

// Floats returns the float components of the value: 1 for a float, 2-4 for vectors, 16 for a matrix.
// It returns nil for uint and texture values.
func (v Value) Floats() []float32 {
	switch v.kind {
	case KindFloat:
		return v.f[:1]
	case KindVec2:
		return v.f[:2]
	case KindVec3:
		return v.f[:3]
	case KindVec4:
		return v.f[:4]
	case KindMat4:
		return v.f[:]
	}
	return nil
}

func (v Value) Float() float32 { return v.f[0] }

func (v Value) Uint() uint32 { return v.u }

func (v Value) Vec3() mgl32.Vec3 { return mgl32.Vec3{v.f[0], v.f[1], v.f[2]} }

func (v Value) Mat4() mgl32.Mat4 { return v.f }

func (v Value) Texture() any { return v.texture }
