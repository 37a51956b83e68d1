package cube

// Shade distinguishes the faces hidden behind the cube from the visible ones
type Shade int

const (
	Dark Shade = iota
	Light
)

func (s Shade) String() string {
	switch s {
	case Dark:
		return "dark"
	case Light:
		return "light"
	default:
		return "unknown"
	}
}

// Face is a quadrilateral given by four canonical vertex indices in
// drawing order.
type Face struct {
	Vertices [4]int
	Shade    Shade
}

// Edges returns the four index pairs joined when drawing the face
func (f Face) Edges() [4][2]int {
	v := f.Vertices
	return [4][2]int{{v[0], v[1]}, {v[1], v[2]}, {v[2], v[3]}, {v[3], v[0]}}
}

// Faces lists the six faces, back faces first so the front ones are drawn
// over them.
var Faces = [6]Face{
	{Vertices: [4]int{1, 3, 7, 5}, Shade: Dark},
	{Vertices: [4]int{7, 6, 4, 5}, Shade: Dark},
	{Vertices: [4]int{3, 7, 6, 2}, Shade: Dark},
	{Vertices: [4]int{0, 4, 6, 2}, Shade: Light},
	{Vertices: [4]int{1, 3, 2, 0}, Shade: Light},
	{Vertices: [4]int{1, 5, 4, 0}, Shade: Light},
}
