package mesh

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/vkngwrapper/rhi/handle"
)

// VertexAttribute selects one of the non-interleaved vertex streams
type VertexAttribute int32

const (
	AttributePosition VertexAttribute = iota
	AttributeNormal
	AttributeUV
	AttributeTangent

	attributeCount int = iota
)

var vertexAttributeMapping = map[VertexAttribute]string{
	AttributePosition: "Position",
	AttributeNormal:   "Normal",
	AttributeUV:       "UV",
	AttributeTangent:  "Tangent",
}

func (a VertexAttribute) String() string {
	str, ok := vertexAttributeMapping[a]
	if !ok {
		return "VertexAttribute(" + strconv.Itoa(int(a)) + ")"
	}
	return str
}

// Stride is the size in bytes of one vertex's worth of the attribute
func (a VertexAttribute) Stride() int {
	switch a {
	case AttributePosition, AttributeNormal, AttributeTangent:
		return 3 * 4
	case AttributeUV:
		return 2 * 4
	default:
		return 0
	}
}

// Mesh names a mesh loaded by a Manager
type Mesh handle.Handle

func (m Mesh) String() string {
	return "Mesh(" + handle.Handle(m).String() + ")"
}

// SubmeshMetadata locates a submesh inside the vertex and index data of its mesh
type SubmeshMetadata struct {
	VertStart  uint32
	VertCount  uint32
	IndexStart uint32
	IndexCount uint32
}

// MeshSpecification is the data of one mesh: the concatenation of its submeshes
type MeshSpecification struct {
	Data      map[VertexAttribute][]byte
	Indices   []uint32
	Submeshes []SubmeshMetadata
}

// SizeSpecification sizes the buffers of a Manager. Attributes without a size cannot be loaded.
type SizeSpecification struct {
	BufferSizes     map[VertexAttribute]int
	IndexBufferSize int
	StagingSize     int
	// MaxSubmeshes is the capacity of the submesh metadata buffer
	MaxSubmeshes int
}

// MeshContainer is the result of loading a mesh
type MeshContainer struct {
	Mesh         Mesh
	SubmeshCount int
	ManagerID    uuid.UUID
}
