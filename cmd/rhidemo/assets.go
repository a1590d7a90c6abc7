package main

import (
	"encoding/binary"
	"math"

	"github.com/vkngwrapper/rhi/render/mesh"
	"github.com/vkngwrapper/rhi/render/texture"
)

func putFloats(values ...float32) []byte {
	out := make([]byte, 0, 4*len(values))
	for _, value := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(value))
	}
	return out
}

// cubeMesh builds a unit cube with one submesh per face
func cubeMesh() mesh.MeshSpecification {
	faces := [6][3]float32{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

	var positions, normals, uvs []float32
	var indices []uint32
	var submeshes []mesh.SubmeshMetadata

	for face, normal := range faces {
		// two axes spanning the face
		var u, v [3]float32
		switch {
		case normal[0] != 0:
			u, v = [3]float32{0, 1, 0}, [3]float32{0, 0, 1}
		case normal[1] != 0:
			u, v = [3]float32{0, 0, 1}, [3]float32{1, 0, 0}
		default:
			u, v = [3]float32{1, 0, 0}, [3]float32{0, 1, 0}
		}

		for corner := 0; corner < 4; corner++ {
			su, sv := float32(corner&1)-0.5, float32(corner>>1)-0.5
			for axis := 0; axis < 3; axis++ {
				positions = append(positions, normal[axis]*0.5+u[axis]*su+v[axis]*sv)
			}
			normals = append(normals, normal[0], normal[1], normal[2])
			uvs = append(uvs, su+0.5, sv+0.5)
		}

		submeshes = append(submeshes, mesh.SubmeshMetadata{
			VertStart:  uint32(face * 4),
			VertCount:  4,
			IndexStart: uint32(len(indices)),
			IndexCount: 6,
		})
		// indices are relative to the submesh's first vertex
		indices = append(indices, 0, 1, 2, 2, 1, 3)
	}

	return mesh.MeshSpecification{
		Data: map[mesh.VertexAttribute][]byte{
			mesh.AttributePosition: putFloats(positions...),
			mesh.AttributeNormal:   putFloats(normals...),
			mesh.AttributeUV:       putFloats(uvs...),
		},
		Indices:   indices,
		Submeshes: submeshes,
	}
}

// checkerboard builds a full mip chain of a black and white checkerboard
func checkerboard(size uint32) []texture.MipData {
	var mips []texture.MipData

	for width := size; ; width /= 2 {
		data := make([]byte, 0, width*width*4)
		for y := uint32(0); y < width; y++ {
			for x := uint32(0); x < width; x++ {
				value := byte(0x20)
				if (x*size/width/2+y*size/width/2)%2 == 0 {
					value = 0xe0
				}
				data = append(data, value, value, value, 0xff)
			}
		}
		mips = append(mips, texture.MipData{Width: width, Height: width, Data: data})

		if width == 1 {
			return mips
		}
	}
}

// cameraData is a view-projection matrix orbiting the origin
func cameraData(frame int) []byte {
	angle := float64(frame) * math.Pi / 30
	sin, cos := float32(math.Sin(angle)), float32(math.Cos(angle))

	return putFloats(
		cos, 0, -sin, 0,
		0, 1, 0, 0,
		sin, 0, cos, 0,
		0, 0, -3, 1,
	)
}
