package mesh

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/rhi/memutils"
)

// Statistics describes the manager's allocators
type Statistics struct {
	Meshes     int
	Attributes map[VertexAttribute]memutils.Statistics
	Indices    memutils.Statistics
	Submeshes  memutils.Statistics
}

func (m *Manager) Statistics() Statistics {
	stats := Statistics{
		Meshes:     m.meshes.Len(),
		Attributes: make(map[VertexAttribute]memutils.Statistics),
	}

	for attribute, target := range m.attributes {
		if target == nil {
			continue
		}
		var attributeStats memutils.Statistics
		target.allocator.AddStatistics(&attributeStats)
		stats.Attributes[VertexAttribute(attribute)] = attributeStats
	}

	m.indices.allocator.AddStatistics(&stats.Indices)
	m.metadata.allocator.AddStatistics(&stats.Submeshes)
	return stats
}

// WriteJSON writes a json document describing the manager's buffers
func (m *Manager) WriteJSON(writer *jwriter.Writer) {
	stats := m.Statistics()

	obj := writer.Object()
	obj.Name("ManagerId").String(m.id.String())
	obj.Name("Meshes").Int(stats.Meshes)

	attributesObj := obj.Name("Attributes").Object()
	for attribute := 0; attribute < attributeCount; attribute++ {
		attributeStats, ok := stats.Attributes[VertexAttribute(attribute)]
		if !ok {
			continue
		}

		attributeObj := attributesObj.Name(VertexAttribute(attribute).String()).Object()
		attributeStats.PrintJson(attributeObj)
		attributeObj.End()
	}
	attributesObj.End()

	indicesObj := obj.Name("Indices").Object()
	stats.Indices.PrintJson(indicesObj)
	indicesObj.End()

	submeshesObj := obj.Name("Submeshes").Object()
	stats.Submeshes.PrintJson(submeshesObj)
	submeshesObj.End()

	obj.End()
}

// BuildStatsString returns the output of WriteJSON as a string
func (m *Manager) BuildStatsString() string {
	writer := jwriter.NewWriter()
	m.WriteJSON(&writer)
	return string(writer.Bytes())
}
