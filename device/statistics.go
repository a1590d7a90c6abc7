package device

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics counts the objects a device currently owns
type Statistics struct {
	Buffers      int
	Textures     int
	BufferViews  int
	TextureViews int
	Pipelines    int
	RenderPasses int
	CommandLists int
	PendingSyncs int

	PooledCommandBuffers int
	PooledFences         int
	RetiringFences       int
}

func (d *Device) Statistics() Statistics {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	stats := Statistics{
		Buffers:      d.buffers.Len(),
		Textures:     d.textures.Len(),
		BufferViews:  d.bufferViews.Len(),
		TextureViews: d.textureViews.Len(),
		Pipelines:    d.pipelines.Len(),
		RenderPasses: d.renderPasses.Len(),
		CommandLists: d.commandLists.Len(),
		PendingSyncs: d.syncs.Len(),
		PooledFences: len(d.fencePool),

		RetiringFences: len(d.retiringFences),
	}

	for _, pool := range d.commandBufferPools {
		stats.PooledCommandBuffers += len(pool)
	}

	return stats
}

func (s Statistics) PrintJson(json jwriter.ObjectState) {
	json.Name("Buffers").Int(s.Buffers)
	json.Name("Textures").Int(s.Textures)
	json.Name("BufferViews").Int(s.BufferViews)
	json.Name("TextureViews").Int(s.TextureViews)
	json.Name("Pipelines").Int(s.Pipelines)
	json.Name("RenderPasses").Int(s.RenderPasses)
	json.Name("CommandLists").Int(s.CommandLists)
	json.Name("PendingSyncs").Int(s.PendingSyncs)
	json.Name("PooledCommandBuffers").Int(s.PooledCommandBuffers)
	json.Name("PooledFences").Int(s.PooledFences)
	json.Name("RetiringFences").Int(s.RetiringFences)
}

// BuildStatsString returns a json document describing the device's objects
func (d *Device) BuildStatsString() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	obj.Name("DeviceId").String(d.id.String())
	obj.Name("Driver").String(d.driver.Name())

	statsObj := obj.Name("Objects").Object()
	d.Statistics().PrintJson(statsObj)
	statsObj.End()

	obj.End()

	return string(writer.Bytes())
}
