package constants

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/rhi/memutils"
)

// VersionStatistics describes one version's device-local and staging allocators
type VersionStatistics struct {
	Persistent memutils.DetailedStatistics
	Staging    memutils.DetailedStatistics
}

type Statistics struct {
	Transient      memutils.DetailedStatistics
	Versions       []VersionStatistics
	LiveConstants  int
	PendingUploads int
	CurrentVersion int
}

func (m *Manager) Statistics() Statistics {
	stats := Statistics{
		Versions:       make([]VersionStatistics, len(m.versions)),
		LiveConstants:  m.persistent.Len(),
		PendingUploads: m.PendingUploads(),
		CurrentVersion: m.currentVersion,
	}

	stats.Transient.Clear()
	m.transient.Metadata().AddDetailedStatistics(&stats.Transient)

	for index := range m.versions {
		versionStats := &stats.Versions[index]
		versionStats.Persistent.Clear()
		versionStats.Staging.Clear()

		m.versions[index].allocator.AddDetailedStatistics(&versionStats.Persistent)
		m.versions[index].staging.Metadata().AddDetailedStatistics(&versionStats.Staging)
	}

	return stats
}

// WriteJSON writes a json document describing every allocator the manager owns
func (m *Manager) WriteJSON(writer *jwriter.Writer) {
	stats := m.Statistics()

	obj := writer.Object()
	obj.Name("CurrentVersion").Int(stats.CurrentVersion)
	obj.Name("LiveConstants").Int(stats.LiveConstants)
	obj.Name("PendingUploads").Int(stats.PendingUploads)

	transientObj := obj.Name("Transient").Object()
	stats.Transient.PrintJson(transientObj)
	m.transient.Metadata().BlockJsonData(transientObj)
	transientObj.End()

	versionsArr := obj.Name("Versions").Array()
	for index := range m.versions {
		versionObj := versionsArr.Object()
		versionObj.Name("Version").Int(index)

		persistentObj := versionObj.Name("Persistent").Object()
		stats.Versions[index].Persistent.PrintJson(persistentObj)
		persistentObj.End()

		stagingObj := versionObj.Name("Staging").Object()
		m.versions[index].staging.Metadata().BlockJsonData(stagingObj)
		stagingObj.End()

		versionObj.End()
	}
	versionsArr.End()

	obj.End()
}

// BuildStatsString returns the output of WriteJSON as a string
func (m *Manager) BuildStatsString() string {
	writer := jwriter.NewWriter()
	m.WriteJSON(&writer)
	return string(writer.Bytes())
}
