package rhi

import "github.com/vkngwrapper/core/v2/common"

// RenderPassFlags adjust how a render pass may be used
type RenderPassFlags int32

var renderPassFlagsMapping = common.NewFlagStringMapping[RenderPassFlags]()

func (f RenderPassFlags) Register(str string) {
	renderPassFlagsMapping.Register(f, str)
}
func (f RenderPassFlags) String() string {
	return renderPassFlagsMapping.FlagsToString(f)
}

const (
	// RenderPassAllowUnorderedAccessWrites permits shaders inside the pass to write to unordered access views
	RenderPassAllowUnorderedAccessWrites RenderPassFlags = 1 << iota
	// RenderPassSuspending marks a pass that will be resumed by a later pass in another command list
	RenderPassSuspending
	// RenderPassResuming marks a pass that continues a suspended pass
	RenderPassResuming
)

func init() {
	RenderPassAllowUnorderedAccessWrites.Register("RenderPassAllowUnorderedAccessWrites")
	RenderPassSuspending.Register("RenderPassSuspending")
	RenderPassResuming.Register("RenderPassResuming")
}
