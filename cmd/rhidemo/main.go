// Command rhidemo drives the runtime on the software driver for a few frames: it loads a mesh and a
// texture, keeps a persistent camera constant up to date, draws every submesh with per-frame transient
// constants and prints the statistics of every manager at the end.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/config"
	"github.com/vkngwrapper/rhi/device"
	"github.com/vkngwrapper/rhi/garbage"
	"github.com/vkngwrapper/rhi/render/constants"
	"github.com/vkngwrapper/rhi/render/mesh"
	"github.com/vkngwrapper/rhi/render/texture"
	"github.com/vkngwrapper/rhi/soft"
)

const (
	targetWidth  = 64
	targetHeight = 64
	cameraSize   = 64
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		frames     = flag.Int("frames", 6, "number of frames to render")
		stats      = flag.Bool("stats", true, "print statistics as json when done")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
			os.Exit(1)
		}
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}

	err = run(context.Background(), logger, cfg, *frames, *stats)
	if err != nil {
		logger.Error("Demo failed", slog.Any("error", err))
		os.Exit(1)
	}
}

type renderer struct {
	logger    *slog.Logger
	driver    *soft.Driver
	device    *device.Device
	bin       *garbage.Bin
	constants *constants.Manager
	meshes    *mesh.Manager
	textures  *texture.Manager

	target     rhi.Texture
	targetView rhi.TextureView
	pass       rhi.RenderPass
	pipeline   rhi.Pipeline

	// per frame slot, released once the bin says the slot has retired
	lists       []rhi.CommandList
	copyFences  []rhi.SyncReceipt
	frameFences []rhi.SyncReceipt
}

func run(ctx context.Context, logger *slog.Logger, cfg config.Config, frames int, printStats bool) error {
	if cfg.Device.ManualExecution {
		return errors.New("the demo needs the software driver to execute on its own; turn off device.manual_execution")
	}

	drv, err := soft.New(logger, cfg.DriverOptions())
	if err != nil {
		return err
	}

	dev, err := device.New(logger, drv, cfg.DeviceOptions())
	if err != nil {
		drv.Destroy()
		return err
	}

	r := &renderer{
		logger:      logger,
		driver:      drv,
		device:      dev,
		lists:       make([]rhi.CommandList, cfg.Device.MaxFramesInFlight),
		copyFences:  make([]rhi.SyncReceipt, cfg.Device.MaxFramesInFlight),
		frameFences: make([]rhi.SyncReceipt, cfg.Device.MaxFramesInFlight),
	}
	defer r.destroy(ctx)

	err = r.init(cfg)
	if err != nil {
		return err
	}

	cube, err := r.meshes.LoadMesh(ctx, cubeMesh())
	if err != nil {
		return err
	}
	defer func() { _ = r.meshes.FreeMesh(cube.Mesh) }()

	checker, checkerDescriptor, err := r.textures.Allocate(ctx, "checkerboard", checkerboard(16))
	if err != nil {
		return err
	}
	defer func() { _ = r.textures.Free(checker) }()

	camera, err := r.constants.AllocatePersistent(cameraSize, cameraData(0), false)
	if err != nil {
		return err
	}
	defer func() { _ = r.constants.FreePersistent(camera) }()

	for frame := 0; frame < frames; frame++ {
		err = r.frame(ctx, frame, cube, checkerDescriptor, camera)
		if err != nil {
			return errors.Wrapf(err, "frame %d", frame)
		}
	}

	err = dev.Flush(ctx)
	if err != nil {
		return err
	}

	if printStats {
		fmt.Println(r.statistics())
	}

	return drv.Err()
}

func (r *renderer) init(cfg config.Config) error {
	var err error

	r.bin, err = garbage.New(r.logger, cfg.Device.MaxFramesInFlight)
	if err != nil {
		return err
	}

	r.constants, err = constants.New(r.logger, r.device, r.bin, cfg.ConstantOptions())
	if err != nil {
		return err
	}

	r.meshes, err = mesh.New(r.logger, r.device, r.bin, cfg.MeshSizes())
	if err != nil {
		return err
	}

	r.textures, err = texture.New(r.logger, r.device, r.bin, cfg.TextureOptions())
	if err != nil {
		return err
	}

	r.target, err = r.device.CreateTexture(rhi.TextureDesc{
		Label:        "backbuffer",
		Size:         gputypes.Extent3D{Width: targetWidth, Height: targetHeight, DepthOrArrayLayers: 1},
		Dimension:    gputypes.TextureDimension2D,
		Format:       gputypes.TextureFormatBGRA8Unorm,
		MipLevels:    1,
		Usage:        gputypes.TextureUsageRenderAttachment,
		InitialState: rhi.StateRenderTarget,
	})
	if err != nil {
		return err
	}

	r.targetView, err = r.device.CreateTextureView(r.target, rhi.TextureViewDesc{
		Type:      rhi.ViewRenderTarget,
		Format:    gputypes.TextureFormatBGRA8Unorm,
		Dimension: gputypes.TextureViewDimension2D,
	})
	if err != nil {
		return err
	}

	r.pass, err = r.device.CreateRenderPass(rhi.NewRenderPassBuilder("main").
		AddClearedRenderTarget(r.targetView, gputypes.Color{R: 0.1, G: 0.1, B: 0.15, A: 1}).
		Build())
	if err != nil {
		return err
	}

	r.pipeline, err = r.device.CreateGraphicsPipeline(rhi.GraphicsPipelineDesc{
		Label:               "textured mesh",
		VertexShader:        []byte("vs_main"),
		PixelShader:         []byte("ps_main"),
		Topology:            gputypes.PrimitiveTopologyTriangleList,
		CullMode:            gputypes.CullModeNone,
		RenderTargetFormats: []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm},
	})
	return err
}

// beginFrame waits for the frame slot to retire, then releases what the slot's last frame used
func (r *renderer) beginFrame(ctx context.Context) error {
	err := r.bin.BeginFrame(ctx)
	if errors.Is(err, garbage.ErrInFlightBudgetExceeded) {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "Waiting for frame slot", slog.Int("slot", r.bin.CurrentFrame()))

		err = r.bin.WaitFrame(ctx)
		if err != nil {
			return err
		}
		err = r.bin.BeginFrame(ctx)
	}
	if err != nil {
		return err
	}

	// BeginFrame consumed the slot's frame receipt
	slot := r.bin.CurrentFrame()
	r.frameFences[slot] = rhi.NoSync

	if r.copyFences[slot] != rhi.NoSync {
		err = r.device.WaitForGPU(ctx, r.copyFences[slot])
		if err != nil {
			return err
		}
		r.copyFences[slot] = rhi.NoSync
	}
	if r.lists[slot] != 0 {
		err = r.device.RecycleCommandList(r.lists[slot])
		if err != nil {
			return err
		}
		r.lists[slot] = 0
	}

	return nil
}

func (r *renderer) frame(ctx context.Context, frame int, cube mesh.MeshContainer, textureDescriptor uint32, camera constants.PersistentConstant) error {
	err := r.beginFrame(ctx)
	if err != nil {
		return err
	}
	slot := r.bin.CurrentFrame()

	// The first frame's copies carry the initial contents
	if frame > 0 {
		err = r.constants.Upload(camera, cameraData(frame))
		if err != nil {
			return err
		}
	}

	copies, err := r.constants.ExecuteCopies(ctx, rhi.NoSync, true, rhi.QueueCopy)
	if err != nil {
		return err
	}
	r.copyFences[slot] = copies

	cameraDescriptor, err := r.constants.GlobalView(camera)
	if err != nil {
		return err
	}
	positions, err := r.meshes.AttributeBuffer(mesh.AttributePosition)
	if err != nil {
		return err
	}
	submeshes, err := r.meshes.SubmeshMetadataBuffer()
	if err != nil {
		return err
	}

	var commands rhi.RenderCommandList
	commands.Submit(rhi.BeginRenderPass{RenderPass: r.pass, Width: targetWidth, Height: targetHeight})
	commands.Submit(rhi.SetPipeline{Pipeline: r.pipeline})

	for submesh := 0; submesh < cube.SubmeshCount; submesh++ {
		tint, tintDescriptor, err := r.constants.AllocateTransient(16)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(tint[0:], math.Float32bits(float32(submesh)/float32(cube.SubmeshCount)))
		binary.LittleEndian.PutUint32(tint[4:], uint32(frame))

		metadataIndex, err := r.meshes.SubmeshMetadataIndex(cube.Mesh, submesh)
		if err != nil {
			return err
		}
		metadata, err := r.meshes.SubmeshMetadata(cube.Mesh, submesh)
		if err != nil {
			return err
		}
		indexStart, err := r.meshes.IndexStart(cube.Mesh, submesh)
		if err != nil {
			return err
		}

		commands.Submit(rhi.UpdateShaderArgs{Constants: []uint32{
			cameraDescriptor, tintDescriptor, positions, submeshes, metadataIndex, textureDescriptor,
		}})
		commands.Submit(rhi.DrawIndexed{
			IndexBuffer:        r.meshes.IndexBuffer(),
			IndicesPerInstance: metadata.IndexCount,
			InstanceCount:      1,
			IndexStart:         indexStart,
		})
	}
	commands.Submit(rhi.EndRenderPass{})

	list, err := r.device.AllocateCommandList(rhi.QueueGraphics)
	if err != nil {
		return err
	}
	r.lists[slot] = list

	err = r.device.CompileCommandList(list, &commands)
	if err != nil {
		return err
	}

	receipt, err := r.device.SubmitCommandLists([]rhi.CommandList{list}, rhi.QueueGraphics, copies, true)
	if err != nil {
		return err
	}

	r.frameFences[slot] = receipt
	r.bin.EndFrame(r.device.Retirement(receipt))

	r.logger.LogAttrs(ctx, slog.LevelDebug, "Frame submitted",
		slog.Int("frame", frame),
		slog.Int("slot", slot),
		slog.Int("draws", cube.SubmeshCount),
		slog.Int("constantVersion", r.constants.CurrentVersion()),
	)
	return nil
}

func (r *renderer) statistics() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()

	deviceObj := obj.Name("Device").Object()
	r.device.Statistics().PrintJson(deviceObj)
	deviceObj.End()

	obj.Name("Constants")
	r.constants.WriteJSON(&writer)

	obj.Name("Meshes")
	r.meshes.WriteJSON(&writer)

	obj.Name("Textures").Int(r.textures.Count())
	obj.Name("CommandsExecuted").Int(len(r.driver.Executed()))

	obj.End()
	return string(writer.Bytes())
}

func (r *renderer) destroy(ctx context.Context) {
	err := r.device.Flush(ctx)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "Failed to flush the device", slog.Any("error", err))
	}

	for slot := range r.lists {
		if r.frameFences[slot] != rhi.NoSync {
			_ = r.device.WaitForGPU(ctx, r.frameFences[slot])
		}
		if r.copyFences[slot] != rhi.NoSync {
			_ = r.device.WaitForGPU(ctx, r.copyFences[slot])
		}
		if r.lists[slot] != 0 {
			_ = r.device.RecycleCommandList(r.lists[slot])
		}
	}

	if r.bin != nil {
		r.bin.Flush()
	}

	if r.textures != nil {
		_ = r.textures.Close(ctx)
	}
	if r.meshes != nil {
		_ = r.meshes.Close(ctx)
	}
	if r.constants != nil {
		_ = r.constants.Close(ctx)
	}

	if r.pipeline != 0 {
		_ = r.device.FreePipeline(r.pipeline)
	}
	if r.pass != 0 {
		_ = r.device.FreeRenderPass(r.pass)
	}
	if r.targetView != 0 {
		_ = r.device.FreeTextureView(r.targetView)
	}
	if r.target != 0 {
		_ = r.device.FreeTexture(r.target)
	}

	err = r.device.Destroy()
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "Failed to destroy the device", slog.Any("error", err))
	}
}
