// Package config reads the runtime's TOML configuration file and turns it into the option structs of the
// packages it configures.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/vkngwrapper/rhi/device"
	"github.com/vkngwrapper/rhi/render/constants"
	"github.com/vkngwrapper/rhi/render/mesh"
	"github.com/vkngwrapper/rhi/render/texture"
	"github.com/vkngwrapper/rhi/soft"
)

type Device struct {
	// ExternallySynchronized turns off the device's internal locking
	ExternallySynchronized bool `toml:"externally_synchronized"`
	MaxFramesInFlight      int  `toml:"max_frames_in_flight"`
	// ManualExecution keeps the software driver from executing anything until it is stepped
	ManualExecution bool `toml:"manual_execution"`
	MaxDescriptors  int  `toml:"max_descriptors"`
}

type Constants struct {
	MaxVersions     int `toml:"max_versions"`
	Quantum         int `toml:"quantum"`
	MaxConstantSize int `toml:"max_constant_size"`
	TransientSize   int `toml:"transient_size"`
	PersistentSize  int `toml:"persistent_size"`
	StagingSize     int `toml:"staging_size"`
}

// Mesh sizes the mesh manager. An attribute buffer size of 0 leaves the attribute out.
type Mesh struct {
	PositionBufferSize int `toml:"position_buffer_size"`
	NormalBufferSize   int `toml:"normal_buffer_size"`
	UVBufferSize       int `toml:"uv_buffer_size"`
	TangentBufferSize  int `toml:"tangent_buffer_size"`
	IndexBufferSize    int `toml:"index_buffer_size"`
	StagingSize        int `toml:"staging_size"`
	MaxSubmeshes       int `toml:"max_submeshes"`
}

type Texture struct {
	StagingSize int `toml:"staging_size"`
}

type Log struct {
	Level string `toml:"level"`
	// Format is one of text, json or logfmt
	Format          string `toml:"format"`
	ReportTimestamp bool   `toml:"report_timestamp"`
	Prefix          string `toml:"prefix"`
}

type Config struct {
	Device    Device    `toml:"device"`
	Constants Constants `toml:"constants"`
	Mesh      Mesh      `toml:"mesh"`
	Texture   Texture   `toml:"texture"`
	Log       Log       `toml:"log"`
}

// Default is the configuration used for any key a file leaves out
func Default() Config {
	return Config{
		Device: Device{
			MaxFramesInFlight: 2,
		},
		Constants: Constants{
			MaxVersions:     constants.DefaultMaxVersions,
			Quantum:         constants.DefaultQuantum,
			MaxConstantSize: constants.DefaultMaxConstantSize,
			TransientSize:   constants.DefaultTransientSize,
			PersistentSize:  constants.DefaultPersistentSize,
		},
		Mesh: Mesh{
			PositionBufferSize: 12 << 20,
			NormalBufferSize:   12 << 20,
			UVBufferSize:       8 << 20,
			TangentBufferSize:  12 << 20,
			IndexBufferSize:    mesh.DefaultIndexBufferSize,
			StagingSize:        mesh.DefaultStagingSize,
			MaxSubmeshes:       mesh.DefaultMaxSubmeshes,
		},
		Texture: Texture{
			StagingSize: texture.DefaultStagingSize,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Parse decodes a TOML document on top of Default and validates the result. Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	err := decoder.Decode(&cfg)
	if err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, column := decodeErr.Position()
			return Config{}, errors.Wrapf(err, "line %d column %d", row, column)
		}
		return Config{}, errors.Wrap(err, "failed to decode configuration")
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read configuration %q", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "configuration %q", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Device.MaxFramesInFlight <= 0 {
		return errors.Newf("device.max_frames_in_flight must be greater than zero, but was %d", c.Device.MaxFramesInFlight)
	}
	if c.Device.MaxDescriptors < 0 {
		return errors.Newf("device.max_descriptors must not be negative, but was %d", c.Device.MaxDescriptors)
	}

	err := c.ConstantOptions().Validate()
	if err != nil {
		return errors.Wrap(err, "constants")
	}

	sizes := c.MeshSizes()
	if len(sizes.BufferSizes) == 0 {
		return errors.New("mesh must size at least one vertex attribute buffer")
	}
	for attribute, size := range sizes.BufferSizes {
		if size < attribute.Stride() {
			return errors.Newf("mesh %s buffer of %d bytes cannot hold one vertex", attribute, size)
		}
	}
	if sizes.IndexBufferSize < 0 || sizes.StagingSize < 0 || sizes.MaxSubmeshes < 0 {
		return errors.New("mesh sizes must not be negative")
	}

	if c.Texture.StagingSize < 0 || (c.Texture.StagingSize > 0 && c.Texture.StagingSize < texture.PlacementAlignment) {
		return errors.Newf("texture.staging_size must be at least %d bytes, but was %d", texture.PlacementAlignment, c.Texture.StagingSize)
	}

	_, err = log.ParseLevel(c.Log.Level)
	if err != nil {
		return errors.Wrap(err, "log.level")
	}
	_, err = c.Log.formatter()
	return err
}

func (c Config) DeviceOptions() device.CreateOptions {
	var options device.CreateOptions
	if c.Device.ExternallySynchronized {
		options.Flags |= device.CreateExternallySynchronized
	}
	return options
}

func (c Config) DriverOptions() soft.Options {
	return soft.Options{
		ManualExecution: c.Device.ManualExecution,
		MaxDescriptors:  c.Device.MaxDescriptors,
	}
}

func (c Config) ConstantOptions() constants.Options {
	return constants.Options(c.Constants)
}

func (c Config) MeshSizes() mesh.SizeSpecification {
	sizes := mesh.SizeSpecification{
		BufferSizes:     make(map[mesh.VertexAttribute]int),
		IndexBufferSize: c.Mesh.IndexBufferSize,
		StagingSize:     c.Mesh.StagingSize,
		MaxSubmeshes:    c.Mesh.MaxSubmeshes,
	}

	for attribute, size := range map[mesh.VertexAttribute]int{
		mesh.AttributePosition: c.Mesh.PositionBufferSize,
		mesh.AttributeNormal:   c.Mesh.NormalBufferSize,
		mesh.AttributeUV:       c.Mesh.UVBufferSize,
		mesh.AttributeTangent:  c.Mesh.TangentBufferSize,
	} {
		if size != 0 {
			sizes.BufferSizes[attribute] = size
		}
	}

	return sizes
}

func (c Config) TextureOptions() texture.Options {
	return texture.Options{StagingSize: c.Texture.StagingSize}
}

func (l Log) formatter() (log.Formatter, error) {
	switch strings.ToLower(l.Format) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return 0, errors.Newf("unknown log format %q", l.Format)
	}
}

// NewLogger builds a slog logger that writes to w through a charm handler
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	formatter, err := l.formatter()
	if err != nil {
		return nil, err
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: l.ReportTimestamp,
		TimeFormat:      time.RFC3339,
		Prefix:          l.Prefix,
	})

	return slog.New(handler), nil
}
