// Package main provides the cbm CLI: inspect, create and materialize CBM
// seed containers.
package main

import (
	"crypto/rand"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cbm-ml/cbm/container"
	"github.com/cbm-ml/cbm/device"
	"github.com/cbm-ml/cbm/internal/config"
	"github.com/cbm-ml/cbm/model"
)

const version = "v1.0.0"

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("cbm failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		logLevel string
	)
	cfg := config.Config{}

	root := &cobra.Command{
		Use:           "cbm",
		Short:         "CBM seed-container loader",
		Long:          "cbm loads compact CBM seed containers and materializes them into full parameter buffers in accelerator memory.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Optional config file (.toml/.yaml/.json)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (default info)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgPath != "" {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
		}
		if logLevel == "" {
			logLevel = cfg.LogLevel
		}
		setLogLevel(logLevel)
		return nil
	}

	root.AddCommand(newMaterializeCmd(&cfg))
	root.AddCommand(newInfoCmd())
	root.AddCommand(newCreateCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cbm %s\n", version)
		},
	})

	return root
}

func setLogLevel(s string) {
	switch s {
	case "debug":
		log = log.Level(zerolog.DebugLevel)
	case "warn":
		log = log.Level(zerolog.WarnLevel)
	case "error":
		log = log.Level(zerolog.ErrorLevel)
	default:
		log = log.Level(zerolog.InfoLevel)
	}
}

func newMaterializeCmd(cfg *config.Config) *cobra.Command {
	var (
		params int64
		useRef bool
	)

	cmd := &cobra.Command{
		Use:   "materialize <model.cbm>",
		Short: "Expand a seed container into device memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := params
			if count == 0 {
				count = cfg.ParamCount
			}
			if count == 0 {
				count = config.DefaultParamCount
			}
			if count < 0 || count > math.MaxInt {
				return fmt.Errorf("param count %d out of range", count)
			}
			return runMaterialize(args[0], int(count), useRef)
		},
	}
	cmd.Flags().Int64Var(&params, "params", 0, "Target parameter count (default 7000000000)")
	cmd.Flags().BoolVar(&useRef, "ref", false, "Use the software reference expander instead of the device kernel")
	return cmd
}

func runMaterialize(path string, paramCount int, useRef bool) error {
	m, err := model.Load(path)
	if err != nil {
		return err
	}
	defer m.Destroy()

	log.Info().
		Str("model", m.Metadata.Name()).
		Str("architecture", m.Metadata.Architecture()).
		Str("version", fmt.Sprintf("%d.%d", m.Header.Major(), m.Header.Minor())).
		Int("seed_bytes", len(m.Seed)).
		Msg("container parsed")

	dev, err := device.New()
	if err != nil {
		return err
	}
	defer dev.Release()
	log.Info().Str("device", dev.Name()).Msg("device ready")

	mz := model.NewMaterializer(dev)
	if useRef {
		mz = model.NewMaterializerWith(dev, device.NewRefExpander(dev))
	}

	geom := model.NewGeometry(paramCount)
	log.Debug().
		Int("workgroup_size", geom.WorkgroupSize).
		Uint32("workgroups", geom.Workgroups).
		Msg("launch geometry")

	if err := mz.Materialize(m, paramCount); err != nil {
		return err
	}

	stats := dev.MemoryStats()
	log.Info().
		Int("weight_count", m.WeightCount).
		Uint64("device_bytes", stats.TotalAllocatedBytes).
		Msg("materialization complete, model is active")

	return nil
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <model.cbm>",
		Short: "Print container header and metadata without materializing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := container.ParseFile(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("File:            %s (%d bytes)\n", file.FilePath, file.FileSize)
			fmt.Printf("Format version:  %d.%d\n", file.Header.Major(), file.Header.Minor())
			fmt.Printf("Model:           %s\n", file.Metadata.Name())
			fmt.Printf("Architecture:    %s\n", file.Metadata.Architecture())
			fmt.Printf("Seed size:       %d bytes\n", file.Metadata.SeedSize)
			fmt.Printf("Graph nodes:     %d\n", file.Metadata.GraphNodeCount)
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var (
		name       string
		arch       string
		graphNodes uint32
		seedFile   string
		seedSize   int
	)

	cmd := &cobra.Command{
		Use:   "create <out.cbm>",
		Short: "Write a CBM container from a seed file or a random seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed []byte
			switch {
			case seedFile != "":
				b, err := os.ReadFile(seedFile) //nolint:gosec // G304: operator-supplied path.
				if err != nil {
					return fmt.Errorf("read seed file: %w", err)
				}
				seed = b
			case seedSize > 0:
				seed = make([]byte, seedSize)
				if _, err := rand.Read(seed); err != nil {
					return fmt.Errorf("generate seed: %w", err)
				}
			default:
				return fmt.Errorf("either --seed-file or --seed-size is required")
			}

			if err := container.WriteFile(args[0], name, arch, graphNodes, seed); err != nil {
				return err
			}
			log.Info().Str("path", args[0]).Int("seed_bytes", len(seed)).Msg("container written")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Model name (max 64 bytes)")
	cmd.Flags().StringVar(&arch, "arch", "", "Architecture name (max 32 bytes)")
	cmd.Flags().Uint32Var(&graphNodes, "graph-nodes", 0, "Graph node count hint for the expansion capability")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "File holding the seed payload")
	cmd.Flags().IntVar(&seedSize, "seed-size", 0, "Generate a random seed of this many bytes")
	return cmd
}
