package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"packpipe/pkg/conflict"
	"packpipe/pkg/loader"
	"packpipe/pkg/logger"
	"packpipe/pkg/naming"
	"packpipe/pkg/pipeline"
	"packpipe/pkg/progress"
	"packpipe/pkg/registry"
)

// CompressOptions carries the flags and arguments of `packpipe compress`.
type CompressOptions struct {
	// Inputs are the files to process, in order.
	Inputs []string
	// Algo is the compression algorithm name.
	Algo string
	// Level is the compression level; only applied when LevelSet.
	Level    int
	LevelSet bool
	// Archive is the archive format; empty means the pipeline default,
	// "none" disables archiving.
	Archive string
	// CompressInside additionally compresses entries inside the archive.
	CompressInside bool
	// Output is the target path; derived from the first input when empty.
	Output string
	// Timestamp inserts a timestamp token into the derived output name.
	Timestamp bool
	// JSON switches to line-delimited JSON output.
	JSON bool

	logConfig *logger.Config
}

// NewCompressCommand builds `packpipe compress`.
func NewCompressCommand(ctx context.Context, logConfig *logger.Config) *cobra.Command {
	opts := &CompressOptions{logConfig: logConfig}
	cmd := &cobra.Command{
		Use:   "compress INPUT...",
		Short: "compress one or more files into a single artifact",
		Long: `
compress reads the given files, archives them when more than one is supplied
(or when --archive asks for it) and compresses the result. Original file
names are embedded so decompress can restore them from the artifact alone.
`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts.Complete(args, cmd.Flags())
			log, err := logger.New(&logger.Config{
				Verbosity:    logConfig.Verbosity,
				DisableColor: logConfig.DisableColor,
				JSON:         opts.JSON,
			})
			if err != nil {
				fatal(err, "")
			}
			reg, err := registry.New()
			if err != nil {
				fatal(err, "")
			}
			if err := opts.Run(ctx, log, reg, osfs.New()); err != nil {
				fatal(err, hint(err, reg))
			}
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func (o *CompressOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Algo, "algo", "gzip", "compression algorithm")
	fs.IntVar(&o.Level, "level", 0, "compression level (algorithm-specific range)")
	fs.StringVar(&o.Archive, "archive", "", "archive format for multiple files (zip, tar, none)")
	fs.BoolVar(&o.CompressInside, "compress-inside", false, "also compress entries inside the archive")
	fs.StringVarP(&o.Output, "output", "o", "", "output path (derived from the input when empty)")
	fs.BoolVar(&o.Timestamp, "timestamp", false, "insert a timestamp into the derived output name")
	fs.BoolVar(&o.JSON, "json", false, "line-delimited JSON output")
}

func (o *CompressOptions) Complete(args []string, fs *pflag.FlagSet) {
	o.Inputs = args
	o.LevelSet = fs.Changed("level")
}

// Run executes the command against the injected filesystem.
func (o *CompressOptions) Run(ctx context.Context, log logr.Logger, reg *registry.Registry, fs vfs.FileSystem) error {
	ldr := loader.New(reg, log)
	pipe := pipeline.New(reg, ldr, log)

	files := make([]pipeline.FileRecord, 0, len(o.Inputs))
	var totalSize uint64
	for _, input := range o.Inputs {
		data, err := vfs.ReadFile(fs, input)
		if err != nil {
			return fmt.Errorf("read %s: %w", input, err)
		}
		files = append(files, pipeline.FileRecord{Name: filepath.Base(input), Data: data})
		totalSize += uint64(len(data))
	}

	var tracker *progress.Tracker
	if !o.JSON {
		tracker = progress.New(totalSize, os.Stdout)
		tracker.Start()
		defer tracker.Stop()
	}

	popts := pipeline.ProcessOptions{Compression: pipeline.CompressionOptions{Algo: o.Algo}}
	if o.LevelSet {
		level := o.Level
		popts.Compression.Level = &level
	}
	if o.Archive != "" {
		popts.Archive = &pipeline.ArchiveOptions{Algo: o.Archive, CompressInside: o.CompressInside}
	}

	res, err := pipe.ProcessWithMetadata(files, popts)
	if err != nil {
		return err
	}
	if tracker != nil {
		tracker.Add(uint64(res.Metadata.OriginalSize))
	}

	output := o.Output
	if output == "" {
		base := filepath.Base(o.Inputs[0])
		if len(o.Inputs) > 1 {
			base = "archive"
		}
		output = naming.SmartFilename(base, naming.NameOptions{
			Archive:     res.Metadata.ArchiveAlgo,
			Compression: res.Metadata.CompressionAlgo,
			Timestamp:   o.Timestamp,
		})
	}

	resolver := conflict.NewResolver(fs, conflict.NewAutoProvider(conflict.KeepBoth))
	outcome, err := resolver.Write(output, res.Data)
	if err != nil {
		return err
	}

	if o.JSON {
		emitJSON(os.Stdout, "compressed", map[string]any{
			"output":   outcome.Path,
			"status":   outcome.Status.String(),
			"metadata": res.Metadata,
		})
	} else {
		fmt.Printf("%s: %s -> %s (ratio %.1f%%, %s)\n",
			outcome.Path,
			progress.FormatSize(uint64(res.Metadata.OriginalSize)),
			progress.FormatSize(uint64(res.Metadata.CompressedSize)),
			res.Metadata.CompressionRatio*100,
			res.Metadata.CompressionAlgo,
		)
	}
	return nil
}
