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
	"sigs.k8s.io/yaml"

	"packpipe/pkg/conflict"
	"packpipe/pkg/loader"
	"packpipe/pkg/logger"
	"packpipe/pkg/naming"
	"packpipe/pkg/pipeline"
	"packpipe/pkg/registry"
)

// DecompressOptions carries the flags and arguments of `packpipe decompress`.
type DecompressOptions struct {
	// Input is the artifact to restore.
	Input string
	// Algo overrides the algorithm inferred from the file extension.
	Algo string
	// Archive overrides archive handling: a format name, "none", or empty
	// for automatic detection.
	Archive string
	// OutputDir receives the restored files.
	OutputDir string
	// OnConflict picks the conflict policy: keep-both, replace, skip, ask.
	OnConflict string
	// Meta prints the embedded metadata instead of restoring files.
	Meta bool
	// JSON switches to line-delimited JSON output.
	JSON bool

	logConfig *logger.Config
}

// NewDecompressCommand builds `packpipe decompress`.
func NewDecompressCommand(ctx context.Context, logConfig *logger.Config) *cobra.Command {
	opts := &DecompressOptions{logConfig: logConfig}
	cmd := &cobra.Command{
		Use:   "decompress INPUT",
		Short: "restore the original files from a compressed artifact",
		Long: `
decompress reverses compress: it decompresses the artifact, unpacks archive
framing when present and writes the original files under their embedded
names. Conflicting paths are resolved by the --on-conflict policy.
`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts.Complete(args)
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

func (o *DecompressOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Algo, "algo", "", "compression algorithm (inferred from the extension when empty)")
	fs.StringVar(&o.Archive, "archive", "", "archive format, none, or empty for auto-detection")
	fs.StringVarP(&o.OutputDir, "output-dir", "d", ".", "directory for restored files")
	fs.StringVar(&o.OnConflict, "on-conflict", "keep-both", "existing-file policy: keep-both, replace, skip, ask")
	fs.BoolVar(&o.Meta, "meta", false, "print the embedded metadata and exit")
	fs.BoolVar(&o.JSON, "json", false, "line-delimited JSON output")
}

func (o *DecompressOptions) Complete(args []string) {
	o.Input = args[0]
}

// options infers pipeline options from flags and the input filename.
func (o *DecompressOptions) options() (pipeline.ProcessOptions, error) {
	algo := o.Algo
	parsed := naming.ParseExtension(filepath.Base(o.Input))
	if algo == "" {
		if parsed.Compression == naming.None {
			return pipeline.ProcessOptions{}, fmt.Errorf(
				"cannot infer the algorithm from %q; pass --algo", o.Input)
		}
		algo = parsed.Compression
	}

	opts := pipeline.ProcessOptions{Compression: pipeline.CompressionOptions{Algo: algo}}
	switch {
	case o.Archive != "":
		opts.Archive = &pipeline.ArchiveOptions{Algo: o.Archive}
	case o.Algo == "" && parsed.Archive != naming.None:
		// Extension named the archive; trust it over auto-detection.
		opts.Archive = &pipeline.ArchiveOptions{Algo: parsed.Archive}
	}
	return opts, nil
}

func (o *DecompressOptions) provider() (conflict.DecisionProvider, error) {
	switch o.OnConflict {
	case "keep-both", "":
		return conflict.NewAutoProvider(conflict.KeepBoth), nil
	case "replace":
		return conflict.NewAutoProvider(conflict.Replace), nil
	case "skip":
		return conflict.NewAutoProvider(conflict.Skip), nil
	case "ask":
		return conflict.NewPromptProvider(os.Stdin, os.Stdout), nil
	}
	return nil, fmt.Errorf("unknown conflict policy %q", o.OnConflict)
}

// Run executes the command against the injected filesystem.
func (o *DecompressOptions) Run(ctx context.Context, log logr.Logger, reg *registry.Registry, fs vfs.FileSystem) error {
	ldr := loader.New(reg, log)
	pipe := pipeline.New(reg, ldr, log)

	popts, err := o.options()
	if err != nil {
		return err
	}
	provider, err := o.provider()
	if err != nil {
		return err
	}

	data, err := vfs.ReadFile(fs, o.Input)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.Input, err)
	}

	if o.Meta {
		return printMetadata(pipe, data, popts, o.JSON)
	}

	files, err := pipe.Restore(data, popts)
	if err != nil {
		return err
	}

	resolver := conflict.NewResolver(fs, provider)
	for _, f := range files {
		outcome, err := resolver.Write(filepath.Join(o.OutputDir, f.Name), f.Data)
		if err != nil {
			return err
		}
		if o.JSON {
			emitJSON(os.Stdout, "restored", map[string]any{
				"name":   f.Name,
				"path":   outcome.Path,
				"status": outcome.Status.String(),
				"size":   len(f.Data),
			})
		} else {
			fmt.Printf("%s: %s (%d bytes)\n", outcome.Path, outcome.Status, len(f.Data))
		}
	}
	return nil
}

func printMetadata(pipe *pipeline.Pipeline, data []byte, popts pipeline.ProcessOptions, asJSON bool) error {
	manifest, err := pipe.ReadMetadata(data, popts)
	if err != nil {
		return err
	}
	if asJSON {
		emitJSON(os.Stdout, "metadata", map[string]any{"metadata": manifest})
		return nil
	}
	out, err := yaml.Marshal(manifest)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
