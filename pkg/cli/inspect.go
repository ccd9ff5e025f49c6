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

	"packpipe/pkg/loader"
	"packpipe/pkg/logger"
	"packpipe/pkg/naming"
	"packpipe/pkg/pipeline"
	"packpipe/pkg/registry"
)

// InspectOptions carries the flags and arguments of `packpipe inspect`.
type InspectOptions struct {
	// Input is the artifact to inspect.
	Input string
	// Algo overrides the algorithm inferred from the file extension.
	Algo string
	// Archive overrides archive handling.
	Archive string
	// JSON switches to line-delimited JSON output.
	JSON bool

	logConfig *logger.Config
}

// NewInspectCommand builds `packpipe inspect`.
func NewInspectCommand(ctx context.Context, logConfig *logger.Config) *cobra.Command {
	opts := &InspectOptions{logConfig: logConfig}
	cmd := &cobra.Command{
		Use:   "inspect INPUT",
		Short: "print the metadata embedded in an artifact",
		Long: `
inspect decompresses the artifact and prints the embedded metadata: format
version, algorithms, file listing and compatibility requirements. No files
are written.
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

func (o *InspectOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Algo, "algo", "", "compression algorithm (inferred from the extension when empty)")
	fs.StringVar(&o.Archive, "archive", "", "archive format, none, or empty for auto-detection")
	fs.BoolVar(&o.JSON, "json", false, "line-delimited JSON output")
}

func (o *InspectOptions) Complete(args []string) {
	o.Input = args[0]
}

// Run executes the command against the injected filesystem.
func (o *InspectOptions) Run(ctx context.Context, log logr.Logger, reg *registry.Registry, fs vfs.FileSystem) error {
	ldr := loader.New(reg, log)
	pipe := pipeline.New(reg, ldr, log)

	algo := o.Algo
	if algo == "" {
		parsed := naming.ParseExtension(filepath.Base(o.Input))
		if parsed.Compression == naming.None {
			return fmt.Errorf("cannot infer the algorithm from %q; pass --algo", o.Input)
		}
		algo = parsed.Compression
	}
	popts := pipeline.ProcessOptions{Compression: pipeline.CompressionOptions{Algo: algo}}
	if o.Archive != "" {
		popts.Archive = &pipeline.ArchiveOptions{Algo: o.Archive}
	}

	data, err := vfs.ReadFile(fs, o.Input)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.Input, err)
	}

	manifest, err := pipe.ReadMetadata(data, popts)
	if err != nil {
		return err
	}

	if o.JSON {
		emitJSON(os.Stdout, "metadata", map[string]any{
			"input":    o.Input,
			"metadata": manifest,
		})
		return nil
	}
	out, err := yaml.Marshal(manifest)
	if err != nil {
		return err
	}
	fmt.Printf("%s:\n%s", o.Input, string(out))
	return nil
}
