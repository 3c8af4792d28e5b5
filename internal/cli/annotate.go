package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/redline/pkg/config"
	"github.com/matzehuels/redline/pkg/core/geom"
	rio "github.com/matzehuels/redline/pkg/io"
	"github.com/matzehuels/redline/pkg/pipeline"
	"github.com/matzehuels/redline/pkg/store"
)

// annotateFlags holds the command-line flags of the annotate command.
type annotateFlags struct {
	output      string
	formats     string
	orientation string
	requests    []string
	regions     bool
	noCache     bool
	refresh     bool
	save        bool
}

// annotateCommand creates the annotate command.
func (c *CLI) annotateCommand() *cobra.Command {
	var flags annotateFlags

	cmd := &cobra.Command{
		Use:   "annotate [scene.json|scene.yaml]",
		Short: "Place annotations on a scene and render them",
		Long: `Place dimension, spacing, overlap and name annotations on a scene.

Without --request every framed shape gets a dimension annotation. Requests
take the form kind:shape[,shape][@side], for example:

  redline annotate scene.json -r spacing:header,body -r name:logo@left

Writes <scene>.svg by default; -f json also writes the placed batch, which
'redline inspect' can browse, as <scene>.batch.json. Results are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnnotate(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().StringVar(&flags.orientation, "orientation", "", "default side: top, bottom, left, right (default from config)")
	cmd.Flags().StringArrayVarP(&flags.requests, "request", "r", nil, "annotation request kind:a[,b][@side] (repeatable)")
	cmd.Flags().BoolVar(&flags.regions, "regions", false, "shade overlap and spacing regions in the SVG")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().BoolVar(&flags.save, "save", false, "save the batch to the configured store")

	return cmd
}

// buildOptions merges config defaults with the command-line flags.
func (f annotateFlags) buildOptions(cfg config.Config) (pipeline.Options, error) {
	opts := optionsFromConfig(cfg)
	if f.orientation != "" {
		opts.Orientation = geom.Side(f.orientation)
	}
	reqs, err := parseRequests(f.requests)
	if err != nil {
		return opts, err
	}
	opts.Requests = reqs
	opts.Formats = parseFormats(f.formats)
	opts.ShowRegions = f.regions
	opts.Refresh = f.refresh
	return opts, nil
}

func (c *CLI) runAnnotate(ctx context.Context, input string, flags annotateFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := flags.buildOptions(cfg)
	if err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}

	scn, err := rio.ImportScene(input)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Annotating %s...", filepath.Base(input)))
	spinner.Start()

	result, err := runner.Execute(ctx, scn, opts)
	if err != nil {
		spinner.StopWithError("Annotation failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Annotated %d frames", result.Stats.FrameCount))

	if flags.save {
		if err := c.saveBatch(ctx, cfg, result); err != nil {
			return err
		}
	}

	return writeArtifacts(artifactWriteParams{
		result:  result,
		formats: opts.Formats,
		input:   input,
		output:  flags.output,
	})
}

func (c *CLI) saveBatch(ctx context.Context, cfg config.Config, result *pipeline.Result) error {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if st == nil {
		printWarning("--save needs a file or mongo store (store.backend = %q)", cfg.Store.Backend)
		return nil
	}
	defer st.Close()
	if cfg.Store.Backend == config.StoreMemory {
		printWarning("--save needs a file or mongo store (store.backend = %q)", cfg.Store.Backend)
		return nil
	}
	if err := st.Save(ctx, result.Batch); err != nil {
		return fmt.Errorf("save batch: %w", err)
	}
	if fs, ok := st.(*store.FileStore); ok {
		c.Logger.Debug("saved batch", "id", result.Batch.ID, "dir", fs.Path())
	}
	return nil
}

type artifactWriteParams struct {
	result  *pipeline.Result
	formats []string
	input   string
	output  string
}

// writeArtifacts writes each rendered format next to the input, or to the
// --output path, and prints a summary.
func writeArtifacts(p artifactWriteParams) error {
	var written []string
	for _, format := range p.formats {
		data, ok := p.result.Artifacts[format]
		if !ok {
			continue
		}
		path := p.output
		if path == "" || len(p.formats) > 1 {
			path = derivedPath(p.output, p.input, format)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	b := p.result.Batch
	printSuccess("Annotation complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(b, p.result.CacheInfo.AnnotateHit)
	printSkipped(b.Skipped)
	printDetail("batch %s", b.ID)

	for _, path := range written {
		if strings.HasSuffix(path, ".json") {
			printNewline()
			printNextStep("Browse", appName+" inspect "+path)
			break
		}
	}
	return nil
}

// derivedPath names an artifact after the output or input base path. Batches
// get a ".batch.json" suffix so they never replace a JSON scene file.
func derivedPath(output, input, format string) string {
	base := basePath(output, input)
	if format == pipeline.FormatJSON {
		return base + ".batch.json"
	}
	return base + "." + format
}
