package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/redline/pkg/core/bounds"
	"github.com/matzehuels/redline/pkg/core/gap"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/label"
	"github.com/matzehuels/redline/pkg/core/overlap"
	"github.com/matzehuels/redline/pkg/core/placement"
	"github.com/matzehuels/redline/pkg/core/scene"
	"github.com/matzehuels/redline/pkg/errors"
	rio "github.com/matzehuels/redline/pkg/io"
)

// loadIndex imports a scene file and indexes it.
func loadIndex(path string) (*scene.Index, error) {
	scn, err := rio.ImportScene(path)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	return scene.NewIndex(scn)
}

func printJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatBox(b geom.Box) string {
	return fmt.Sprintf("%s,%s %s × %s", label.Number(b.X), label.Number(b.Y), label.Number(b.Width), label.Number(b.Height))
}

// =============================================================================
// bounds
// =============================================================================

func (c *CLI) boundsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "bounds [scene] [shape...]",
		Short: "Print frame-relative bounding boxes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := loadIndex(args[0])
			if err != nil {
				return err
			}
			type entry struct {
				Shape string   `json:"shape"`
				Frame string   `json:"frame"`
				Box   geom.Box `json:"box"`
			}
			entries := make([]entry, 0, len(args)-1)
			for _, id := range args[1:] {
				box, f, err := bounds.ResolveID(ix, id)
				if err != nil {
					return err
				}
				entries = append(entries, entry{Shape: id, Frame: f.ID, Box: box})
			}
			if asJSON {
				return printJSON(entries)
			}
			for _, e := range entries {
				printKeyValue(e.Shape, formatBox(e.Box)+StyleDim.Render(" in "+e.Frame))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// =============================================================================
// gap
// =============================================================================

func (c *CLI) gapCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "gap [scene] [a] [b]",
		Short: "Measure the empty space between two shapes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := loadIndex(args[0])
			if err != nil {
				return err
			}
			res, err := gap.Compute(ix, args[1], args[2])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(res)
			}
			if res == nil {
				printInfo("%s and %s touch or overlap; try '%s overlap'", args[1], args[2], appName)
				return nil
			}
			x1, y1, x2, y2 := res.Line()
			printKeyValue("distance", StyleNumber.Render(label.Spacing(res.Distance())))
			printKeyValue("orientation", string(res.Orientation))
			printKeyValue("strip", formatBox(res.Strip()))
			printKeyValue("line", fmt.Sprintf("%s,%s → %s,%s",
				label.Number(x1), label.Number(y1), label.Number(x2), label.Number(y2)))
			if res.Padded {
				printDetail("measured inside auto-layout padding")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// =============================================================================
// overlap
// =============================================================================

func (c *CLI) overlapCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "overlap [scene] [a] [b]",
		Short: "Decompose the space between two overlapping shapes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := loadIndex(args[0])
			if err != nil {
				return err
			}
			regions, err := overlap.Compute(ix, args[1], args[2])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(regions)
			}
			printDetail("%s inside %s", regions.ShapeB, regions.ShapeA)
			for _, r := range regions.All() {
				if r.Err() != nil {
					printKeyValue(string(r.Side), StyleDim.Render("none"))
					continue
				}
				printKeyValue(string(r.Side), StyleNumber.Render(label.Spacing(r.Distance()))+"  "+StyleDim.Render(formatBox(r.Box)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// =============================================================================
// place
// =============================================================================

type placeFlags struct {
	target      string
	frame       string
	glyph       string
	text        string
	orientation string
	kind        string
}

func (c *CLI) placeCommand() *cobra.Command {
	var (
		flags  placeFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Position a single glyph next to a target box",
		Example: `  redline place --target 10,10,80,20 --frame 400,300 --label "80 × 20"
  redline place --target 0,0,50,50 --frame 50,50 --glyph 30,12 --orientation left`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			target, frame, glyph, side, err := flags.parse(cfg.Label)
			if err != nil {
				return err
			}
			opts := optionsFromConfig(cfg)
			if err := opts.ValidateForAnnotate(); err != nil {
				return err
			}
			kind := placement.Kind(flags.kind)
			if kind != placement.Text && kind != placement.Measurement {
				return errors.New(errors.ErrCodeInvalidInput, "invalid kind %q (must be text or measurement)", flags.kind)
			}

			p := placement.Place(target, frame, glyph, side, opts.Placement(kind))
			if asJSON {
				return printJSON(p)
			}
			printKeyValue("box", formatBox(p.Box))
			side = p.Side
			if p.Flipped {
				printKeyValue("side", fmt.Sprintf("%s %s", side, StyleWarning.Render("(flipped from "+string(p.Requested)+")")))
			} else {
				printKeyValue("side", string(side))
			}
			printKeyValue("pointer", fmt.Sprintf("%s,%s %s", label.Number(p.Pointer.X), label.Number(p.Pointer.Y), p.Pointer.Direction))
			if p.Clamped {
				printDetail("clamped inside the frame")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.target, "target", "", "target box x,y,width,height (required)")
	cmd.Flags().StringVar(&flags.frame, "frame", "", "frame size width,height (required)")
	cmd.Flags().StringVar(&flags.glyph, "glyph", "", "glyph size width,height")
	cmd.Flags().StringVar(&flags.text, "label", "", "measure the glyph from label text instead of --glyph")
	cmd.Flags().StringVar(&flags.orientation, "orientation", "top", "preferred side: top, bottom, left, right")
	cmd.Flags().StringVar(&flags.kind, "kind", string(placement.Measurement), "clearance kind: text, measurement")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("frame")

	return cmd
}

func (f placeFlags) parse(style label.Style) (geom.Box, geom.Size, geom.Size, geom.Side, error) {
	var (
		target       geom.Box
		frame, glyph geom.Size
	)
	t, err := parseNumbers("target", f.target, 4)
	if err != nil {
		return target, frame, glyph, "", err
	}
	target = geom.Box{X: t[0], Y: t[1], Width: t[2], Height: t[3]}

	fr, err := parseNumbers("frame", f.frame, 2)
	if err != nil {
		return target, frame, glyph, "", err
	}
	frame = geom.Size{Width: fr[0], Height: fr[1]}

	switch {
	case f.glyph != "":
		g, err := parseNumbers("glyph", f.glyph, 2)
		if err != nil {
			return target, frame, glyph, "", err
		}
		glyph = geom.Size{Width: g[0], Height: g[1]}
	case f.text != "":
		glyph = label.Measure(f.text, style)
	default:
		return target, frame, glyph, "", errors.New(errors.ErrCodeInvalidInput, "one of --glyph or --label is required")
	}

	side, err := geom.ParseSide(f.orientation)
	if err != nil {
		return target, frame, glyph, "", errors.Wrap(errors.ErrCodeInvalidOrientation, err, "--orientation")
	}
	return target, frame, glyph, side, nil
}

// parseNumbers parses n comma-separated numbers.
func parseNumbers(name, s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--%s needs %d comma-separated numbers, got %q", name, n, s)
	}
	vals := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--%s", name)
		}
		vals[i] = v
	}
	return vals, nil
}
