package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/internal/configurator"
	"github.com/Faultbox/bed-atelier/internal/proposal"
)

var errQuit = errors.New("quit")

type shell struct {
	session *configurator.Session
	sink    proposal.Sink
	out     io.Writer
}

const usage = `Commands:
  show                              Current configuration and price
  catalog                           Materials, colors, variants, views, presets
  material <slot> <type> [color]    Select a material type (slot: frame|headboard)
  color <slot> <color>              Select a color of the current material
  size <axis> <cm>                  Set width|height|length
  preset <id>                       Apply a dimension preset
  variant <id>                      Select a headboard variant
  view <id>                         Move the camera to a preset
  orbit <dx> <dy>                   Orbit the camera
  zoom <delta>                      Dolly the camera
  scene                             Scene node state
  camera                            Camera pose and state
  stats                             Texture cache statistics
  save | export                     Write a proposal
  help                              This text
  quit                              Exit`

// run reads commands until EOF, quit or ctx ends.
func (sh *shell) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprintln(sh.out, "bed atelier - type 'help' for commands")
	for {
		fmt.Fprint(sh.out, "> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := sh.exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(sh.out, "Error: %v\n", err)
			}
		}
	}
}

// exec runs one command line on the session's logic goroutine.
func (sh *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprintln(sh.out, usage)
		return nil
	}

	return sh.session.Call(ctx, func() error {
		return sh.dispatch(ctx, cmd, args)
	})
}

func (sh *shell) dispatch(ctx context.Context, cmd string, args []string) error {
	s := sh.session
	st := s.Store()

	switch cmd {
	case "show":
		sh.show()
	case "catalog":
		sh.catalog()
	case "material":
		if err := need(args, 2, "material <slot> <type> [color]"); err != nil {
			return err
		}
		slot, err := parseSlot(args[0])
		if err != nil {
			return err
		}
		if len(args) == 2 {
			return st.SelectMaterialType(slot, args[1])
		}
		entry, ok := s.Catalog().Material(args[1])
		if !ok {
			return st.SelectMaterialType(slot, args[1])
		}
		return st.SelectMaterial(slot, args[1], args[2], entry.UnitPrice)
	case "color":
		if err := need(args, 2, "color <slot> <color>"); err != nil {
			return err
		}
		slot, err := parseSlot(args[0])
		if err != nil {
			return err
		}
		return st.SelectColor(slot, args[1])
	case "size":
		if err := need(args, 2, "size <axis> <cm>"); err != nil {
			return err
		}
		axis, ok := bed.ParseAxis(args[0])
		if !ok {
			return fmt.Errorf("unknown axis %q (width|height|length)", args[0])
		}
		if err := st.SetDimension(axis, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "%s = %g cm\n", axis, st.Current().Dimensions.Get(axis))
	case "preset":
		if err := need(args, 1, "preset <id>"); err != nil {
			return err
		}
		return st.ApplyPreset(args[0])
	case "variant":
		if err := need(args, 1, "variant <id>"); err != nil {
			return err
		}
		return st.SetHeadboardVariant(args[0])
	case "view":
		if err := need(args, 1, "view <id>"); err != nil {
			return err
		}
		return st.SetCameraView(args[0])
	case "orbit":
		if err := need(args, 2, "orbit <dx> <dy>"); err != nil {
			return err
		}
		dx, err1 := strconv.ParseFloat(args[0], 32)
		dy, err2 := strconv.ParseFloat(args[1], 32)
		if err := errors.Join(err1, err2); err != nil {
			return err
		}
		s.Camera().Orbit(float32(dx), float32(dy))
	case "zoom":
		if err := need(args, 1, "zoom <delta>"); err != nil {
			return err
		}
		d, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return err
		}
		s.Camera().Zoom(float32(d))
	case "scene":
		sh.scene()
	case "camera":
		pose := s.Camera().Pose()
		fmt.Fprintf(sh.out, "view=%s state=%s position=%v target=%v\n", s.Camera().View(), s.Camera().State(), pose.Position, pose.Target)
	case "stats":
		stats := s.Stats()
		fmt.Fprintf(sh.out, "hits=%d misses=%d cached=%d\n", stats.Hits, stats.Misses, stats.Cached)
	case "save", "export":
		var (
			p   *proposal.Proposal
			err error
		)
		if cmd == "save" {
			p, err = s.Save(ctx, sh.sink)
		} else {
			p, err = s.Export(ctx, sh.sink)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "%s %s (total %d)\n", p.Kind, p.Filename(), p.TotalPrice)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
	return nil
}

func (sh *shell) show() {
	s := sh.session
	cfg := s.Store().Current()
	w := tabwriter.NewWriter(sh.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "frame\t%s\t%.2f/m²\n", cfg.Frame.Key(), cfg.Frame.UnitPrice)
	fmt.Fprintf(w, "headboard\t%s\t%.2f/m²\n", cfg.Headboard.Key(), cfg.Headboard.UnitPrice)
	fmt.Fprintf(w, "size\t%g x %g x %g cm\t%s\n", cfg.Dimensions.Width, cfg.Dimensions.Height, cfg.Dimensions.Length, s.Store().Preset())
	fmt.Fprintf(w, "variant\t%s\t\n", cfg.HeadboardVariant)
	fmt.Fprintf(w, "view\t%s\t\n", cfg.CameraView)
	fmt.Fprintf(w, "price\t%d\t\n", s.Price())
	w.Flush()
}

func (sh *shell) catalog() {
	cat := sh.session.Catalog()
	w := tabwriter.NewWriter(sh.out, 0, 0, 2, ' ', 0)
	for _, e := range cat.Materials {
		fmt.Fprintf(w, "%s\t%s\t%.2f/m²\n", e.Type, e.Name, e.UnitPrice)
		for _, c := range e.Colors {
			fmt.Fprintf(w, "  %s\t%s\t\n", c.ID, c.Name)
		}
	}
	for _, v := range cat.Variants {
		fmt.Fprintf(w, "variant %s\t%s\t%s\n", v.ID, v.Label, v.Description)
	}
	for _, p := range cat.CameraPresets {
		fmt.Fprintf(w, "view %s\t%s\t\n", p.ID, p.Label)
	}
	for _, p := range cat.DimensionPresets {
		fmt.Fprintf(w, "preset %s\t%s\t%gx%gx%g\n", p.ID, p.Label, p.Dimensions.Width, p.Dimensions.Height, p.Dimensions.Length)
	}
	w.Flush()
}

func (sh *shell) scene() {
	g := sh.session.Graph()
	w := tabwriter.NewWriter(sh.out, 0, 0, 2, ' ', 0)
	for _, name := range g.Names() {
		n := g.Node(name)
		mat := "-"
		if n.Material != nil {
			mat = n.Material.Key.String()
			if n.Material.Flat {
				mat += " (flat)"
			}
		}
		fmt.Fprintf(w, "%s\tvisible=%t\tscale=%v\t%s\n", name, n.Visible, n.Scale, mat)
	}
	w.Flush()
}

func parseSlot(s string) (bed.Slot, error) {
	slot, ok := bed.ParseSlot(s)
	if !ok {
		return "", fmt.Errorf("unknown slot %q (frame|headboard)", s)
	}
	return slot, nil
}

func need(args []string, n int, form string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", form)
	}
	return nil
}
