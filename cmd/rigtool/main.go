// rigtool is a CLI utility for inspecting and testing rig files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/Faultbox/midgard-anim/internal/assets"
	"github.com/Faultbox/midgard-anim/internal/config"
	"github.com/Faultbox/midgard-anim/internal/engine/anim"
	"github.com/Faultbox/midgard-anim/internal/engine/rig"
	"github.com/Faultbox/midgard-anim/internal/engine/scene"
	"github.com/muesli/termenv"
)

var out = termenv.NewOutput(os.Stdout)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "tracks":
		cmdTracks(args)
	case "sample":
		cmdSample(args)
	case "validate", "check":
		cmdValidate(args)
	case "watch":
		cmdWatch(args)
	case "init-config":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rigtool - rig and animation utility

Usage:
  rigtool <command> [options]

Commands:
  info <rig.yaml>                       Show the node tree and animations
  tracks <rig.yaml> [animation]         List animation tracks and channels
  sample <rig.yaml> <animation> <time>  Pose the rig and print node transforms
  validate <rig.yaml>...                Check rig files for errors
  watch <dir>                           Revalidate rigs in dir as they change
  init-config [path]                    Write a default config file

Examples:
  rigtool info hero.yaml
  rigtool tracks hero.yaml walk
  rigtool sample -blend idle:0.5:0.3 hero.yaml walk 0.25
  rigtool validate rigs/*.yaml
  rigtool watch rigs`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func unknownAnimation(lib *anim.Library, id string) error {
	if s := lib.Suggest(id); s != "" {
		return fmt.Errorf("%q: %w (did you mean %q?)", id, anim.ErrUnknownAnimation, s)
	}
	return fmt.Errorf("%q: %w", id, anim.ErrUnknownAnimation)
}

func mustBuild(path string) *rig.Model {
	doc, err := rig.Load(path)
	if err != nil {
		fail(err)
	}
	m, err := doc.Build()
	if err != nil {
		fail(fmt.Errorf("%s: %w", path, err))
	}
	return m
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool info <rig.yaml>")
		os.Exit(1)
	}

	m := mustBuild(args[0])
	g := m.Graph

	parts, bones := 0, 0
	for i := 0; i < g.Len(); i++ {
		for _, p := range g.Node(scene.NodeID(i)).Parts {
			parts++
			bones += len(p.Bindings)
		}
	}

	fmt.Printf("Rig:        %s\n", m.Name)
	fmt.Printf("Nodes:      %d\n", g.Len())
	fmt.Printf("Parts:      %d (%d bones)\n", parts, bones)
	fmt.Printf("Animations: %d\n", m.Animations.Len())
	fmt.Println()
	fmt.Println("Nodes:")
	printTree(g, g.Roots(), 1)

	if m.Animations.Len() > 0 {
		fmt.Println()
		fmt.Println("Animations:")
		for _, id := range m.Animations.IDs() {
			a, _ := m.Animations.Get(id)
			fmt.Printf("  %-20s %6.3fs %3d tracks\n", a.ID, a.Duration, len(a.Tracks))
		}
	}
}

func printTree(g *scene.Graph, ids []scene.NodeID, depth int) {
	for _, id := range ids {
		n := g.Node(id)
		extra := ""
		if len(n.Parts) > 0 {
			extra = fmt.Sprintf("  [%d parts]", len(n.Parts))
		}
		if len(n.Weights) > 0 {
			extra += fmt.Sprintf("  [%d weights]", len(n.Weights))
		}
		fmt.Printf("%s%s%s\n", strings.Repeat("  ", depth), n.ID, extra)
		printTree(g, g.Children(id), depth+1)
	}
}

func cmdTracks(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool tracks <rig.yaml> [animation]")
		os.Exit(1)
	}

	m := mustBuild(args[0])
	ids := m.Animations.IDs()
	if len(args) > 1 {
		ids = args[1:]
	}

	for _, id := range ids {
		a, ok := m.Animations.Get(id)
		if !ok {
			fail(unknownAnimation(m.Animations, id))
		}
		fmt.Printf("%s (%.3fs)\n", a.ID, a.Duration)
		for i := range a.Tracks {
			tr := &a.Tracks[i]
			missing := ""
			if m.Graph.Find(tr.NodeID, true, false) == scene.NoNode {
				missing = "  (node missing)"
			}
			fmt.Printf("  %s%s\n", tr.NodeID, missing)
			printChannel("translation", tr.Translation.Mode, len(tr.Translation.Keys))
			printChannel("rotation", tr.Rotation.Mode, len(tr.Rotation.Keys))
			printChannel("scale", tr.Scale.Mode, len(tr.Scale.Keys))
			printChannel("weights", tr.Weights.Mode, len(tr.Weights.Keys))
		}
	}
}

func printChannel(name string, mode anim.Interpolation, keys int) {
	if keys == 0 {
		return
	}
	fmt.Printf("    %-12s %-12s %d keys\n", name, mode, keys)
}

func cmdSample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	blend := fs.String("blend", "", "Blend in another animation: id:time:weight")
	fs.Parse(args)

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool sample [-blend id:time:weight] <rig.yaml> <animation> <time>")
		os.Exit(1)
	}

	m := mustBuild(fs.Arg(0))
	a, ok := m.Animations.Get(fs.Arg(1))
	if !ok {
		fail(unknownAnimation(m.Animations, fs.Arg(1)))
	}
	t, err := strconv.ParseFloat(fs.Arg(2), 32)
	if err != nil {
		fail(fmt.Errorf("invalid time %q: %w", fs.Arg(2), err))
	}

	applier := anim.NewApplier(m.Graph)
	if *blend == "" {
		err = applier.ApplyDirect(a, float32(t))
	} else {
		var other *anim.Animation
		var bt, weight float32
		other, bt, weight, err = parseBlend(m.Animations, *blend)
		if err == nil {
			err = applier.ApplyBlend(a, float32(t), other, bt, weight)
		}
	}
	if err != nil {
		fail(err)
	}

	fmt.Printf("%-20s %-8s %-26s %s\n", "node", "animated", "local translation", "world position")
	for i := 0; i < m.Graph.Len(); i++ {
		n := m.Graph.Node(scene.NodeID(i))
		lt := n.LocalTransform.Translation()
		wp := n.GlobalTransform.Translation()
		fmt.Printf("%-20s %-8v %7.3f %7.3f %7.3f   %7.3f %7.3f %7.3f\n",
			n.ID, n.IsAnimated, lt.X, lt.Y, lt.Z, wp.X, wp.Y, wp.Z)
	}
}

func parseBlend(lib *anim.Library, arg string) (*anim.Animation, float32, float32, error) {
	fields := strings.Split(arg, ":")
	if len(fields) != 3 {
		return nil, 0, 0, fmt.Errorf("invalid blend %q: want id:time:weight", arg)
	}
	a, ok := lib.Get(fields[0])
	if !ok {
		return nil, 0, 0, unknownAnimation(lib, fields[0])
	}
	t, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("invalid blend time %q: %w", fields[1], err)
	}
	w, err := strconv.ParseFloat(fields[2], 32)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("invalid blend weight %q: %w", fields[2], err)
	}
	return a, float32(t), float32(w), nil
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool validate <rig.yaml>...")
		os.Exit(1)
	}

	failed := 0
	for _, path := range args {
		doc, err := rig.Load(path)
		if err == nil {
			_, err = doc.Build()
		}
		if err != nil {
			printFail(path, err)
			failed++
			continue
		}
		printOK(path, doc.NodeCount(), len(doc.Animations))
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d rigs failed\n", failed, len(args))
		os.Exit(1)
	}
}

func printOK(path string, nodes, anims int) {
	fmt.Printf("%s %s (%d nodes, %d animations)\n",
		out.String("ok  ").Foreground(termenv.ANSIGreen), path, nodes, anims)
}

func printFail(path string, err error) {
	fmt.Printf("%s %s: %v\n", out.String("FAIL").Foreground(termenv.ANSIRed).Bold(), path, err)
}

func cmdWatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool watch <dir>")
		os.Exit(1)
	}

	dir := args[0]
	mgr := assets.NewManager(dir)
	defer mgr.Close()

	check := func(name string) {
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			return
		}
		m, err := mgr.LoadRig(name)
		if err != nil {
			printFail(name, err)
			return
		}
		printOK(name, m.Graph.Len(), m.Animations.Len())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fail(err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			check(e.Name())
		}
	}

	w, err := mgr.Watch(check)
	if err != nil {
		fail(err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	<-ctx.Done()
}

func cmdInitConfig(args []string) {
	cfg := config.Default()
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", args[0])
		return
	}
	if err := cfg.Save(); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s/config.yaml\n", config.ConfigDir())
}
