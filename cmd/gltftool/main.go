// gltftool is a CLI utility for inspecting glTF manifests and their buffers.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Faultbox/gltfview/internal/logger"
	"github.com/Faultbox/gltfview/internal/verify"
	"github.com/Faultbox/gltfview/pkg/gltf"
)

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
	case "accessors", "acc":
		cmdAccessors(args)
	case "meshes":
		cmdMeshes(args)
	case "dump":
		cmdDump(args)
	case "verify":
		cmdVerify(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gltftool - glTF manifest utility

Usage:
  gltftool <command> [options]

Commands:
  info <file.gltf>                        Show tables, payloads and defects
  accessors <file.gltf>                   List accessors
  meshes <file.gltf>                      List meshes and their primitives
  dump [-decode] [-n N] <file.gltf> <i>   Dump the data of accessor i
  verify <file.gltf>                      Compare decoded data with a reference reader

Common options:
  -dir <path>   Directory holding the buffers (default: manifest directory)
  -v            Log loader activity

Examples:
  gltftool info scene.gltf
  gltftool dump -decode -n 8 scene.gltf 0
  gltftool accessors -dir ./buffers scene.gltf
  gltftool verify scene.gltf`)
}

// command bundles the flags every subcommand accepts.
type command struct {
	fs      *flag.FlagSet
	dir     *string
	verbose *bool
}

func newCommand(name string) *command {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &command{
		fs:      fs,
		dir:     fs.String("dir", "", "Directory holding the buffers"),
		verbose: fs.Bool("v", false, "Log loader activity"),
	}
}

// open parses args and loads the manifest named by the first positional
// argument. Defects are reported but only an unreadable manifest exits.
func (c *command) open(args []string, usage string, minArgs int) *gltf.Loader {
	c.fs.Parse(args)
	if c.fs.NArg() < minArgs {
		fmt.Fprintln(os.Stderr, "Usage: gltftool "+usage)
		os.Exit(1)
	}

	level := "warn"
	if *c.verbose {
		level = "debug"
	}
	if err := logger.InitCLI(level); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	l, err := gltf.Open(c.fs.Arg(0), *c.dir, gltf.WithLogger(logger.Named("gltf")))
	if !l.Readable() {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return l
}

func cmdInfo(args []string) {
	c := newCommand("info")
	l := c.open(args, "info <file.gltf>", 1)

	asset := l.Asset()
	fmt.Printf("Manifest:    %s\n", c.fs.Arg(0))
	fmt.Printf("Buffer dir:  %s\n", l.Dir())
	fmt.Printf("Version:     %s\n", orNone(asset.Version))
	fmt.Printf("Generator:   %s\n", orNone(asset.Generator))
	fmt.Printf("Accessors:   %d\n", len(l.Accessors()))
	fmt.Printf("BufferViews: %d\n", len(l.BufferViews()))
	fmt.Printf("Buffers:     %d\n", len(l.Buffers()))
	fmt.Printf("Meshes:      %d\n", len(l.Meshes()))
	fmt.Println()

	fmt.Println("Buffers:")
	store := l.Payloads()
	for i, b := range l.Buffers() {
		loaded := "missing"
		if size, ok := store.Size(gltf.Index(i)); ok {
			loaded = fmt.Sprintf("%d bytes loaded", size)
		}
		fmt.Printf("  [%d] %-32s %10d bytes  %s\n", i, shorten(b.URI, 32), b.ByteLength, loaded)
	}
	fmt.Printf("  total payload: %.2f KB\n", float64(store.TotalBytes())/1024)

	defects := l.Defects()
	if len(defects) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("Defects (%d):\n", len(defects))
	for _, d := range defects {
		fmt.Printf("  %v\n", d)
	}
}

func cmdAccessors(args []string) {
	c := newCommand("accessors")
	l := c.open(args, "accessors <file.gltf>", 1)

	fmt.Printf("%-5s %-6s %-6s %-15s %-7s %8s %s\n", "#", "view", "offset", "component", "type", "count", "name")
	for i, a := range l.Accessors() {
		view := "-"
		if a.BufferView.Valid() {
			view = strconv.Itoa(int(a.BufferView))
		}
		comp := a.ComponentType.String()
		if a.Normalized {
			comp += "*"
		}
		fmt.Printf("%-5d %-6s %-6d %-15s %-7s %8d %s\n", i, view, a.ByteOffset, comp, a.Type, a.Count, a.Name)
	}
}

func cmdMeshes(args []string) {
	c := newCommand("meshes")
	l := c.open(args, "meshes <file.gltf>", 1)

	for i, m := range l.Meshes() {
		fmt.Printf("[%d] %s (%d primitives)\n", i, orNone(m.Name), len(m.Primitives))
		for j, p := range m.Primitives {
			var attrs []string
			for attr, idx := range p.Attributes {
				attrs = append(attrs, fmt.Sprintf("%s=%d", attr, idx))
			}
			sort.Strings(attrs)

			indices := "none"
			if p.Indices.Valid() {
				indices = strconv.Itoa(int(p.Indices))
			}
			fmt.Printf("  %d: %-14s indices=%-5s %s\n", j, p.Mode, indices, strings.Join(attrs, " "))
		}
	}
}

func cmdDump(args []string) {
	c := newCommand("dump")
	decode := c.fs.Bool("decode", false, "Decode elements instead of printing raw bytes")
	limit := c.fs.Int("n", 0, "Limit output to N elements, or N*16 bytes (0 = all)")
	l := c.open(args, "dump [-decode] [-n N] <file.gltf> <accessor>", 2)

	idx, err := strconv.Atoi(c.fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid accessor index %q\n", c.fs.Arg(1))
		os.Exit(1)
	}
	a, ok := l.Accessor(gltf.Index(idx))
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %v: %d\n", gltf.ErrUnknownAccessor, idx)
		os.Exit(1)
	}

	if !*decode {
		data, err := l.GetData(a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Accessor %d: %d bytes from view %d\n", idx, len(data), a.BufferView)
		if *limit > 0 && len(data) > *limit*16 {
			data = data[:*limit*16]
		}
		fmt.Print(hex.Dump(data))
		return
	}

	values, err := l.ReadFloats(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	width := a.Type.Components()
	fmt.Printf("Accessor %d: %d x %s %s\n", idx, a.Count, a.ComponentType, a.Type)
	for i := 0; i < a.Count; i++ {
		if *limit > 0 && i >= *limit {
			fmt.Printf("... (%d more)\n", a.Count-i)
			break
		}
		fmt.Printf("%6d: %v\n", i, values[i*width:(i+1)*width])
	}
}

func cmdVerify(args []string) {
	c := newCommand("verify")
	l := c.open(args, "verify <file.gltf>", 1)

	report, err := verify.File(l, c.fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Primitives: %d\n", report.Primitives)
	fmt.Printf("Checked:    %d arrays\n", report.Checked)
	if report.OK() {
		fmt.Println("OK")
		return
	}

	fmt.Printf("Mismatches (%d):\n", len(report.Mismatches))
	for _, m := range report.Mismatches {
		fmt.Printf("  %s\n", m)
	}
	os.Exit(2)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
