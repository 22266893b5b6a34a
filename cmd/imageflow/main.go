// Command imageflow runs a sequence of text operations against a layered
// document and emits the composited raster.
//
// Usage:
//
//	imageflow ops --width <w> --height <h> --out <file> --op "<action key=value ...>" [--op ...]
//	imageflow ops --width <w> --height <h> --ops-file <path> --out <file>
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	imageflow "github.com/imageflow/imageflow"
	"github.com/imageflow/imageflow/internal/ilog"
	"github.com/imageflow/imageflow/internal/ops"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "ops":
		err = runOps(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "imageflow: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "imageflow: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  imageflow ops --width <w> --height <h> --out <file> --op "<action key=value ...>" [--op ...]
  imageflow ops --width <w> --height <h> --ops-file <path> --out <file>

Use --debug to enable verbose dispatch logging.
`)
}

type opsFlagList []string

func (l *opsFlagList) String() string { return strings.Join(*l, ", ") }
func (l *opsFlagList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func runOps(args []string) error {
	fs := flag.NewFlagSet("ops", flag.ContinueOnError)
	width := fs.Int("width", 0, "canvas width (required)")
	height := fs.Int("height", 0, "canvas height (required)")
	out := fs.String("out", "", "output file (extension selects the codec)")
	opsFile := fs.String("ops-file", "", "file of newline-separated op specs")
	debug := fs.Bool("debug", false, "enable verbose dispatch logging")
	var opList opsFlagList
	fs.Var(&opList, "op", `one operation, e.g. "draw-fill-rect path=/0 x=0 y=0 width=10 height=10 rgba=255,0,0,255"`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *debug {
		ilog.SetDefaultOutput(true)
	}

	if *width <= 0 || *height <= 0 {
		return fmt.Errorf("--width and --height must be positive")
	}
	if *out == "" {
		return fmt.Errorf("--out is required")
	}

	specs := []string(opList)
	if *opsFile != "" {
		fileSpecs, err := readOpsFile(*opsFile)
		if err != nil {
			return err
		}
		specs = append(specs, fileSpecs...)
	}
	if len(specs) == 0 {
		return fmt.Errorf("at least one --op or --ops-file entry is required")
	}

	doc, err := imageflow.NewDocument(*width, *height)
	if err != nil {
		return err
	}

	interp := &ops.Interpreter{
		Import: func(path string) (*imageflow.ImageBuffer, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			format, err := imageflow.FormatFromExtension(extOf(path))
			if err != nil {
				return nil, err
			}
			return imageflow.LoadImage(f, format)
		},
		Export: func(path string, composite *imageflow.ImageBuffer) error {
			format, err := imageflow.FormatFromExtension(extOf(path))
			if err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			return imageflow.SaveImage(f, composite, format)
		},
	}

	if err := interp.ApplyAll(doc, specs); err != nil {
		return err
	}

	format, err := imageflow.FormatFromExtension(extOf(*out))
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()
	ilog.Info.Printf("writing composite to %s", *out)
	return imageflow.SaveImage(f, doc.Composite(), format)
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

func readOpsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var specs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	return specs, scanner.Err()
}
