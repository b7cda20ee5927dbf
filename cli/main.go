package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	log "github.com/dsoprea/go-logging"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/printer"
	"github.com/ankit-chaubey/metasurgery/core/registry"
	"github.com/ankit-chaubey/metasurgery/core/writer"
)

const usage = `Usage: surgery [options] <file>...

Reads metadata from images, RAW files, audio, video and documents, and
writes EXIF, XMP and IPTC back into JPEG, PNG, TIFF, DNG, WebP, EXR and HDR.

Options:
`

// multiFlag collects the values of a repeatable flag.
type multiFlag []string

func (f *multiFlag) String() string     { return strings.Join(*f, ",") }
func (f *multiFlag) Set(v string) error { *f = append(*f, v); return nil }

type config struct {
	filter  multiFlag
	format  string
	output  string
	set     multiFlag
	del     multiFlag
	write   string
	inPlace bool
	all     bool
	strip   bool
	verbose bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var c config
	fs := flag.NewFlagSet("surgery", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.Var(&c.filter, "g", "show only `TAG` (repeatable; with -strip, keep it)")
	fs.StringVar(&c.format, "f", printer.Text, "output `format`: text, json or csv")
	fs.StringVar(&c.output, "o", "", "print to `FILE` instead of stdout")
	fs.Var(&c.set, "t", "set `TAG=VALUE` (repeatable)")
	fs.Var(&c.del, "d", "delete `TAG` (repeatable)")
	fs.StringVar(&c.write, "w", "", "write the modified image to `FILE`")
	fs.BoolVar(&c.inPlace, "p", false, "modify the input file in place")
	fs.BoolVar(&c.all, "a", false, "include binary and large values")
	fs.BoolVar(&c.strip, "strip", false, "remove EXIF, XMP, IPTC and text metadata")
	fs.BoolVar(&c.verbose, "v", false, "log parser decisions")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	configureLogging(c.verbose)

	p := printer.New(c.format)
	p.Writer, p.ErrWriter = stdout, stderr
	p.Filter, p.All = c.filter, c.all

	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return 2
	}
	switch c.format {
	case printer.Text, printer.JSON, printer.CSV:
	default:
		p.PrintError(fmt.Sprintf("unknown output format %q", c.format))
		return 2
	}

	if c.strip || len(c.set) > 0 || len(c.del) > 0 {
		return modify(p, c, files)
	}

	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			p.PrintError(err.Error())
			return 1
		}
		defer f.Close()
		p.Writer = f
	}
	return show(p, files)
}

var (
	cliLogger   = log.NewLogger("cli")
	consoleOnce sync.Once
)

// configureLogging routes the package loggers to the console, at debug
// level when verbose. The adapter is registered once per process.
func configureLogging(verbose bool) {
	consoleOnce.Do(func() {
		log.AddAdapter("console", log.NewConsoleLogAdapter())
	})
	level := "warning"
	if verbose {
		level = "debug"
	}
	scp := log.NewStaticConfigurationProvider()
	scp.SetDefaultAdapterName("console")
	scp.SetLevelName(level)
	log.LoadConfiguration(scp)
}

func show(p *printer.Printer, files []string) int {
	status := 0
	var parsed []*core.Metadata
	for _, path := range files {
		m, err := registry.ParseFile(path)
		if err != nil {
			p.PrintError(err.Error())
			status = 1
			continue
		}
		p.PrintWarnings(m)
		parsed = append(parsed, m)
	}
	if len(parsed) == 0 {
		return status
	}

	var err error
	switch p.Format {
	case printer.JSON:
		err = p.PrintJSON(parsed)
	case printer.CSV:
		err = p.PrintCSV(parsed)
	default:
		for _, m := range parsed {
			if err = p.Print(m); err != nil {
				break
			}
		}
	}
	if err != nil {
		p.PrintError(err.Error())
		return 1
	}
	return status
}

func modify(p *printer.Printer, c config, files []string) int {
	if c.write == "" && !c.inPlace {
		p.PrintError("-t, -d and -strip need -w FILE or -p")
		return 2
	}
	if c.write != "" && (c.inPlace || len(files) > 1) {
		p.PrintError("-w takes a single input file and excludes -p")
		return 2
	}

	eo := core.EditOptions{Set: map[string]string{}, Delete: c.del}
	for _, kv := range c.set {
		k, v, ok := printer.ParseKV(kv)
		if !ok {
			p.PrintError(fmt.Sprintf("-t %q is not TAG=VALUE", kv))
			return 2
		}
		eo.Set[k] = v
	}

	status := 0
	for _, path := range files {
		target, err := apply(path, c, eo)
		if err != nil {
			p.PrintError(err.Error())
			status = 1
			continue
		}
		p.PrintSuccess("updated " + target)
	}
	return status
}

// apply strips and then edits path, returning the file that was written.
func apply(path string, c config, eo core.EditOptions) (string, error) {
	opts := writer.Options{Output: c.write, InPlace: c.inPlace}
	target := path
	if c.write != "" {
		target = c.write
	}
	if c.strip {
		cliLogger.Debugf(nil, "stripping %s into %s", path, target)
		if err := writer.Strip(path, core.StripOptions{KeepFields: c.filter}, opts); err != nil {
			return "", err
		}
		// The edit continues from the stripped file.
		path, opts = target, writer.Options{InPlace: true}
	}
	if len(eo.Set) > 0 || len(eo.Delete) > 0 {
		cliLogger.Debugf(nil, "editing %s: %d set, %d deleted", path, len(eo.Set), len(eo.Delete))
		if _, err := writer.Edit(path, eo, opts); err != nil {
			return "", err
		}
	}
	return target, nil
}
