// meshtool is a CLI utility for inspecting, generating and converting meshes.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/logger"
)

// errUsage makes main print the usage text.
var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	a := &app{cfg: cfg, out: os.Stdout}
	if err := a.run(config.Args()); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		} else {
			logger.Error("command failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

type app struct {
	cfg *config.Config
	out io.Writer
}

func (a *app) run(args []string) error {
	if len(args) < 1 {
		return errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		return a.cmdInfo(rest)
	case "validate", "check":
		return a.cmdValidate(rest)
	case "primitive", "gen":
		return a.cmdPrimitive(rest)
	case "dump":
		return a.cmdDump(rest)
	case "convert":
		return a.cmdConvert(rest)
	case "scene":
		return a.cmdScene(rest)
	case "watch":
		return a.cmdWatch(rest)
	case "help", "-h", "--help":
		printUsage(a.out)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshtool - mesh ingestion utility

Usage:
  meshtool [global options] <command> [options]

Global options:
  -config <file>      Config file (default ./meshkit.yaml)
  -debug              Debug logging
  -log-file <file>    Also log to a rotating file
  -fallback <kind>    Primitive used when a mesh fails to load, or none
  -encoding <charset> Charset of OBJ documents

Commands:
  info <file>                        Show counts, index width and bounds
  validate <file>...                 Parse and check every file
  primitive <kind> [options]         Generate cube, sphere, cylinder or prism
  dump <file> [-n N]                 Print the first N vertices and triangles
  convert <in> <out.glb|out.gltf>    Re-encode a mesh as glTF
  scene <file>...                    Lay files out in a scene and pick the centre
  watch <file>                       Re-parse the file whenever it changes

Examples:
  meshtool info models/teapot.obj
  meshtool primitive sphere -radius 2 -lat 32 -lon 64
  meshtool -fallback sphere scene models/a.obj models/b.gltf
  meshtool convert teapot.obj teapot.glb`)
}
