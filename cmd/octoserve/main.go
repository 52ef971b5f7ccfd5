// Package main provides a server that loads a 3D occupancy octree from a
// map file and serves it as a binary payload and as per-level cube markers.
package main

import (
	"context"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/octoserve/mapserver"
	"go.viam.com/octoserve/markers"
)

var logger = golog.NewDevelopmentLogger("octoserve")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

var (
	defaultListen    = "tcp://*:5555"
	defaultBroadcast = "tcp://*:5556"
)

// Arguments for the command.
type Arguments struct {
	MapFile     string  `flag:"0,required,usage=octree map file (.bt) to read"`
	FrameID     string  `flag:"frame-id,usage=coordinate frame tag for the served map"`
	NoHeightMap bool    `flag:"no-height-map,usage=disable height-based cell coloring"`
	ColorFactor float64 `flag:"color-factor,usage=scale of the height color gradient"`
	Color       string  `flag:"color,usage=fixed cell color as hex (e.g. #0000ff)"`
	Listen      string  `flag:"listen,usage=zmq address of the map request socket"`
	Broadcast   string  `flag:"broadcast,usage=zmq address of the visualization publisher"`
	Preview     string  `flag:"preview,usage=write a top-down PNG preview to this path"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) (err error) {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.Listen == "" {
		argsParsed.Listen = defaultListen
	}
	if argsParsed.Broadcast == "" {
		argsParsed.Broadcast = defaultBroadcast
	}

	cfg := mapserver.DefaultConfig()
	if argsParsed.FrameID != "" {
		cfg.FrameID = argsParsed.FrameID
	}
	if argsParsed.NoHeightMap {
		cfg.UseHeightMap = false
	}
	if argsParsed.ColorFactor != 0 {
		cfg.ColorFactor = argsParsed.ColorFactor
	}
	if argsParsed.Color != "" {
		color, err := markers.NewColorRGBAFromHex(argsParsed.Color)
		if err != nil {
			return err
		}
		cfg.Color = color
	}

	server, err := mapserver.NewServerFromFile(argsParsed.MapFile, cfg, logger)
	if err != nil {
		return err
	}

	if argsParsed.Preview != "" {
		if err := mapserver.WritePreviewPNG(argsParsed.Preview, server.Snapshot(), 800); err != nil {
			return err
		}
		logger.Infof("wrote preview to %s", argsParsed.Preview)
	}

	broadcaster, err := mapserver.NewBroadcaster(ctx, argsParsed.Broadcast, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, broadcaster.Close())
	}()
	// publish once; subscribers present at startup receive the frozen map
	if err := broadcaster.Publish(server.Snapshot()); err != nil {
		return err
	}

	responder, err := mapserver.NewResponder(ctx, argsParsed.Listen, server, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, responder.Close())
	}()

	return responder.Serve(ctx)
}
