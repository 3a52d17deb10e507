package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"
	"github.com/tdeck-os/go-tdmap/td"
	"github.com/tdeck-os/go-tdmap/tile"
)

type infoCmd struct {
	inputPath string
}

func (c *infoCmd) Name() string     { return "info" }
func (c *infoCmd) Synopsis() string { return "print archive header and per-zoom tile counts" }
func (c *infoCmd) Usage() string {
	return "tdmaputils info -i <path>\n"
}
func (c *infoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input archive path")
}

func (c *infoCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	reader, err := td.NewFileReader(c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer reader.Close()

	header := reader.Header()
	fmt.Printf("version:      %d\n", header.Version)
	fmt.Printf("compression:  %v\n", header.Compression)
	fmt.Printf("tile size:    %d\n", header.TileSize)
	fmt.Printf("tiles:        %d\n", header.TileCount)
	fmt.Printf("zoom range:   %d-%d\n", header.MinZoom, header.MaxZoom)
	fmt.Printf("labels:       %d\n", header.LabelCount)
	if !reader.IndexComplete() {
		fmt.Println("warning: tile index is truncated; archive is degraded")
	}

	perZoom := make(map[uint32]int)
	dataBytes := uint64(0)
	reader.VisitLocations(func(tileID tile.ID, location tile.Location) error {
		perZoom[tileID.Z]++
		dataBytes += location.Length
		return nil
	})
	fmt.Printf("data bytes:   %d\n", dataBytes)
	for z := header.MinZoom; z <= header.MaxZoom; z++ {
		if count := perZoom[uint32(z)]; count > 0 {
			fmt.Printf("  z%-2d  %d tiles\n", z, count)
		}
	}

	return subcommands.ExitSuccess
}
