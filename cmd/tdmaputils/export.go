package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
	"github.com/tdeck-os/go-tdmap/td"
	"github.com/tdeck-os/go-tdmap/tile"
	"github.com/tdeck-os/go-tdmap/xyz"
)

type exportCmd struct {
	inputPath   string
	outputPattern string
}

func (c *exportCmd) Name() string     { return "export" }
func (c *exportCmd) Synopsis() string { return "export archive tiles as an XYZ PNG tree" }
func (c *exportCmd) Usage() string {
	return "tdmaputils export -i <path> -o <pattern, e.g. out/{z}/{x}/{y}.png>\n"
}
func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input archive path")
	f.StringVar(&c.outputPattern, "o", "", "Output file pattern with {z}/{x}/{y} placeholders")
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	reader, err := td.NewFileReader(c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer reader.Close()

	writer, err := xyz.NewWriter(c.outputPattern, reader.TileSize())
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	bar := progressbar.NewOptions(
		int(reader.Header().TileCount),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
	)
	err = reader.VisitTiles(func(tileID tile.ID, raster []byte) error {
		err := writer.WriteTile(tileID, raster)
		bar.Add(1)
		return err
	})
	bar.Finish()
	fmt.Println()

	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
