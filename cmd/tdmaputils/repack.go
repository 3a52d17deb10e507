package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
	"github.com/tdeck-os/go-tdmap/td"
	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/tile"
	"golang.org/x/sync/errgroup"
)

type repackCmd struct {
	inputPath   string
	outputPath  string
	compression string
	workers     int
}

func (c *repackCmd) Name() string     { return "repack" }
func (c *repackCmd) Synopsis() string { return "rewrite an archive with a different tile codec" }
func (c *repackCmd) Usage() string {
	return "tdmaputils repack -i <path> -o <path> [-c none|rle|zstd] [-j workers]\n"
}
func (c *repackCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input archive path")
	f.StringVar(&c.outputPath, "o", "", "Output archive path")
	f.StringVar(&c.compression, "c", "rle", "Tile codec (none, rle, zstd)")
	f.IntVar(&c.workers, "j", runtime.NumCPU(), "Recompression workers")
}

func (c *repackCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	compression, err := spec.ParseCompression(c.compression)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	reader, err := td.NewFileReader(c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer reader.Close()

	tileIDs := make([]tile.ID, 0, reader.Header().TileCount)
	reader.VisitLocations(func(tileID tile.ID, _ tile.Location) error {
		tileIDs = append(tileIDs, tileID)
		return nil
	})

	bar := progressbar.NewOptions(len(tileIDs), progressbar.OptionShowIts(), progressbar.OptionShowCount())
	payloads := make([][]byte, len(tileIDs))

	var group errgroup.Group
	group.SetLimit(max(c.workers, 1))
	for i, tileID := range tileIDs {
		group.Go(func() error {
			packed, err := reader.ReadTileData(tileID)
			if err != nil {
				return fmt.Errorf("read %v: %w", tileID, err)
			}
			payloads[i], err = spec.Compress(packed, compression)
			if err != nil {
				return err
			}
			bar.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	bar.Finish()
	fmt.Println()

	writer, err := td.NewWriter(
		c.outputPath,
		td.WithTileSize(reader.TileSize()),
		td.WithCompression(compression),
	)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer writer.Close()

	for i, tileID := range tileIDs {
		if err := writer.WriteCompressedTile(tileID, payloads[i]); err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
	}

	labels, _, err := reader.Labels(0)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	for _, label := range labels {
		writer.AddLabel(label)
	}

	if err := writer.Finalize(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
