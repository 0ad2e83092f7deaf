// Command mapgen generates a terrain map and writes it as a snapshot.
package main

import (
	"flag"
	"fmt"
	"os"

	"map-renderer/voxel"
)

func main() {
	var (
		width  = flag.Int("width", 256, "map width in voxels (power of two, multiple of 16)")
		height = flag.Int("height", 256, "map height in voxels (power of two, multiple of 16)")
		depth  = flag.Int("depth", 64, "map depth in voxels (multiple of 16)")
		seed   = flag.Int64("seed", 1, "terrain seed")
		out    = flag.String("out", "maps/terrain.vxl.zst", "output snapshot path")
	)
	flag.Parse()

	m, err := voxel.Generate(*width, *height, *depth, *seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}
	if err := voxel.SaveFile(*out, m, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "save:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: %dx%dx%d seed=%d solid=%d\n", *out, m.Width(), m.Height(), m.Depth(), *seed, m.SolidCount())
}
