// Command mapexport writes the chunk meshes of a map snapshot as glTF.
package main

import (
	"flag"
	"fmt"
	"os"

	"map-renderer/export"
	"map-renderer/voxel"
)

func main() {
	var (
		mapPath = flag.String("map", "", "path to a map snapshot (.vxl.zst)")
		out     = flag.String("out", "map.glb", "output file (.glb or .gltf)")
	)
	flag.Parse()

	if *mapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -map")
		os.Exit(2)
	}

	m, hdr, err := voxel.LoadFile(*mapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load map:", err)
		os.Exit(1)
	}
	sum, err := export.SaveFile(*out, m)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("map v%d %dx%dx%d seed=%d -> %s: chunks=%d vertices=%d triangles=%d\n",
		hdr.Version, hdr.Width, hdr.Height, hdr.Depth, hdr.Seed, *out, sum.Chunks, sum.Vertices, sum.Triangles)
}
