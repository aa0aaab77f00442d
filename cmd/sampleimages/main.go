// Package main generates a set of sample PNG images for exercising the
// transform endpoints without real photographs: solid-color canvases of
// varied dimensions with a simple diagonal gradient so each file is
// visually distinguishable.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
)

type sample struct {
	name   string
	width  int
	height int
	base   color.RGBA
}

var samples = []sample{
	{"sample1.png", 400, 300, color.RGBA{R: 0xff, G: 0x64, B: 0x64, A: 0xff}},
	{"sample2.png", 300, 400, color.RGBA{R: 0x64, G: 0xff, B: 0x64, A: 0xff}},
	{"sample3.png", 350, 350, color.RGBA{R: 0x64, G: 0x64, B: 0xff, A: 0xff}},
	{"sample4.png", 500, 200, color.RGBA{R: 0xff, G: 0xff, B: 0x64, A: 0xff}},
	{"sample5.png", 200, 500, color.RGBA{R: 0xff, G: 0x64, B: 0xff, A: 0xff}},
}

func main() {
	outDir := flag.String("out", "sample_images", "directory to write sample images into")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	for _, s := range samples {
		path := filepath.Join(*outDir, s.name)
		if err := writeSample(path, s); err != nil {
			log.Fatalf("failed to write %s: %v", path, err)
		}
		fmt.Printf("Created: %s (%dx%d)\n", path, s.width, s.height)
	}

	fmt.Printf("\nCreated %d sample images in %s/\n", len(samples), *outDir)
}

func writeSample(path string, s sample) error {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))

	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			// Darken towards the bottom-right corner.
			shade := uint8((x + y) * 96 / (s.width + s.height))
			img.Set(x, y, color.RGBA{
				R: s.base.R - minShade(s.base.R, shade),
				G: s.base.G - minShade(s.base.G, shade),
				B: s.base.B - minShade(s.base.B, shade),
				A: 0xff,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

func minShade(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}
