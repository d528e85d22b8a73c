package plot

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/plotkit/plotkit/pkg/memo"
)

// Labels raster with the Go Regular face embedded in golang.org/x/image, so
// rendering needs no font files on disk. Faces are cached per size: a face is
// cheap to keep but not to build, and label-heavy surfaces reuse a handful of
// sizes.

var (
	parsedFont *opentype.Font
	parseOnce  sync.Once
)

var face = memo.Memoize(64, func(size float64) font.Face {
	parseOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			// goregular.TTF is a compile-time constant; parse failure
			// means a broken toolchain, not bad input.
			panic(err)
		}
		parsedFont = f
	})
	fc, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(err)
	}
	return fc
}, memo.WithKeyType("font-face"))
