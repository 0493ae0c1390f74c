package pdfdoc

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/tiff"

	"github.com/paperview/paperview/extract"
)

// extractTiles returns every raster image painted on the page with its
// placed bounding box in the top-down frame. Placements come from the
// content stream scan, bitmaps from the page's image XObjects; the two
// are joined on the XObject resource name. A placement whose name
// resolves to no image (a form XObject, or an unsupported encoding) is
// dropped, as is an image that is never painted.
func (d *Document) extractTiles(pageNumber int, pageHeight float64) ([]extract.ImageTile, error) {
	r, err := pdfcpu.ExtractPageContent(d.pctx, pageNumber)
	if err != nil {
		return nil, &extract.ParseError{Page: pageNumber, Err: fmt.Errorf("page content: %w", err)}
	}
	stream, err := io.ReadAll(r)
	if err != nil {
		return nil, &extract.ParseError{Page: pageNumber, Err: err}
	}

	placements := scanPlacements(stream)
	if len(placements) == 0 {
		return nil, nil
	}

	bitmaps, err := d.pageBitmaps(pageNumber)
	if err != nil {
		return nil, err
	}

	var tiles []extract.ImageTile
	used := make(map[string]bool)
	for _, pl := range placements {
		bm, ok := bitmaps[pl.name]
		if !ok {
			continue
		}
		if used[pl.name] {
			bm = cloneRGBA(bm)
		}
		used[pl.name] = true

		tiles = append(tiles, extract.ImageTile{
			Page: pageNumber,
			BBox: extract.BBox{
				X0:     pl.x0,
				Top:    pageHeight - pl.y1,
				X1:     pl.x1,
				Bottom: pageHeight - pl.y0,
			},
			Bitmap: bm,
		})
	}
	return tiles, nil
}

// pageBitmaps decodes the page's image XObjects, keyed by resource name.
// An image in an encoding the decoders cannot handle is skipped rather
// than failing the page.
func (d *Document) pageBitmaps(pageNumber int) (map[string]*image.RGBA, error) {
	images, err := pdfcpu.ExtractPageImages(d.pctx, pageNumber, false)
	if err != nil {
		return nil, &extract.ParseError{Page: pageNumber, Err: fmt.Errorf("page images: %w", err)}
	}

	out := make(map[string]*image.RGBA, len(images))
	for _, img := range images {
		bm, err := decodeBitmap(img)
		if err != nil {
			continue
		}
		out[img.Name] = bm
	}
	return out, nil
}

func decodeBitmap(img model.Image) (*image.RGBA, error) {
	var (
		decoded image.Image
		err     error
	)
	switch img.FileType {
	case "png":
		decoded, err = png.Decode(img)
	case "jpg", "jpeg":
		decoded, err = jpeg.Decode(img)
	case "tif", "tiff":
		decoded, err = tiff.Decode(img)
	default:
		return nil, fmt.Errorf("unsupported image type %q", img.FileType)
	}
	if err != nil {
		return nil, err
	}
	return toRGBA(decoded), nil
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
