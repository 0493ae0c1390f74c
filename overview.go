package paperview

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	"image/jpeg"
	"time"

	"golang.org/x/image/draw"

	"github.com/paperview/paperview/extract"
)

// maxOverviewWidth caps embedded figure renditions; larger bitmaps are
// scaled down before encoding.
const maxOverviewWidth = 1200

var overviewTemplate = template.Must(template.New("overview").Parse(`<html><body>
<style>
	.metadata {
		display: flex;
		flex-direction: column;
		align-items: center;
		width: 50%;
		margin: 0 auto;
	}
	.metadata h1 { font-size: 36px; margin-bottom: 20px; }
	.metadata p { font-size: 18px; margin: 10px 0; }
	.metadata a { text-decoration: none; color: blue; }
	.metadata hr { width: 75%; border: 0; height: 1px; background-color: #333; margin: 40px 0; }
</style>
<div class="metadata">
	<h1>{{.Manuscript.Title}}</h1>
	<p>Authors: {{.Manuscript.Authors}}</p>
	<p>Date: {{.Manuscript.Date}}</p>
	<p>Category: {{.Manuscript.Category}}</p>
	<p>DOI: <a href="https://doi.org/{{.Manuscript.DOI}}">{{.Manuscript.DOI}}</a></p>
	<p>Corresponding author: {{.Manuscript.AuthorCorresponding}}</p>
	<p>Corresponding author institution: {{.Manuscript.AuthorCorrespondingInstitution}}</p>
	<p>Version: {{.Manuscript.Version}}</p>
	<p>Type: {{.Manuscript.Type}}</p>
	<p>License: {{.Manuscript.License}}</p>
	<p>Abstract: {{.Manuscript.Abstract}}</p>
	<p>PDF URL: <a href="{{.Manuscript.PDFURL}}">{{.Manuscript.PDFURL}}</a></p>
	<p>JATS XML: <a href="{{.Manuscript.JATSURL}}">{{.Manuscript.JATSURL}}</a></p>
	<hr>
</div>
{{range .Images}}<table>
	<tr>
		<td>
			<p><font size="+2">Image {{.Number}}</font></p>
			<img src="{{.Src}}" width="{{.Width}}" height="{{.Height}}" style="max-width: 75%; height: auto;"/><br>
		</td>
		<td>
			<p>{{.Caption}}</p>
		</td>
	</tr>
</table>
{{end}}</body></html>
`))

type overviewImage struct {
	Number  int
	Caption string
	Width   int
	Height  int
	Src     template.URL
}

type overviewData struct {
	Manuscript *Manuscript
	Images     []overviewImage
}

// RenderOverview produces a standalone HTML document for an article:
// the manuscript metadata followed by each figure with its caption,
// images embedded as data URIs.
func RenderOverview(a *Article) (string, error) {
	data := overviewData{Manuscript: a.Manuscript}

	if a.FullText {
		for i, fig := range a.Figures {
			w, h := jpegDims(fig.Image)
			data.Images = append(data.Images, overviewImage{
				Number:  i + 1,
				Caption: fig.Caption,
				Width:   w,
				Height:  h,
				Src:     jpegDataURI(fig.Image),
			})
		}
	} else if a.Extraction != nil {
		lineText := make(map[int]string, len(a.Extraction.Lines))
		for _, line := range a.Extraction.Lines {
			lineText[line.Number] = line.Text
		}
		for _, img := range a.Extraction.Images {
			caption := ""
			if best := img.SortedByDistance(); len(best) > 0 {
				caption = lineText[best[0].Line]
			}
			encoded, w, h, err := encodeFigure(img.Bitmap)
			if err != nil {
				return "", fmt.Errorf("encode image %d: %w", img.Number, err)
			}
			data.Images = append(data.Images, overviewImage{
				Number:  img.Number,
				Caption: caption,
				Width:   w,
				Height:  h,
				Src:     jpegDataURI(encoded),
			})
		}
	}

	var buf bytes.Buffer
	if err := overviewTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Overview returns the rendered overview for a DOI, generating and
// caching it on first request.
func (c *Cache) Overview(ctx context.Context, doi string, opts extract.Options) (string, error) {
	var cached Overview
	if err := c.db.WithContext(ctx).First(&cached, "doi = ?", doi).Error; err == nil {
		return cached.HTML, nil
	}

	a, err := c.BuildArticle(ctx, doi, opts)
	if err != nil {
		return "", err
	}

	html, err := RenderOverview(a)
	if err != nil {
		return "", err
	}

	rec := &Overview{DOI: doi, HTML: html, Generated: time.Now()}
	if err := c.db.WithContext(ctx).Save(rec).Error; err != nil {
		return "", fmt.Errorf("store overview: %w", err)
	}
	return html, nil
}

// encodeFigure JPEG-encodes a bitmap, scaling it down first when wider
// than the embed cap.
func encodeFigure(img image.Image) ([]byte, int, int, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxOverviewWidth {
		scaled := image.NewRGBA(image.Rect(0, 0, maxOverviewWidth, h*maxOverviewWidth/w))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
		w, h = scaled.Bounds().Dx(), scaled.Bounds().Dy()
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), w, h, nil
}

func jpegDataURI(data []byte) template.URL {
	return template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data))
}

func jpegDims(data []byte) (int, int) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
