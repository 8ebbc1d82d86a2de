package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// grayPlane flattens an image into a single-channel byte plane.
func grayPlane(img image.Image) (w, h int, pix []uint8) {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	w, h = b.Dx(), b.Dy()
	pix = make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			pix[y*w+x] = row[x*4]
		}
	}
	return w, h, pix
}

func planeToImage(w, h int, pix []uint8) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := pix[y*w+x]
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

// AdaptiveMeanThreshold binarizes using the mean of a window around
// each pixel, offset by c. Uneven lighting that defeats a single
// global threshold is handled per neighborhood. The window must be
// odd; 11 with c=2 works well for printed text.
func AdaptiveMeanThreshold(img image.Image, window, c int) *image.NRGBA {
	w, h, pix := grayPlane(img)
	if w == 0 || h == 0 {
		return planeToImage(w, h, pix)
	}

	// Summed-area table, one row/column of zero padding.
	integral := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(pix[y*w+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	r := window / 2
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-r), min(h-1, y+r)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-r), min(w-1, x+r)
			count := uint64((y1 - y0 + 1) * (x1 - x0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] -
				integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] +
				integral[y0*(w+1)+x0]
			threshold := int(sum/count) - c
			if int(pix[y*w+x]) > threshold {
				out[y*w+x] = 255
			}
		}
	}
	return planeToImage(w, h, out)
}

// OtsuThreshold binarizes with a single global threshold chosen to
// maximize between-class variance of the intensity histogram.
func OtsuThreshold(img image.Image) *image.NRGBA {
	w, h, pix := grayPlane(img)
	if w == 0 || h == 0 {
		return planeToImage(w, h, pix)
	}

	var hist [256]int
	for _, v := range pix {
		hist[v]++
	}

	total := w * h
	var sumAll float64
	for i, n := range hist {
		sumAll += float64(i * n)
	}

	var sumBack float64
	var weightBack int
	bestT, bestVar := 0, -1.0
	for t := 0; t < 256; t++ {
		weightBack += hist[t]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t * hist[t])
		meanBack := sumBack / float64(weightBack)
		meanFore := (sumAll - sumBack) / float64(weightFore)
		diff := meanBack - meanFore
		between := float64(weightBack) * float64(weightFore) * diff * diff
		if between > bestVar {
			bestVar = between
			bestT = t
		}
	}

	out := make([]uint8, total)
	for i, v := range pix {
		if int(v) > bestT {
			out[i] = 255
		}
	}
	return planeToImage(w, h, out)
}

// CleanBinary removes speckle from a binarized image with a 3x3
// morphological close (fill pinholes inside strokes) followed by an
// open (drop isolated noise pixels).
func CleanBinary(img image.Image) *image.NRGBA {
	w, h, pix := grayPlane(img)
	pix = erodePlane(w, h, dilatePlane(w, h, pix)) // close
	pix = dilatePlane(w, h, erodePlane(w, h, pix)) // open
	return planeToImage(w, h, pix)
}

func dilatePlane(w, h int, pix []uint8) []uint8 {
	out := make([]uint8, len(pix))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= h || nx < 0 || nx >= w {
						continue
					}
					if pix[ny*w+nx] > v {
						v = pix[ny*w+nx]
					}
				}
			}
			out[y*w+x] = v
		}
	}
	return out
}

func erodePlane(w, h int, pix []uint8) []uint8 {
	out := make([]uint8, len(pix))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= h || nx < 0 || nx >= w {
						continue
					}
					if pix[ny*w+nx] < v {
						v = pix[ny*w+nx]
					}
				}
			}
			out[y*w+x] = v
		}
	}
	return out
}
