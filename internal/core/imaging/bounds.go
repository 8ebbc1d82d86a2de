package imaging

import "image"

// edgeGradientMin is the minimum gradient magnitude that counts as an
// edge pixel when tracing document outlines.
const edgeGradientMin = 40

// minBoundsAreaRatio guards against cropping to incidental clutter: a
// detected region must cover at least this share of the frame to be
// trusted as the document itself.
const minBoundsAreaRatio = 0.1

// DetectDocumentBounds locates the dominant rectangular region in a
// photo, typically a sheet of paper against a darker background. It
// traces intensity edges, groups them into connected outlines and
// takes the bounding box of the largest one. The second return is
// false when no outline covers enough of the frame to plausibly be
// the document, in which case callers should process the full image.
func DetectDocumentBounds(img image.Image) (image.Rectangle, bool) {
	w, h, pix := grayPlane(img)
	if w < 3 || h < 3 {
		return image.Rectangle{}, false
	}

	edges := edgeMask(w, h, pix)

	best := image.Rectangle{}
	bestCount := 0
	visited := make([]bool, w*h)
	queue := make([]int, 0, w)

	for start, on := range edges {
		if !on || visited[start] {
			continue
		}
		// Flood-fill one connected outline, tracking its extent.
		minX, minY, maxX, maxY := w, h, 0, 0
		count := 0
		visited[start] = true
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := idx%w, idx/w
			count++
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					nidx := ny*w + nx
					if edges[nidx] && !visited[nidx] {
						visited[nidx] = true
						queue = append(queue, nidx)
					}
				}
			}
		}
		if count > bestCount {
			bestCount = count
			best = image.Rect(minX, minY, maxX+1, maxY+1)
		}
	}

	if bestCount == 0 {
		return image.Rectangle{}, false
	}
	area := best.Dx() * best.Dy()
	if float64(area) < minBoundsAreaRatio*float64(w*h) {
		return image.Rectangle{}, false
	}
	return best, true
}

// edgeMask marks pixels whose local gradient magnitude clears the
// edge threshold, using central differences on the gray plane.
func edgeMask(w, h int, pix []uint8) []bool {
	mask := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := int(pix[y*w+x+1]) - int(pix[y*w+x-1])
			gy := int(pix[(y+1)*w+x]) - int(pix[(y-1)*w+x])
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy >= edgeGradientMin {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}
