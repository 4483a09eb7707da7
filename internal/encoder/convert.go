package encoder

// framePlane is one destination image plane sized rows*stride bytes.
type framePlane struct {
	data   []byte
	stride int
}

// BT.601 RGB to YUV coefficients in 16.16 fixed point.
const (
	coefYR = 19595 // 0.299
	coefYG = 38470 // 0.587
	coefYB = 7471  // 0.114

	coefUR = -11076 // -0.169
	coefUG = -21692 // -0.331
	coefUB = 32768  // 0.500

	coefVR = 32768  // 0.500
	coefVG = -27460 // -0.419
	coefVB = -5308  // -0.081
)

// rgbaToYUV420 fills 8-bit Y/U/V planes with 2x2 chroma subsampling.
// Chroma samples the top-left pixel of each block.
func rgbaToYUV420(rgba []byte, width, height int, yp, up, vp framePlane) {
	idx := 0
	for y := 0; y < height; y++ {
		yRow := yp.data[y*yp.stride:]
		for x := 0; x < width; x++ {
			r := int(rgba[idx])
			g := int(rgba[idx+1])
			b := int(rgba[idx+2])
			idx += 4

			yRow[x] = uint8((coefYR*r + coefYG*g + coefYB*b) >> 16)

			if y&1 == 0 && x&1 == 0 {
				u := ((coefUR*r + coefUG*g + coefUB*b) >> 16) + 128
				v := ((coefVR*r + coefVG*g + coefVB*b) >> 16) + 128
				up.data[(y>>1)*up.stride+(x>>1)] = uint8(u)
				vp.data[(y>>1)*vp.stride+(x>>1)] = uint8(v)
			}
		}
	}
}

// rgbaToYUVA420 is rgbaToYUV420 plus a full-resolution alpha plane.
func rgbaToYUVA420(rgba []byte, width, height int, yp, up, vp, ap framePlane) {
	rgbaToYUV420(rgba, width, height, yp, up, vp)
	idx := 3
	for y := 0; y < height; y++ {
		aRow := ap.data[y*ap.stride:]
		for x := 0; x < width; x++ {
			aRow[x] = rgba[idx]
			idx += 4
		}
	}
}

// rgbaToYUVA444P10 fills four full-resolution 10-bit little-endian
// planes (Y, U, V, A), two bytes per sample.
func rgbaToYUVA444P10(rgba []byte, width, height int, planes [4]framePlane) {
	idx := 0
	for y := 0; y < height; y++ {
		yRow := planes[0].data[y*planes[0].stride:]
		uRow := planes[1].data[y*planes[1].stride:]
		vRow := planes[2].data[y*planes[2].stride:]
		aRow := planes[3].data[y*planes[3].stride:]
		for x := 0; x < width; x++ {
			r := int(rgba[idx])
			g := int(rgba[idx+1])
			b := int(rgba[idx+2])
			a := rgba[idx+3]
			idx += 4

			yVal := uint8((coefYR*r + coefYG*g + coefYB*b) >> 16)
			uVal := uint8(((coefUR*r + coefUG*g + coefUB*b) >> 16) + 128)
			vVal := uint8(((coefVR*r + coefVG*g + coefVB*b) >> 16) + 128)

			put10(yRow, x, widen10(yVal))
			put10(uRow, x, widen10(uVal))
			put10(vRow, x, widen10(vVal))
			put10(aRow, x, widen10(a))
		}
	}
}

// widen10 expands an 8-bit sample to 10 bits by bit replication, mapping
// 0 to 0 and 255 to 1023.
func widen10(v uint8) uint16 {
	return uint16(v)<<2 | uint16(v)>>6
}

func put10(row []byte, x int, v uint16) {
	row[x*2] = byte(v)
	row[x*2+1] = byte(v >> 8)
}
