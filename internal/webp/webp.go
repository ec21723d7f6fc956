// Package webp converts WebP images, animated or not, to GIF.
package webp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"log/slog"
	"os"

	utilfs "github.com/babarot/scripts/internal/utils/fs"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/riff"
	xwebp "golang.org/x/image/webp"
)

var (
	// ErrNotWebP is returned when the source is not a WebP image
	ErrNotWebP = errors.New("not a webp image")

	// ErrMalformed is returned for truncated or inconsistent containers
	ErrMalformed = errors.New("malformed webp")
)

var (
	fccWEBP = riff.FourCC{'W', 'E', 'B', 'P'}
	fccVP8X = riff.FourCC{'V', 'P', '8', 'X'}
	fccANIM = riff.FourCC{'A', 'N', 'I', 'M'}
	fccANMF = riff.FourCC{'A', 'N', 'M', 'F'}
	fccALPH = riff.FourCC{'A', 'L', 'P', 'H'}
	fccVP8  = riff.FourCC{'V', 'P', '8', ' '}
	fccVP8L = riff.FourCC{'V', 'P', '8', 'L'}
)

const (
	flagAnimation = 0x02
	flagAlpha     = 0x10

	anmfHeaderSize = 16
)

// Decoder decodes a standalone WebP bitstream
type Decoder func(r io.Reader) (image.Image, error)

// Converter turns WebP files into GIF files
type Converter struct {
	// Decode decodes still images and individual animation frames
	Decode Decoder
}

// Convert converts src to a GIF written at dst using the x/image decoder
func Convert(src, dst string) error {
	return Converter{Decode: xwebp.Decode}.Convert(src, dst)
}

// Convert converts src to a GIF written at dst. Nothing appears at dst
// unless the whole conversion succeeds.
func (c Converter) Convert(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	if mt := mimetype.Detect(data); !mt.Is("image/webp") {
		return fmt.Errorf("%w: %s is %s", ErrNotWebP, src, mt.String())
	}

	g, err := c.toGIF(data)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", src, err)
	}
	slog.Info("converted", "src", src, "frames", len(g.Image), "loop", g.LoopCount)

	f, cleanup, commit, err := utilfs.CreateAtomic(dst, 0644)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := gif.EncodeAll(f, g); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return commit()
}

// animation is the parsed form of an animated WebP
type animation struct {
	width, height int
	loopCount     int
	frames        []frame
}

type frame struct {
	x, y          int
	width, height int
	duration      int // milliseconds
	blend         bool
	dispose       bool
	bitstream     []byte // standalone WebP file for this frame
}

func (c Converter) toGIF(data []byte) (*gif.GIF, error) {
	anim, err := parseAnimation(data)
	if err != nil {
		return nil, err
	}
	if anim == nil {
		img, err := c.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return &gif.GIF{
			Image:    []*image.Paletted{quantize(img)},
			Delay:    []int{0},
			Disposal: []byte{gif.DisposalNone},
		}, nil
	}
	return c.render(anim)
}

// render composites each frame onto the canvas and snapshots the result
func (c Converter) render(anim *animation) (*gif.GIF, error) {
	bounds := image.Rect(0, 0, anim.width, anim.height)
	canvas := image.NewNRGBA(bounds)

	g := &gif.GIF{
		LoopCount: gifLoopCount(anim.loopCount),
		Config: image.Config{
			ColorModel: gifPalette,
			Width:      anim.width,
			Height:     anim.height,
		},
	}

	for i, fr := range anim.frames {
		img, err := c.Decode(bytes.NewReader(fr.bitstream))
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		rect := image.Rect(fr.x, fr.y, fr.x+fr.width, fr.y+fr.height).Intersect(bounds)
		op := draw.Src
		if fr.blend {
			op = draw.Over
		}
		draw.Draw(canvas, rect, img, img.Bounds().Min, op)

		g.Image = append(g.Image, quantize(canvas))
		g.Delay = append(g.Delay, (fr.duration+5)/10)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)

		if fr.dispose {
			draw.Draw(canvas, rect, image.Transparent, image.Point{}, draw.Src)
		}
	}

	slog.Debug("rendered animation", "width", anim.width, "height", anim.height, "frames", len(anim.frames))
	return g, nil
}

// gifLoopCount maps WebP loop counts (0 = forever, N = play N times) onto
// GIF's (0 = forever, -1 = once, N = N extra repeats)
func gifLoopCount(n int) int {
	switch n {
	case 0:
		return 0
	case 1:
		return -1
	default:
		return n - 1
	}
}

var gifPalette = append(color.Palette{color.Transparent}, palette.WebSafe...)

func quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), gifPalette)
	draw.FloydSteinberg.Draw(p, p.Bounds(), img, b.Min)
	return p
}

// parseAnimation returns nil for still images
func parseAnimation(data []byte) (*animation, error) {
	formType, r, err := riff.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if formType != fccWEBP {
		return nil, ErrNotWebP
	}

	id, _, chunk, err := r.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if id != fccVP8X {
		return nil, nil
	}
	header, err := io.ReadAll(chunk)
	if err != nil || len(header) < 10 {
		return nil, fmt.Errorf("%w: short VP8X chunk", ErrMalformed)
	}
	if header[0]&flagAnimation == 0 {
		return nil, nil
	}

	anim := &animation{
		width:  1 + int(uint24(header[4:7])),
		height: 1 + int(uint24(header[7:10])),
	}

	for {
		id, _, chunk, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch id {
		case fccANIM:
			b, err := io.ReadAll(chunk)
			if err != nil || len(b) < 6 {
				return nil, fmt.Errorf("%w: short ANIM chunk", ErrMalformed)
			}
			anim.loopCount = int(binary.LittleEndian.Uint16(b[4:6]))
		case fccANMF:
			b, err := io.ReadAll(chunk)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			fr, err := parseFrame(b)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", len(anim.frames), err)
			}
			anim.frames = append(anim.frames, fr)
		default:
			slog.Debug("skipping chunk", "id", string(id[:]))
		}
	}

	if len(anim.frames) == 0 {
		return nil, fmt.Errorf("%w: animation has no frames", ErrMalformed)
	}
	return anim, nil
}

// parseFrame reads an ANMF payload and rewraps its image data as a
// standalone WebP
func parseFrame(b []byte) (frame, error) {
	if len(b) < anmfHeaderSize {
		return frame{}, fmt.Errorf("%w: short ANMF chunk", ErrMalformed)
	}
	fr := frame{
		x:        2 * int(uint24(b[0:3])),
		y:        2 * int(uint24(b[3:6])),
		width:    1 + int(uint24(b[6:9])),
		height:   1 + int(uint24(b[9:12])),
		duration: int(uint24(b[12:15])),
		blend:    b[15]&0x02 == 0,
		dispose:  b[15]&0x01 != 0,
	}

	// The frame data is a sequence of chunks; reading it back through riff
	// needs a RIFF header in front of it.
	payload := b[anmfHeaderSize:]
	_, r, err := riff.NewReader(io.MultiReader(riffHeader(len(payload)), bytes.NewReader(payload)))
	if err != nil {
		return frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var alpha, bitstream []byte
	var bitstreamID riff.FourCC
	for {
		id, _, chunk, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch id {
		case fccALPH:
			if alpha, err = io.ReadAll(chunk); err != nil {
				return frame{}, err
			}
		case fccVP8, fccVP8L:
			if bitstream, err = io.ReadAll(chunk); err != nil {
				return frame{}, err
			}
			bitstreamID = id
		}
	}
	if bitstream == nil {
		return frame{}, fmt.Errorf("%w: frame has no image data", ErrMalformed)
	}

	var chunks bytes.Buffer
	if alpha != nil && bitstreamID == fccVP8 {
		vp8x := make([]byte, 10)
		vp8x[0] = flagAlpha
		putUint24(vp8x[4:7], uint32(fr.width-1))
		putUint24(vp8x[7:10], uint32(fr.height-1))
		writeChunk(&chunks, fccVP8X, vp8x)
		writeChunk(&chunks, fccALPH, alpha)
	}
	writeChunk(&chunks, bitstreamID, bitstream)

	var file bytes.Buffer
	io.Copy(&file, riffHeader(chunks.Len()))
	file.Write(chunks.Bytes())
	fr.bitstream = file.Bytes()
	return fr, nil
}

func riffHeader(payloadLen int) io.Reader {
	h := make([]byte, 12)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(4+payloadLen))
	copy(h[8:12], fccWEBP[:])
	return bytes.NewReader(h)
}

func writeChunk(w *bytes.Buffer, id riff.FourCC, data []byte) {
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(data)))
	w.Write(id[:])
	w.Write(size[:])
	w.Write(data)
	if len(data)%2 == 1 {
		w.WriteByte(0)
	}
}

func uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
