package inference

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // gif 디코더 등록
	_ "image/jpeg" // jpeg 디코더 등록
	_ "image/png"  // png 디코더 등록

	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // bmp 디코더 등록
	_ "golang.org/x/image/tiff" // tiff 디코더 등록
	_ "golang.org/x/image/webp" // webp 디코더 등록
)

const channels = 3

var (
	errEmptyImage    = errors.New("Empty image data")
	errImageTooLarge = errors.New("Image too large")
)

// ImageDecodeError 업로드 된 데이터를 이미지로 해석할 수 없음
type ImageDecodeError struct {
	Err error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("Fail to decode image: %s", e.Err)
}

func (e *ImageDecodeError) Unwrap() error {
	return e.Err
}

// Tensor 모델 입력 텐서 (NHWC, RGB, [0, 1])
type Tensor struct {
	Shape []int64
	Data  []float32
}

// Normalize 임의의 이미지 데이터를 (1, 160, 160, 3) 텐서로 변환
func Normalize(data []byte) (*Tensor, error) {
	if len(data) == 0 {
		return nil, &ImageDecodeError{Err: errEmptyImage}
	}

	ic, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{Err: err}
	}
	if int64(ic.Width)*int64(ic.Height) > int64(constants.MaxImagePixels) {
		return nil, &ImageDecodeError{
			Err: fmt.Errorf("%w: %dx%d", errImageTooLarge, ic.Width, ic.Height),
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{Err: err}
	}

	// 종횡비는 유지하지 않음
	size := uint(constants.ImageSize)
	resized := resize.Resize(size, size, toRGB(img), resize.Bicubic)

	return toTensor(resized, constants.ImageSize), nil
}

// toRGB 컬러 모델에 관계없이 알파가 없는 8bit RGB 이미지로 변환
func toRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgb := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			d := rgb.Pix[rgb.PixOffset(0, y):]
			for i := 0; i < b.Dx()*4; i += 4 {
				d[i+0], d[i+1], d[i+2], d[i+3] = s[i+0], s[i+1], s[i+2], 0xff
			}
		}
		return rgb
	case *image.RGBA:
		if src.Opaque() {
			draw.Draw(rgb, rgb.Bounds(), src, b.Min, draw.Src)
			return rgb
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			off := rgb.PixOffset(x-b.Min.X, y-b.Min.Y)
			rgb.Pix[off+0] = c.R
			rgb.Pix[off+1] = c.G
			rgb.Pix[off+2] = c.B
			rgb.Pix[off+3] = 0xff
		}
	}

	return rgb
}

func toTensor(img image.Image, size int) *Tensor {
	data := make([]float32, size*size*channels)
	b := img.Bounds()

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*size + x) * channels
			data[i+0] = float32(r>>8) / 255
			data[i+1] = float32(g>>8) / 255
			data[i+2] = float32(bl>>8) / 255
		}
	}

	return &Tensor{
		Shape: []int64{1, int64(size), int64(size), channels},
		Data:  data,
	}
}
