// Package imagecodec は画像の転送エンコーディング解除・デコード・縮小を行うアダプタを提供します。
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/nfnt/resize"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
)

const (
	// DefaultMaxSide は検出器に渡す画像の長辺の上限（px）です。
	DefaultMaxSide = 1280
	// DefaultMaxPixels はデコードを許可する画素数の上限です。
	DefaultMaxPixels = 40_000_000
	// jpegQuality は再エンコード時のJPEG品質です。
	jpegQuality = 90
)

// Codec はbase64/data URIの解除と、画像の検証・縮小・JPEG再エンコードを行います。
type Codec struct {
	maxSide   int
	maxPixels int
}

// CodecがImageDecoderを実装していることをコンパイル時に検証します。
var _ usecase.ImageDecoder = (*Codec)(nil)

// New はCodecの新しいインスタンスを生成します。
// maxSide、maxPixelsが0以下の場合はそれぞれDefaultMaxSide、DefaultMaxPixelsを使用します。
func New(maxSide, maxPixels int) *Codec {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Codec{maxSide: maxSide, maxPixels: maxPixels}
}

// DecodeBase64 は純粋なbase64文字列、または"data:image/jpeg;base64,..."形式のdata URIをデコードします。
func (c *Codec) DecodeBase64(encoded string) ([]byte, error) {
	// data URIの場合は最初のカンマより後ろだけを使う
	if _, payload, ok := strings.Cut(encoded, ","); ok {
		encoded = payload
	}
	encoded = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, encoded)
	if encoded == "" {
		return nil, domain.ErrImageEmpty
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// パディングなしのbase64も受け付ける
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrImageDecode, err)
		}
	}
	return data, nil
}

// Decode は画像バイト列をデコードし、長辺がmaxSideを超える場合は縮小してJPEGで再エンコードします。
func (c *Codec) Decode(data []byte) (entity.Image, error) {
	if len(data) == 0 {
		return entity.Image{}, domain.ErrImageEmpty
	}

	// 圧縮率の高い画像でメモリを使い切らないよう、ヘッダだけで画素数を確認する
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return entity.Image{}, fmt.Errorf("%w: %w", domain.ErrImageDecode, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(c.maxPixels) {
		return entity.Image{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", domain.ErrImageDecode, cfg.Width, cfg.Height, c.maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return entity.Image{}, fmt.Errorf("%w: %w", domain.ErrImageDecode, err)
	}

	b := img.Bounds()
	if b.Dx() > c.maxSide || b.Dy() > c.maxSide {
		img = resize.Thumbnail(uint(c.maxSide), uint(c.maxSide), img, resize.Lanczos3)
	} else if format == "jpeg" {
		// 縮小不要なJPEGはそのまま渡す
		return entity.Image{Data: data, MIMEType: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return entity.Image{}, fmt.Errorf("%w: re-encode jpeg: %w", domain.ErrImageDecode, err)
	}
	nb := img.Bounds()
	return entity.Image{
		Data:     buf.Bytes(),
		MIMEType: "image/jpeg",
		Width:    nb.Dx(),
		Height:   nb.Dy(),
	}, nil
}
