// Package imageproc binds the image-engine: decoding, the rotate/color
// pipeline, preview downscaling and encoding of the results.
package imageproc

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Params - нормализованные параметры обработки: множители 0..2, градусы 0..360
type Params struct {
	Rotation   float64
	Brightness float64
	Contrast   float64
	Saturation float64
}

// Apply - сначала поворот (он меняет геометрию и подложку), потом
// яркость+насыщенность, и только при contrast != 1 - контраст:
// лишний линейный проход на единичном множителе теряет точность впустую.
func Apply(src image.Image, p Params) *image.NRGBA {
	img := rotate(src, p.Rotation)
	img = imaging.AdjustBrightness(img, toPercent(p.Brightness))
	img = imaging.AdjustSaturation(img, toPercent(p.Saturation))
	if p.Contrast != 1 {
		img = imaging.AdjustContrast(img, toPercent(p.Contrast))
	}
	return img
}

// FitPreview - вписывает картинку в квадрат bound x bound без увеличения
func FitPreview(img image.Image, bound int) *image.NRGBA {
	return imaging.Fit(img, bound, bound, imaging.Lanczos)
}

// rotate - прямые углы крутим без ресемплинга, остальное через Rotate.
// Положительный угол - по часовой, как крутит слайдер на клиенте.
func rotate(img image.Image, deg float64) *image.NRGBA {
	switch math.Mod(deg, 360) {
	case 0:
		return imaging.Clone(img)
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return imaging.Rotate(img, -deg, color.NRGBA{})
	}
}

// множитель 0..2 -> проценты -100..100 движка
func toPercent(factor float64) float64 {
	return (factor - 1) * 100
}
