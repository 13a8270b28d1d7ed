package service

import (
	"github.com/UnendingLoop/ImageTuner/internal/imageproc"
	"github.com/UnendingLoop/ImageTuner/internal/model"
)

// normalizeParams - подставляет дефолты на место отсутствующих полей:
// множители 1 (без изменения), поворот 0. Диапазоны к этому моменту
// уже проверены биндингом на транспортном слое.
func normalizeParams(req *model.TransformRequest) imageproc.Params {
	p := imageproc.Params{
		Brightness: 1,
		Contrast:   1,
		Saturation: 1,
		Rotation:   0,
	}

	if req.Brightness != nil {
		p.Brightness = *req.Brightness
	}
	if req.Contrast != nil {
		p.Contrast = *req.Contrast
	}
	if req.Saturation != nil {
		p.Saturation = *req.Saturation
	}
	if req.Rotation != nil {
		p.Rotation = *req.Rotation
	}
	return p
}
