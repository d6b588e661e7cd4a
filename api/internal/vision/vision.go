package vision

import (
	"context"
	"log"
	"math"
	"strings"
)

// BoundingBox — нормализованные координаты рамки.
// Модель отдаёт box как [top, left, bottom, right]; маппинг фиксированный:
// y0=box[0], x0=box[1], y1=box[2], x1=box[3].
type BoundingBox struct {
	Y0 float64 `json:"y0"`
	X0 float64 `json:"x0"`
	Y1 float64 `json:"y1"`
	X1 float64 `json:"x1"`
}

// Detection — один найденный на фото товар.
type Detection struct {
	Label string      `json:"label"`
	Box   BoundingBox `json:"boundingBox"`
}

// Engine — адаптер vision-модели.
type Engine interface {
	Name() string
	GetModel() string
	Detect(ctx context.Context, image []byte, mime string) ([]Detection, error)
}

// RawItem — сырой элемент ответа модели до валидации.
type RawItem struct {
	Label string    `json:"label"`
	Box   []float64 `json:"box"`
}

// NormalizeRaw валидирует сырой список и переводит его в Detection.
// Битые элементы (не 4 компоненты, не-числа, пустой label) выбрасываются,
// а не валят весь батч.
func NormalizeRaw(items []RawItem) []Detection {
	out := make([]Detection, 0, len(items))
	for i, it := range items {
		label := strings.TrimSpace(it.Label)
		if label == "" || len(it.Box) != 4 || !finite(it.Box) {
			log.Printf("vision: dropping malformed item %d (label=%q, box=%v)", i, it.Label, it.Box)
			continue
		}
		out = append(out, Detection{
			Label: label,
			Box: BoundingBox{
				Y0: it.Box[0],
				X0: it.Box[1],
				Y1: it.Box[2],
				X1: it.Box[3],
			},
		})
	}
	return out
}

func finite(box []float64) bool {
	for _, v := range box {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
