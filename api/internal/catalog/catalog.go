package catalog

import "context"

// Candidate — запись каталога, предложенная как возможная идентичность детекции.
// Неизменяемая; при резолве копируется в строку детекции по значению.
type Candidate struct {
	ID          string `json:"id"`
	GTIN        string `json:"gtin"`
	ProductName string `json:"productName"`
	BrandName   string `json:"brandName"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
}

// Matcher ищет кандидатов по label детекции. Порядок — ранжирование самого
// каталога, мы его не пересортировываем. crop (вырезка товара с фото)
// опционален: текстовые каталоги его игнорируют.
type Matcher interface {
	FindCandidates(ctx context.Context, label string, crop []byte) ([]Candidate, error)
}
