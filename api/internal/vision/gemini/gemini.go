package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shelf-scan/api/internal/pipeline"
	"shelf-scan/api/internal/util"
	"shelf-scan/api/internal/vision"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

const systemPrompt = `Ты — модуль DETECT системы распознавания товаров на полках магазина.
На фото — магазинная полка или отдельный товар. Найди КАЖДЫЙ отдельный экземпляр товара.
Для каждого верни:
- "label": короткое название товара (бренд + тип, как на упаковке, если читается);
- "box": рамка [top, left, bottom, right] в пикселях исходного изображения, ровно 4 числа.
Верни СТРОГО JSON-массив вида:
[{"label": string, "box": [number, number, number, number]}, ...]
Без комментариев и текста вне JSON. Если товаров нет — верни [].`

// Detect отправляет фото в Gemini и возвращает нормализованный список детекций.
func (e *Engine) Detect(ctx context.Context, image []byte, mime string) ([]vision.Detection, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", pipeline.ErrInvalidInput)
	}
	if !util.IsAcceptedImageMIME(mime) {
		return nil, fmt.Errorf("%w: unsupported MIME %q (need image/jpeg|png|webp)", pipeline.ErrInvalidInput, mime)
	}
	if e.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", pipeline.ErrDetectionUnavailable)
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrDetectionUnavailable, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	// Возвращаем строго JSON
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	parts := []genai.Part{
		genai.Text("Ответ строго JSON-массивом детекций. Без комментариев."),
		&genai.Blob{MIMEType: mime, Data: image},
	}

	// Ретраи на случай транзиентных сбоев
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		txt := util.StripCodeFences(firstText(resp))
		if txt == "" {
			return nil, fmt.Errorf("%w: empty model response", pipeline.ErrDetectionUnavailable)
		}
		raw, err := parseRawItems(txt)
		if err != nil {
			return nil, fmt.Errorf("%w: bad model JSON: %v", pipeline.ErrDetectionUnavailable, err)
		}
		return vision.NormalizeRaw(raw), nil
	}
	return nil, fmt.Errorf("%w: %v", pipeline.ErrDetectionUnavailable, lastErr)
}

// parseRawItems принимает голый массив; на случай, если модель завернула его
// в объект — пробуем поле "detections".
func parseRawItems(txt string) ([]vision.RawItem, error) {
	var items []vision.RawItem
	if err := json.Unmarshal([]byte(txt), &items); err == nil {
		return items, nil
	}
	var wrapped struct {
		Detections []vision.RawItem `json:"detections"`
	}
	if err := json.Unmarshal([]byte(txt), &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Detections == nil {
		return nil, fmt.Errorf("no detections array in response")
	}
	return wrapped.Detections, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				if s := strings.TrimSpace(string(t)); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
