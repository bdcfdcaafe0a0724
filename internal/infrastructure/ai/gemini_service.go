package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Huella-api/internal/application/ports"
	"github.com/jhoicas/Huella-api/internal/domain/entity"
)

// Verificar en tiempo de compilación que GeminiService implementa BillExtractor.
var _ ports.BillExtractor = (*GeminiService)(nil)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

	// geminiExtractionPrompt define la tarea de extracción. Con
	// responseMimeType=application/json + responseSchema Gemini devuelve JSON puro,
	// sin bloques de markdown que limpiar.
	geminiExtractionPrompt = `Extrae los datos de consumo energético de esta factura de servicios. Identifica:
1. Consumo total (kWh u otra unidad)
2. Periodo facturado (inicio/fin)
3. Nombre del proveedor
4. Huella de carbono estimada en kg CO2e (si es posible estimarla)
Devuelve únicamente el objeto JSON.`
)

// GeminiService adaptador que implementa BillExtractor llamando a la API REST de
// Google Gemini. Usa únicamente net/http; no requiere el SDK oficial.
type GeminiService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiService construye el adaptador. model suele ser "gemini-1.5-flash".
// Si apiKey está vacío las llamadas devuelven error descriptivo en lugar de panic.
func NewGeminiService(apiKey, model string) *GeminiService {
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 20 * time.Second, // timeout de red; el caller también pone WithTimeout
		},
	}
}

// ── Estructuras internas para la API de Gemini ────────────────────────────────

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // documento en base64
}

type genConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"` // "application/json" → JSON puro garantizado
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
	Temperature      float32         `json:"temperature"`
	MaxOutputTokens  int             `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// billSchema esquema de respuesta que se exige al modelo.
var billSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"provider": {"type": "STRING"},
		"usage": {"type": "NUMBER"},
		"unit": {"type": "STRING"},
		"period": {"type": "STRING"},
		"carbon_footprint_kg": {"type": "NUMBER"},
		"confidence_score": {"type": "NUMBER"}
	},
	"required": ["provider", "usage", "unit"]
}`)

// llmBillPayload es el JSON que esperamos recibir del modelo.
type llmBillPayload struct {
	Provider          string  `json:"provider"`
	Usage             float64 `json:"usage"`
	Unit              string  `json:"unit"`
	Period            string  `json:"period"`
	CarbonFootprintKg float64 `json:"carbon_footprint_kg"`
	ConfidenceScore   float64 `json:"confidence_score"`
}

func (p llmBillPayload) toEntity() *entity.BillExtraction {
	confidence := p.ConfidenceScore
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	return &entity.BillExtraction{
		Provider:          p.Provider,
		Usage:             decimal.NewFromFloat(p.Usage),
		Unit:              p.Unit,
		Period:            p.Period,
		CarbonFootprintKg: decimal.NewFromFloat(p.CarbonFootprintKg),
		ConfidenceScore:   confidence,
	}
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// ExtractUtilityBill envía la factura (base64 + mime type) a Gemini y devuelve
// los datos de consumo estructurados.
func (s *GeminiService) ExtractUtilityBill(ctx context.Context, base64Data, mimeType string) (*entity.BillExtraction, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("AI: GEMINI_API_KEY no configurado")
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{InlineData: &geminiInlineData{MimeType: mimeType, Data: base64Data}},
					{Text: geminiExtractionPrompt},
				},
			},
		},
		GenerationConfig: genConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   billSchema,
			Temperature:      0.1,
			MaxOutputTokens:  1024,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	url := fmt.Sprintf(geminiBaseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return nil, fmt.Errorf("AI: leer respuesta: %w", err)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(rawBody, &gemResp); err != nil {
		return nil, fmt.Errorf("AI: deserializar respuesta Gemini: %w", err)
	}
	if gemResp.Error != nil {
		return nil, fmt.Errorf("AI: Gemini error %d: %s", gemResp.Error.Code, gemResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI: Gemini HTTP %d: %s", resp.StatusCode, string(rawBody))
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("AI: Gemini devolvió respuesta vacía")
	}

	rawText := gemResp.Candidates[0].Content.Parts[0].Text

	var bill llmBillPayload
	if err := json.Unmarshal([]byte(rawText), &bill); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de extracción: %w (respuesta: %s)", err, rawText)
	}
	return bill.toEntity(), nil
}
