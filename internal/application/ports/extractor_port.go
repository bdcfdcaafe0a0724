package ports

import (
	"context"

	"github.com/jhoicas/Huella-api/internal/domain/entity"
)

// BillExtractor define el puerto de salida para la extracción de datos de consumo
// desde una factura de servicios (imagen o PDF). Cualquier adaptador (Gemini,
// Anthropic, mock) debe implementar esta interfaz; la aplicación solo conoce
// este contrato, no la implementación concreta (DIP).
type BillExtractor interface {
	// ExtractUtilityBill analiza el documento (base64 + mime type) y devuelve los
	// datos de consumo estructurados. El contexto debe llevar un timeout para
	// evitar bloqueos en llamadas externas.
	ExtractUtilityBill(ctx context.Context, base64Data, mimeType string) (*entity.BillExtraction, error)
}
