package registro

import (
	"context"

	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// Ledger es la porción del libro de facturas que consume el flujo: abrir la
// factura de tarifa al validar y releer su estado al confirmar el pago.
// Lo implementa billing.LedgerUseCase.
type Ledger interface {
	Open(ctx context.Context, actor entity.Actor, in dto.OpenInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoiceStatus(ctx context.Context, id string) (string, error)
}

// CertificateGenerator produce el artefacto del certificado de registro.
// El contenido es responsabilidad del colaborador; aquí solo importa la
// obligación de generarlo antes de pasar a firma.
type CertificateGenerator interface {
	Generate(ctx context.Context, sol *entity.Solicitud, company *entity.Company) ([]byte, error)
}
