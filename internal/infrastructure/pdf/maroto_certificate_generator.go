// Package pdf implementa la generación del certificado de registro IRC.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Institución + título del certificado                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  N° de certificado + código de solicitud + fecha             │
//	│  EMPRESA: razón social, RNC, categoría, dirección            │
//	│  ASIENTO: libro y folio del registro                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + leyenda legal                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/onda-rd/backoffice-api/internal/application/registro"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ registro.CertificateGenerator = (*MarotoCertificateGenerator)(nil)

// MarotoCertificateGenerator implementa registro.CertificateGenerator usando Maroto v2.
type MarotoCertificateGenerator struct {
	institucion string
}

// NewMarotoCertificateGenerator construye el generador. institucion es el
// nombre que encabeza el certificado.
func NewMarotoCertificateGenerator(institucion string) *MarotoCertificateGenerator {
	if institucion == "" {
		institucion = "Oficina Nacional de Derecho de Autor"
	}
	return &MarotoCertificateGenerator{institucion: institucion}
}

// Generate genera el certificado y devuelve sus bytes.
func (g *MarotoCertificateGenerator) Generate(_ context.Context, sol *entity.Solicitud, company *entity.Company) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Certificado de Registro IRC", true).
		WithAuthor(g.institucion, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.institucion))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(certificateRow(sol))
	m.AddRows(companyRow(company))
	m.AddRows(asientoRow(sol))
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(sol))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar certificado: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: institución y título.
func headerRow(institucion string) core.Row {
	return row.New(20).Add(
		col.New(12).Add(
			text.New(institucion, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Align: align.Center, Top: 2,
			}),
			text.New("CERTIFICADO DE REGISTRO IRC", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 12,
			}),
		),
	)
}

// certificateRow: número de certificado, solicitud y fecha de emisión.
func certificateRow(sol *entity.Solicitud) core.Row {
	fecha := time.Now().Format("02/01/2006")
	if sol.CertifiedAt != nil {
		fecha = sol.CertifiedAt.Format("02/01/2006")
	}
	return row.New(14).Add(
		col.New(7).Add(
			text.New("Certificado N°: "+sol.Codigo, props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 2,
			}),
			text.New("Tipo: "+sol.Tipo, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Fecha de emisión: "+fecha, props.Text{
				Size: 9, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

// companyRow: datos de la empresa registrada.
func companyRow(company *entity.Company) core.Row {
	return row.New(24).Add(
		col.New(12).Add(
			text.New("EMPRESA REGISTRADA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(company.Name, props.Text{Style: fontstyle.Bold, Size: 11, Top: 6}),
			text.New("RNC: "+company.RNC+"   |   Categoría: "+company.CategoryCode, props.Text{
				Size: 9, Top: 13, Color: colorGray,
			}),
			text.New("Dirección: "+nonEmpty(company.Address, "—"), props.Text{
				Size: 9, Top: 19, Color: colorGray,
			}),
		),
	)
}

// asientoRow: libro y folio donde quedó asentado el registro.
func asientoRow(sol *entity.Solicitud) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ASIENTO REGISTRAL", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Libro: %s   |   Folio: %s", sol.BookNumber, sol.EntryNumber), props.Text{
				Size: 10, Top: 7,
			}),
		),
	)
}

// footerRow: QR de verificación y leyenda legal.
func footerRow(sol *entity.Solicitud) core.Row {
	return row.New(28).Add(
		col.New(3).Add(
			code.NewQr(sol.Codigo, props.Rect{Percent: 90, Center: true}),
		),
		col.New(9).Add(
			text.New("Este certificado acredita la inscripción de la empresa en el registro de importadores, reproductores y distribuidores de soportes de obras protegidas.", props.Text{
				Size: 8, Top: 4, Color: colorGray,
			}),
			text.New("Documento sujeto a firma autorizada. Verifique su vigencia con el código QR.", props.Text{
				Size: 8, Top: 16, Color: colorGray,
			}),
		),
	)
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
