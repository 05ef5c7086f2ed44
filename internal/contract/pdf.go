// Package contract renders the rental agreement for a booking as a PDF.
package contract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/oyvindfi/bjorkvang/internal/data/entity"
)

const (
	venueName    = "Bjørkvang"
	venueAddress = "Bjørkvang forsamlingshus, Vallset"
)

// RenderAgreement produces the rental agreement PDF for a booking. Signature
// lines show each recorded signer; unsigned roles render as open lines.
func RenderAgreement(b *entity.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(fmt.Sprintf("Leieavtale %s", b.Date)), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr("Leieavtale"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(venueAddress), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}
	row := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(value), "", "L", false)
	}

	section("Leietaker")
	row("Navn", b.RequesterName)
	row("E-post", b.RequesterEmail)
	row("Telefon", b.Phone)
	pdf.Ln(3)

	section("Leieforhold")
	row("Dato", b.Date)
	row("Tidspunkt", fmt.Sprintf("kl %s (%d timer)", b.Time, b.Duration))
	row("Arrangement", b.EventType)
	row("Lokaler", strings.Join(b.Spaces, ", "))
	row("Tjenester", strings.Join(b.Services, ", "))
	if b.Attendees > 0 {
		row("Antall deltakere", fmt.Sprintf("%d", b.Attendees))
	}
	if b.PaymentAmount > 0 {
		row("Leiesum", fmt.Sprintf("%d kr", b.PaymentAmount/100))
	}
	pdf.Ln(3)

	section("Vilkår")
	terms := []string{
		"1. Leietaker er ansvarlig for lokalet i leieperioden og plikter å levere det tilbake i samme stand.",
		"2. Rydding og enkel rengjøring skal være utført før lokalet forlates.",
		"3. Skader på bygning eller inventar erstattes av leietaker.",
		"4. Røyking er ikke tillatt innendørs.",
		fmt.Sprintf("5. Leiesummen betales i sin helhet før arrangementet. Avbestilling meldes til styret i %s.", venueName),
	}
	for _, term := range terms {
		pdf.MultiCell(0, 5.5, tr(term), "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(4)

	section("Signaturer")
	signatureLine(pdf, tr, "Leietaker", b.Contract.Signature(entity.RoleRequester))
	pdf.Ln(4)
	signatureLine(pdf, tr, "Utleier", b.Contract.Signature(entity.RoleLandlord))

	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Referanse: %s", b.ID)), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render agreement: %w", err)
	}
	return buf.Bytes(), nil
}

func signatureLine(pdf *gofpdf.Fpdf, tr func(string) string, label string, sig *entity.Signature) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, tr(label), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if sig == nil {
		pdf.Ln(8)
		pdf.CellFormat(80, 6, "_________________________________", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 5, tr("Ikke signert"), "", 1, "L", false, 0, "")
		return
	}
	pdf.CellFormat(0, 6, tr(sig.SignerName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Signert elektronisk %s", sig.SignedAt.Format("02.01.2006 15:04"))), "", 1, "L", false, 0, "")
}
