package notify

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"eventtix/models"
)

// RenderQRCode encodes a ticket credential as a 200x200 PNG.
func RenderQRCode(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, 200)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// RenderTicketPDF produces the printable one-page ticket document: event
// details on the left, scannable code on the right, number and order date
// below.
func RenderTicketPDF(ticket *models.TicketDetails) ([]byte, error) {
	qrPNG, err := RenderQRCode(ticket.QRCode)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(70, 30, "EVENT TICKET")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(20, 60, ticket.EventTitle)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 75, fmt.Sprintf("Date: %s", ticket.EventDate.Format("Jan 2, 2006 15:04")))
	pdf.Text(20, 85, fmt.Sprintf("Location: %s", ticket.EventLocation))
	pdf.Text(20, 95, fmt.Sprintf("Ticket Type: %s", ticket.TicketTypeName))
	pdf.Text(20, 105, fmt.Sprintf("Price: $%.2f", ticket.Price))

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, 125, fmt.Sprintf("Ticket #: %s", ticket.TicketNumber))
	pdf.Text(20, 135, fmt.Sprintf("Order Date: %s", ticket.OrderDate.Format("Jan 2, 2006")))

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr-"+ticket.TicketNumber, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr-"+ticket.TicketNumber, 140, 60, 50, 50, false, opts, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(147, 120, "Scan for validation")
	pdf.Text(62, 250, "Present this ticket at the venue for entry")
	pdf.Text(72, 260, "This ticket is non-transferable")

	pdf.Rect(10, 10, 190, 270, "D")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}
