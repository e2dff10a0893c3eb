package ticket

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

// PDFRenderer prints a booking as a single A5 ticket page.
type PDFRenderer struct {
	currency string
}

func NewPDFRenderer(currency string) *PDFRenderer {
	return &PDFRenderer{currency: strings.ToUpper(currency)}
}

func (r *PDFRenderer) Render(t domain.Ticket) ([]byte, error) {
	if t.Booking == nil {
		return nil, fmt.Errorf("render ticket: booking is required")
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Ticket "+t.Booking.Reference, true)
	pdf.SetCreator("cinex-booking", false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(t.Booking.BookingTime)
	pdf.SetModificationDate(t.Booking.BookingTime)
	pdf.SetMargins(12, 14, 12)
	pdf.AddPage()

	pdf.SetFillColor(33, 37, 41)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 14, tr(t.MovieTitle()), "", 1, "C", true, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Ln(4)
	pdf.CellFormat(0, 6, tr(t.TheaterName()), "", 1, "C", false, 0, "")
	if t.Theater != nil && t.Theater.Address != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(t.Theater.Address), "", "C", false)
	}
	pdf.Ln(4)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 7, label, "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(value), "B", 1, "L", false, 0, "")
	}

	row("Booking", t.Booking.Reference)
	row("Status", t.Booking.Status.String())
	if t.Showtime != nil {
		row("Date", t.Showtime.Date.Format("Mon, 02 Jan 2006"))
		row("Showtime", t.Showtime.Time)
	}
	row("Seats", seatList(t.Booking.Seats))

	for _, order := range t.Booking.FoodOrders {
		name := "Food"
		if order.FoodItem != nil {
			name = order.FoodItem.Name
		}
		row("Food", name+" x "+strconv.Itoa(order.Quantity))
	}

	row("Total", r.money(t.Booking.TotalAmount.StringFixed(2)))
	if t.Booking.Payment != nil {
		row("Payment", string(t.Booking.Payment.Method)+" "+t.Booking.Payment.TransactionID)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 4, "Booked on "+t.Booking.BookingTime.UTC().Format(time.RFC1123)+
		". Please arrive 15 minutes before the show. This ticket admits the listed seats only.", "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", t.Booking.Reference, err)
	}

	return buf.Bytes(), nil
}

func (r *PDFRenderer) money(amount string) string {
	if r.currency == "" {
		return amount
	}

	return r.currency + " " + amount
}

func seatList(seats []domain.BookedSeat) string {
	if len(seats) == 0 {
		return "-"
	}

	labels := make([]string, len(seats))
	for i, seat := range seats {
		labels[i] = seat.SeatNumber + " (" + string(seat.Category) + ")"
	}

	return strings.Join(labels, ", ")
}

// Filename is the attachment and download name of a booking's ticket.
func Filename(reference string) string {
	return "ticket-" + reference + ".pdf"
}
