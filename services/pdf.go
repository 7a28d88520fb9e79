package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tripforge/schema"
)

// PDFData is everything the itinerary PDF renders.
type PDFData struct {
	TravelerName string
	Candidate    schema.ItineraryCandidate
	Budget       schema.BudgetResult
	Summary      string
	IsEstimated  bool // true when live provider pricing was unavailable
}

// GeneratePDFBytes renders an itinerary candidate to PDF and returns raw
// bytes (no filesystem needed).
func GeneratePDFBytes(data PDFData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	c := data.Candidate

	// ── Watermark ────────────────────────────────────────────
	pdf.SetTextColor(230, 230, 230)
	pdf.SetFont("Helvetica", "B", 55)
	pdf.TransformBegin()
	pdf.TransformRotate(42, 60, 200)
	pdf.Text(60, 200, "SAMPLE")
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37) // --navy-950
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "TripForge", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67) // gold
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Composed Travel Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Disclaimer ───────────────────────────────────────────
	pdf.SetFillColor(255, 248, 225)
	pdf.SetDrawColor(212, 168, 67)
	pdf.SetTextColor(130, 90, 20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 12, "FD")
	pdf.SetXY(23, y+2)
	disclaimer := "⚠ This is NOT a booking confirmation. Prices are estimates and subject to change. Please verify with providers before booking."
	if data.IsEstimated {
		disclaimer = "⚠ ESTIMATED PRICES — live provider data was unavailable. This is NOT a booking confirmation. Verify all prices before booking."
	}
	pdf.MultiCell(164, 4, disclaimer, "", "C", false)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Ln(6)

	// ── Section Helper ───────────────────────────────────────
	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, value, "", 1, "L", false, 0, "")
	}

	// ── Traveler Info ─────────────────────────────────────────
	sectionHeader("Traveler Information")
	name := data.TravelerName
	if name == "" {
		name = "Guest Traveler"
	}
	row("Name", name)
	row("Generated", time.Now().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Selected Flight ───────────────────────────────────────
	sectionHeader("Selected Flight")
	row("Airline", fmt.Sprintf("%s %s", c.Flight.Carrier, c.Flight.Number))
	row("Route", schema.RouteLabel(c.Flight.Origin, c.Flight.Destination))
	row("Departure", fmtPDFTime(c.Flight.Depart))
	row("Arrival", fmtPDFTime(c.Flight.Arrive))
	stops := "Direct"
	if c.Flight.Stops > 0 {
		stops = fmt.Sprintf("%d stop(s)", c.Flight.Stops)
	}
	if c.Flight.Redeye {
		stops += " · redeye"
	}
	row("Stops", stops)
	row("Price", fmt.Sprintf("$%.0f %s per person", c.Flight.PriceUSD, c.Flight.Currency))
	pdf.Ln(4)

	// ── Selected Hotel ────────────────────────────────────────
	sectionHeader("Selected Hotel")
	row("Hotel", c.Hotel.Name)
	if c.Hotel.City != "" {
		row("City", c.Hotel.City)
	}
	if c.Hotel.Stars != nil {
		row("Class", fmt.Sprintf("%.0f-star", *c.Hotel.Stars))
	}
	if c.Hotel.NearTransitMin != nil {
		row("Transit", fmt.Sprintf("%d min walk to transit", *c.Hotel.NearTransitMin))
	}
	row("Total stay", fmt.Sprintf("$%.0f", c.Hotel.PriceTotalUSD))
	pdf.Ln(4)

	// ── Activities ────────────────────────────────────────────
	if len(c.Activities) > 0 {
		sectionHeader("Activities")
		for _, a := range c.Activities {
			row(a.Name, fmt.Sprintf("%.1fh · $%.0f", a.DurationHours, a.PriceUSD))
		}
		pdf.Ln(4)
	}

	// ── Day-by-Day Plan ───────────────────────────────────────
	if len(c.Daily) > 0 {
		sectionHeader("Day-by-Day Plan")
		pdf.SetFont("Helvetica", "", 10)
		for _, day := range c.Daily {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(170, 6, day.Date.Format("02 Jan 2006 (Mon)"), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			for _, item := range day.Items {
				pdf.CellFormat(170, 5, "    · "+item, "", 1, "L", false, 0, "")
			}
		}
		pdf.Ln(4)
	}

	// ── Cost Summary ──────────────────────────────────────────
	sectionHeader("Cost Estimate")
	for _, key := range []string{"flights", "lodging", "daily", "contingency"} {
		if v, ok := c.TotalsUSD[key]; ok && v > 0 {
			row(titleCase(key), fmt.Sprintf("$%.0f", v))
		}
	}

	pdf.SetFillColor(212, 168, 67)
	pdf.SetTextColor(13, 24, 37)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(55, 9, "TOTAL ESTIMATE", "", 0, "L", true, 0, "")
	pdf.CellFormat(115, 9, fmt.Sprintf("$%.0f", c.TotalsUSD["tee"]), "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
	if data.Budget.Status != "" {
		row("Budget status", string(data.Budget.Status))
		row("Over/under", fmt.Sprintf("$%.0f", data.Budget.OverUnderUSD))
	}
	pdf.Ln(4)

	// ── AI Summary ────────────────────────────────────────────
	if data.Summary != "" {
		sectionHeader("Recommendations")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(170, 5, data.Summary, "", "L", false)
		pdf.Ln(4)
	}

	// ── Footer ────────────────────────────────────────────────
	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8,
		"Generated by TripForge Travel Planner · Not a booking confirmation · Prices subject to change",
		"", 0, "C", false, 0, "")

	// ── Write to buffer ───────────────────────────────────────
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func fmtPDFTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("02 Jan 15:04")
}

func titleCase(key string) string {
	switch key {
	case "flights":
		return "Flights"
	case "lodging":
		return "Lodging"
	case "daily":
		return "Daily spend"
	case "contingency":
		return "Contingency"
	}
	return key
}
