package employee

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// RenderCard writes a one-page PDF listing the employee's details and both
// contact collections. The core fonts are cp1252 encoded, so text is
// translated from UTF-8 first; scripts outside cp1252 cannot be shown.
func RenderCard(w io.Writer, agg Aggregate) error {
	return renderCard(w, agg, true)
}

func renderCard(w io.Writer, agg Aggregate, compress bool) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Emergency contacts: "+agg.Name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Emergency Contact Card")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Employee: %s", agg.Name)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Job title: %s", agg.JobTitle)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Phone: %s", valueOrDash(agg.PhoneNumber))))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Email: %s", valueOrDash(agg.Email))))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Address: %s", joinAddress(agg.Employee))))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Primary emergency contacts")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	if len(agg.EmergencyContacts) == 0 {
		pdf.Cell(0, 7, "None on file")
		pdf.Ln(7)
	}
	for _, c := range agg.EmergencyContacts {
		pdf.Cell(0, 7, tr(contactLine(c.Name, c.Relationship, c.Phone)))
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Secondary emergency contacts")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	if len(agg.SecondaryEmergencyContacts) == 0 {
		pdf.Cell(0, 7, "None on file")
		pdf.Ln(7)
	}
	for _, c := range agg.SecondaryEmergencyContacts {
		pdf.Cell(0, 7, tr(contactLine(c.Name, c.Relationship, c.Phone)))
		pdf.Ln(7)
	}

	return pdf.Output(w)
}

func contactLine(name string, relationship, phone *string) string {
	return fmt.Sprintf("%s (%s): %s", name, valueOrDash(relationship), valueOrDash(phone))
}

func joinAddress(emp Employee) string {
	out := valueOrDash(emp.Address)
	if emp.City != nil && *emp.City != "" {
		out += ", " + *emp.City
	}
	if emp.State != nil && *emp.State != "" {
		out += ", " + *emp.State
	}
	return out
}

func valueOrDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
