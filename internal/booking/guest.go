package booking

import (
    "strings"

    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/validation"
)

var validate = validation.New()

// guestRules mirrors the checkout form constraints.
type guestRules struct {
    FirstName string `validate:"required,min=2,max=100"`
    LastName  string `validate:"required,min=2,max=100"`
    Email     string `validate:"required,email"`
    Phone     string `validate:"required,min=10,max=30"`
    Document  string `validate:"required,min=5,max=50"`
}

var guestFields = map[string]string{
    "FirstName": "first_name",
    "LastName":  "last_name",
    "Email":     "email",
    "Phone":     "phone",
    "Document":  "document",
}

// NormalizeGuest trims every field and lower-cases the email.
func NormalizeGuest(g model.GuestData) model.GuestData {
    return model.GuestData{
        FirstName: strings.TrimSpace(g.FirstName),
        LastName:  strings.TrimSpace(g.LastName),
        Email:     strings.ToLower(strings.TrimSpace(g.Email)),
        Phone:     strings.TrimSpace(g.Phone),
        Document:  strings.TrimSpace(g.Document),
    }
}

// ValidateGuest returns a *ValidationError for the first invalid field.
func ValidateGuest(g model.GuestData) error {
    err := validate.Struct(guestRules{
        FirstName: g.FirstName,
        LastName:  g.LastName,
        Email:     g.Email,
        Phone:     g.Phone,
        Document:  g.Document,
    })
    return validation.FromValidator(err, guestFields)
}

// ConfirmationNumber derives the short human-facing code of a reservation.
func ConfirmationNumber(id string) string {
    if len(id) > 8 {
        id = id[:8]
    }
    return strings.ToUpper(id)
}
