package validation

import "strings"

// FieldErrors maps a form field (its JSON name) to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

// Error makes FieldErrors usable as the ValidationError of a submit.
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

type QuoteInput struct {
	Name         string `json:"name" validate:"trimrequired,trimmin=2"`
	Email        string `json:"email" validate:"trimrequired,emailshape"`
	Phone        string `json:"phone" validate:"trimrequired,phone"`
	ElevatorType string `json:"elevatorType" validate:"required"`
	Floors       string `json:"floors" validate:"trimrequired,floors"`
	Message      string `json:"message" validate:"trimmin=10"`
}

type EnquiryInput struct {
	Name    string `json:"name" validate:"trimrequired,trimmin=2"`
	Email   string `json:"email" validate:"trimrequired,emailshape"`
	Phone   string `json:"phone" validate:"phone"`
	Message string `json:"message" validate:"trimrequired,trimmin=10"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"trimrequired,emailshape"`
	Password string `json:"password" validate:"required,min=6"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

var messages = map[string]string{
	"name.trimrequired":        "Name is required",
	"name.trimmin":             "Name must be at least 2 characters",
	"email.trimrequired":       "Email is required",
	"email.emailshape":         "Please enter a valid email address",
	"phone.trimrequired":       "Phone number is required",
	"phone.phone":              "Please enter a valid phone number",
	"elevatorType.required":    "Please select an elevator type",
	"floors.trimrequired":      "Number of floors is required",
	"floors.floors":            "Please enter a valid number of floors",
	"message.trimrequired":     "Message is required",
	"message.trimmin":          "Message must be at least 10 characters",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 6 characters",
	"currentPassword.required": "Current password is required",
	"newPassword.required":     "New password is required",
	"newPassword.min":          "Password must be at least 6 characters",
	"confirmPassword.required": "Please confirm your new password",
	"confirmPassword.eqfield":  "Passwords do not match",
}

func message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return "Please enter a valid " + field
}
