package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mirrors the admin create-user payload.
type createUserPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=administrator customer"`
}

func decodePayload(t *testing.T, body map[string]interface{}, into interface{}) error {
	t.Helper()

	reqBody, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}

	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	return DecodeAndValidate(req, into)
}

func TestProperty_MissingRequiredFieldsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("payloads missing required fields fail validation", prop.ForAll(
		func(includeEmail bool, includePassword bool, includeRole bool) bool {
			body := make(map[string]interface{})

			if includeEmail {
				body["email"] = "admin@shop.test"
			}
			if includePassword {
				body["password"] = "long-enough-password"
			}
			if includeRole {
				body["role"] = "administrator"
			}

			allPresent := includeEmail && includePassword && includeRole

			var payload createUserPayload
			err := decodePayload(t, body, &payload)

			if allPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_UnknownRolesAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("only the two known roles pass the oneof check", prop.ForAll(
		func(role string) bool {
			body := map[string]interface{}{
				"email":    "admin@shop.test",
				"password": "long-enough-password",
				"role":     role,
			}

			var payload createUserPayload
			err := decodePayload(t, body, &payload)

			if role == "administrator" || role == "customer" {
				return err == nil
			}
			return err != nil
		},
		gen.OneConstOf("administrator", "customer", "root", "guest", "ADMIN", "superuser"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ShortPasswordsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords under 8 characters fail validation", prop.ForAll(
		func(password string) bool {
			body := map[string]interface{}{
				"email":    "admin@shop.test",
				"password": password,
				"role":     "customer",
			}

			var payload createUserPayload
			err := decodePayload(t, body, &payload)

			if len(password) >= 8 {
				return err == nil
			}
			return err != nil
		},
		gen.RegexMatch(`[A-Za-z0-9]{1,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrorsCarriesFieldAndMessage(t *testing.T) {
	body := map[string]interface{}{
		"email":    "not-an-email",
		"password": "long-enough-password",
		"role":     "intruder",
	}

	var payload createUserPayload
	err := decodePayload(t, body, &payload)
	if err == nil {
		t.Fatal("Expected validation to fail")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) != 2 {
		t.Fatalf("Expected 2 validation errors, got %d", len(formatted))
	}

	for _, ve := range formatted {
		if ve.Field == "" || ve.Message == "" {
			t.Errorf("Validation error missing field or message: %+v", ve)
		}
	}

	// The oneof message names the allowed values.
	var roleMessage string
	for _, ve := range formatted {
		if ve.Field == "Role" {
			roleMessage = ve.Message
		}
	}

	if !strings.Contains(roleMessage, "administrator customer") {
		t.Errorf("Expected allowed roles in message, got %q", roleMessage)
	}
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	var payload createUserPayload
	if err := DecodeAndValidate(req, &payload); err == nil {
		t.Error("Expected malformed JSON to be rejected")
	}
}
