package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mirrors the shape of the stock adjustment payload without importing transport.
type adjustmentPayload struct {
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Notes    string `json:"notes" validate:"max=500"`
}

type productPayload struct {
	SKU  string `json:"sku" validate:"required,max=50"`
	Name string `json:"name" validate:"required,max=200"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeSKU bool, includeName bool) bool {
			reqMap := make(map[string]interface{})

			if includeSKU {
				reqMap["sku"] = "WIDGET-001"
			}
			if includeName {
				reqMap["name"] = "Widget"
			}

			allFieldsPresent := includeSKU && includeName

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload productPayload
			err := DecodeAndValidate(req, &payload)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_QuantityMustBePositive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantity outside the positive range is rejected", prop.ForAll(
		func(quantity int) bool {
			reqMap := map[string]interface{}{
				"quantity": quantity,
				"notes":    "restock",
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload adjustmentPayload
			err := DecodeAndValidate(req, &payload)

			if quantity > 0 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-100, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that validation errors are properly formatted
func TestValidationErrorsAreFormatted(t *testing.T) {
	reqBody, _ := json.Marshal(map[string]interface{}{"quantity": -5})
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var payload adjustmentPayload
	err := DecodeAndValidate(req, &payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	validationErrors := FormatValidationErrors(err)
	if len(validationErrors) == 0 {
		t.Fatal("expected formatted validation errors")
	}
	for _, ve := range validationErrors {
		if ve.Field == "" || ve.Message == "" {
			t.Errorf("validation error missing field or message: %+v", ve)
		}
	}
}

func TestMalformedJSONIsRejected(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	var payload adjustmentPayload
	if err := DecodeAndValidate(req, &payload); err == nil {
		t.Fatal("expected decode error")
	}
}
