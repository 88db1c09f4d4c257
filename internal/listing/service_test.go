package listing

import (
	"context"
	"testing"

	"github.com/motormarket/motormarket/internal/common/apperr"
)

func TestCreateValidation(t *testing.T) {
	svc := NewService(nil)

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing seller", CreateInput{Title: "t", Make: "m", Model: "m", Year: 2020}},
		{"missing title", CreateInput{SellerID: "u", Make: "m", Model: "m", Year: 2020}},
		{"year too old", CreateInput{SellerID: "u", Title: "t", Make: "m", Model: "m", Year: 1899}},
		{"year in future", CreateInput{SellerID: "u", Title: "t", Make: "m", Model: "m", Year: 2100}},
		{"negative price", CreateInput{SellerID: "u", Title: "t", Make: "m", Model: "m", Year: 2020, PriceCents: -1}},
		{"negative mileage", CreateInput{SellerID: "u", Title: "t", Make: "m", Model: "m", Year: 2020, MileageKM: -5}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), tc.in); !apperr.Is(err, apperr.CodeInvalidArgument) {
			t.Fatalf("%s: want INVALID_ARGUMENT, got %v", tc.name, err)
		}
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Reject(context.Background(), "l-1", "  "); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
}
