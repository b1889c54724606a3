package errors

import (
	"strings"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"flowchart", "graph TD\n  A-->B", false},
		{"unicode", "graph TD\n  A[Città]", false},
		{"null byte", "graph TD\x00", true},
		{"invalid utf8", "graph TD\xff", true},
		{"too large", strings.Repeat("a", MaxDocumentSize+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want INVALID_INPUT", GetCode(err))
			}
		})
	}
}

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"A", false},
		{"node_1", false},
		{"LINE-ITEM", false},
		{"Città", false},
		{"", true},
		{"-A", true},
		{"A-", true},
		{"A--B", true},
		{"A B", true},
		{"A[x]", true},
		{strings.Repeat("a", 300), true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Start", false},
		{"with [brackets] and \"quotes\"", false},
		{"", false},
		{"two\nlines", true},
		{"bell\a", true},
	}
	for _, tt := range tests {
		if err := ValidateLabel(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type request struct {
		Text   string `validate:"required"`
		Format string `validate:"omitempty,oneof=svg png"`
		Size   int    `validate:"gte=0,lte=72"`
	}

	tests := []struct {
		name    string
		req     request
		wantMsg string
	}{
		{"valid", request{Text: "graph TD", Format: "svg"}, ""},
		{"required", request{}, "request.Text: field is required"},
		{"oneof", request{Text: "x", Format: "pdf"}, "request.Format: must be one of [svg png]"},
		{"max", request{Text: "x", Size: 100}, "request.Size: must not exceed 72"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(ErrCodeInvalidConfig, tt.req)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("ValidateStruct() error = %v, want nil", err)
				}
				return
			}
			if !Is(err, ErrCodeInvalidConfig) {
				t.Fatalf("ValidateStruct() code = %v, want INVALID_CONFIG", GetCode(err))
			}
			if got := UserMessage(err); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}
