package types

import (
	"errors"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input   string
		want    Quantity
		wantErr bool
	}{
		{"SWE", QuantitySWE, false},
		{"swe", QuantitySWE, false},
		{"HS", QuantityHS, false},
		{"hs", QuantityHS, false},
		{"depth", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseQuantity(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseQuantity(%q) should fail", tt.input)
				}
				var appErr *AppError
				if !errors.As(err, &appErr) {
					t.Fatalf("ParseQuantity error should be an *AppError, got %T", err)
				}
				if appErr.Code != ErrCodeValidationInvalidQuantity {
					t.Errorf("error code = %q, want %q", appErr.Code, ErrCodeValidationInvalidQuantity)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuantity(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseQuantity(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQuantityAxisLabel(t *testing.T) {
	if got := QuantitySWE.AxisLabel(); got != "SWE (mm)" {
		t.Errorf("SWE axis label = %q, want %q", got, "SWE (mm)")
	}
	if got := QuantityHS.AxisLabel(); got != "HS (m)" {
		t.Errorf("HS axis label = %q, want %q", got, "HS (m)")
	}
}

func TestParseBasinKind(t *testing.T) {
	if kind, err := ParseBasinKind("region"); err != nil || kind != BasinKindRegion {
		t.Errorf("ParseBasinKind(region) = %q, %v", kind, err)
	}
	if kind, err := ParseBasinKind("SUBBASIN"); err != nil || kind != BasinKindSubbasin {
		t.Errorf("ParseBasinKind(SUBBASIN) = %q, %v", kind, err)
	}

	_, err := ParseBasinKind("watershed")
	if err == nil {
		t.Fatal("ParseBasinKind(watershed) should fail")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != ErrCodeValidationInvalidBasinKind {
		t.Errorf("error = %v, want code %q", err, ErrCodeValidationInvalidBasinKind)
	}
}

func TestKindForCode(t *testing.T) {
	tests := []struct {
		code string
		want BasinKind
	}{
		{"KGZ01", BasinKindSubbasin},
		{"TJK15", BasinKindSubbasin},
		{"AMU_DARYA", BasinKindRegion},
		{"CHU_TALAS", BasinKindRegion},
		{"15149", BasinKindSubbasin},
	}

	for _, tt := range tests {
		if got := KindForCode(tt.code); got != tt.want {
			t.Errorf("KindForCode(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestClassifyThreshold(t *testing.T) {
	climate := Band{Q5: 10, Q50: 20, Q95: 30}

	tests := []struct {
		name    string
		current float64
		want    ThresholdLevel
	}{
		{"above Q95", 31, ThresholdHigh},
		{"below Q5", 9, ThresholdLow},
		{"between", 20, ThresholdNormal},
		{"exactly Q95 is normal", 30, ThresholdNormal},
		{"exactly Q5 is normal", 10, ThresholdNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyThreshold(tt.current, climate); got != tt.want {
				t.Errorf("ClassifyThreshold(%v) = %q, want %q", tt.current, got, tt.want)
			}
		})
	}
}

func TestParseImageFormat(t *testing.T) {
	if f, err := ParseImageFormat(""); err != nil || f != ImageFormatPNG {
		t.Errorf("empty format should default to PNG: got %q, %v", f, err)
	}
	if f, err := ParseImageFormat("svg"); err != nil || f != ImageFormatSVG {
		t.Errorf("ParseImageFormat(svg) = %q, %v", f, err)
	}
	if f, err := ParseImageFormat("PNG"); err != nil || f != ImageFormatPNG {
		t.Errorf("ParseImageFormat(PNG) = %q, %v", f, err)
	}

	_, err := ParseImageFormat("jpeg")
	if err == nil {
		t.Fatal("ParseImageFormat(jpeg) should fail")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != ErrCodeValidationInvalidFormat {
		t.Errorf("error = %v, want code %q", err, ErrCodeValidationInvalidFormat)
	}
}

func TestImageFormatContentType(t *testing.T) {
	if got := ImageFormatPNG.ContentType(); got != "image/png" {
		t.Errorf("PNG content type = %q", got)
	}
	if got := ImageFormatSVG.ContentType(); got != "image/svg+xml" {
		t.Errorf("SVG content type = %q", got)
	}
}
