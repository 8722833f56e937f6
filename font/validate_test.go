package font_test

import (
	"testing"

	"go.uber.org/zap"

	"wfp/font"
)

// valid returns a minimal valid descriptor that tests mutate.
func valid() font.Descriptor {
	return font.Descriptor{
		"provider":    "local",
		"font-family": "Open Sans",
	}
}

func TestValidator_Provider(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	tests := []struct {
		name     string
		provider any
		remove   bool
		want     bool
	}{
		{name: "present", provider: "local", want: true},
		{name: "missing", remove: true, want: false},
		{name: "empty", provider: "", want: false},
		{name: "non-string", provider: 42, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			if tt.remove {
				delete(d, "provider")
			} else {
				d["provider"] = tt.provider
			}
			if got := v.Validate(d); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidator_Family(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	d := valid()
	delete(d, "font-family")
	if v.Validate(d) {
		t.Error("expected descriptor without family to fail validation")
	}

	d = valid()
	d["font-family"] = ""
	if v.Validate(d) {
		t.Error("expected descriptor with empty family to fail validation")
	}
}

func TestValidator_Style(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	tests := []struct {
		style string
		want  bool
	}{
		{"normal", true},
		{"italic", true},
		{"oblique", true},
		{"oblique 20%", true},
		{"oblique 12.5%", true},
		{"inherit", true},
		{"slanted", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			d := valid()
			d["font-style"] = tt.style
			if got := v.Validate(d); got != tt.want {
				t.Errorf("Validate(font-style=%q) = %v, want %v", tt.style, got, tt.want)
			}
		})
	}
}

func TestValidator_Weight(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	tests := []struct {
		name   string
		weight any
		want   bool
	}{
		{"number", "400", true},
		{"range", "200 900", true},
		{"keyword bold", "bold", true},
		{"keyword normal", "normal", true},
		{"keyword lighter", "lighter", true},
		{"empty", "", false},
		{"boolean", true, false},
		{"garbage", "heavy", false},
		{"three values", "100 200 300", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			d["font-weight"] = tt.weight
			if got := v.Validate(d); got != tt.want {
				t.Errorf("Validate(font-weight=%v) = %v, want %v", tt.weight, got, tt.want)
			}
		})
	}
}

func TestValidator_Display(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	for _, good := range []string{"auto", "block", "fallback", "swap"} {
		d := valid()
		d["font-display"] = good
		if !v.Validate(d) {
			t.Errorf("expected font-display=%q to validate", good)
		}
	}

	d := valid()
	d["font-display"] = "optional"
	if v.Validate(d) {
		t.Error("expected font-display=optional to fail validation")
	}
}

func TestValidator_Src(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	tests := []struct {
		name string
		src  any
		want bool
	}{
		{"absent is valid", nil, true},
		{"absolute url", "https://cdn.example.com/a.woff2", true},
		{"protocol relative", "//cdn.example.com/a.woff2", true},
		{"file relative", "file:./fonts/a.woff2", true},
		{"data uri", "data:font/woff2;base64,d09GMgABAAAA", true},
		{"list", []any{"https://cdn.example.com/a.woff2", "file:./b.ttf"}, true},
		{"relative path", "fonts/a.woff2", false},
		{"non-string member", []any{"https://cdn.example.com/a.woff2", 1}, true}, // non-strings are dropped by the cast
		{"number", 42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			if tt.src != nil {
				d["src"] = tt.src
			}
			if got := v.Validate(d); got != tt.want {
				t.Errorf("Validate(src=%v) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestValidator_Overrides(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	for _, prop := range []string{"ascent-override", "descent-override", "line-gap-override"} {
		for val, want := range map[string]bool{
			"normal": true,
			"90%":    true,
			".5%":    true,
			"105.5%": true,
			"90":     false,
			"abc":    false,
		} {
			d := valid()
			d[prop] = val
			if got := v.Validate(d); got != want {
				t.Errorf("Validate(%s=%q) = %v, want %v", prop, val, got, want)
			}
		}
	}
}

func TestValidator_Stretch(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	tests := []struct {
		stretch string
		want    bool
	}{
		{"condensed", true},
		{"75%", true},
		{"75% 125%", true},
		{"condensed expanded", true},
		{"narrow", false},
		{"75% 100% 125%", false},
	}

	for _, tt := range tests {
		d := valid()
		d["font-stretch"] = tt.stretch
		if got := v.Validate(d); got != tt.want {
			t.Errorf("Validate(font-stretch=%q) = %v, want %v", tt.stretch, got, tt.want)
		}
	}
}

func TestValidator_Variant(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	d := valid()
	d["font-variant"] = "small-caps tabular-nums"
	if !v.Validate(d) {
		t.Error("expected recognized variant keywords to validate")
	}

	d = valid()
	d["font-variant"] = "small-caps shiny"
	if v.Validate(d) {
		t.Error("expected unrecognized variant keyword to fail validation")
	}
}

func TestValidator_UnicodeRange(t *testing.T) {
	v := font.NewValidator(zap.NewNop())

	tests := []struct {
		in   string
		want bool
	}{
		{"U+0025", true},
		{"U+0025-00FF", true},
		{"U+0025-00FF, U+4??", false}, // wildcards are not part of the accepted grammar
		{"U+0025, U+1E00-1EFF", true},
		{"0025", false},
	}

	for _, tt := range tests {
		d := valid()
		d["unicode-range"] = tt.in
		if got := v.Validate(d); got != tt.want {
			t.Errorf("Validate(unicode-range=%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidator_Override(t *testing.T) {
	v := font.NewValidator(zap.NewNop())
	v.Override("font-style", func(d font.Descriptor) error { return nil })

	d := valid()
	d["font-style"] = "slanted"
	if !v.Validate(d) {
		t.Error("expected overridden style check to accept anything")
	}
}
