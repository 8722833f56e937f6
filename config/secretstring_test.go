package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	yaml "gopkg.in/yaml.v3"
)

func TestSecretString_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input SecretString
		want  string
	}{
		{"empty", "", "null"},
		{"api key", "AIzaSy-real-api-key", `"` + SecretRedacted + `"`},
		{"single char", "x", `"` + SecretRedacted + `"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSecretString_MarshalYAML(t *testing.T) {
	tests := []struct {
		name  string
		input SecretString
		want  any
	}{
		{"empty", "", nil},
		{"api key", "AIzaSy-real-api-key", SecretRedacted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.MarshalYAML()
			if err != nil {
				t.Fatalf("MarshalYAML() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MarshalYAML() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSecretString_String(t *testing.T) {
	if got := fmt.Sprintf("%s", SecretString("AIzaSy-real-api-key")); got != SecretRedacted {
		t.Errorf("formatted value = %q, want %q", got, SecretRedacted)
	}
	if got := SecretString("").String(); got != "" {
		t.Errorf("String() of empty secret = %q, want empty", got)
	}
}

func TestSecretString_RoundTrip(t *testing.T) {
	// the value itself stays usable through a string conversion
	key := SecretString("AIzaSy-real-api-key")
	if string(key) != "AIzaSy-real-api-key" {
		t.Errorf("string(key) = %q, lost the value", string(key))
	}

	data, err := json.Marshal(key)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "AIzaSy") {
		t.Errorf("secret leaked into JSON: %s", data)
	}
}

func TestDump_RedactsAPIKey(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Fonts: FontsConfig{
			RootDir:    "fonts",
			PublicBase: "/assets/fonts",
			CachePath:  "fonts-cache.db",
		},
		Providers: ProvidersConfig{
			Remote: []RemoteProviderConfig{
				{
					Name:    "google",
					BaseURL: "https://fonts.googleapis.com/css2",
					APIKey:  "AIzaSy-real-api-key",
				},
			},
		},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if strings.Contains(string(data), "AIzaSy") {
		t.Errorf("Dump() leaked the API key:\n%s", data)
	}
	if !strings.Contains(string(data), SecretRedacted) {
		t.Errorf("Dump() missing redaction placeholder:\n%s", data)
	}
}

func TestSecretString_YAMLStruct(t *testing.T) {
	in := struct {
		Name   string       `yaml:"name"`
		APIKey SecretString `yaml:"api_key"`
		Token  SecretString `yaml:"token"`
	}{
		Name:   "google",
		APIKey: "AIzaSy-real-api-key",
	}

	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	want := "name: google\napi_key: <secret>\ntoken: null\n"
	if string(data) != want {
		t.Errorf("yaml.Marshal() = %q, want %q", data, want)
	}
}
