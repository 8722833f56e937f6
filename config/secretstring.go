package config

// SecretRedacted replaces secret values in any serialized or printed output.
const SecretRedacted = "<secret>"

// SecretString holds sensitive configuration values (provider API keys). It
// serializes and prints as a fixed placeholder so dumped configurations and
// logs never carry the real value; code that needs the key converts with
// string().
type SecretString string

// String implements fmt.Stringer, hiding the value from formatted output.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretRedacted
}

// MarshalJSON emits the placeholder instead of the value, null when unset.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte(`"` + SecretRedacted + `"`), nil
}

// MarshalYAML emits the placeholder instead of the value, null when unset.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretRedacted, nil
}
