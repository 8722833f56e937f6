package font

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	dataURIPattern      = regexp.MustCompile(`^data:.+;base64`)
	obliqueAnglePattern = regexp.MustCompile(`^oblique\s+-?\d+(\.\d+)?%$`)
	percentagePattern   = regexp.MustCompile(`^(\d+%|\.\d+%|\d+\.\d+%)$`)
	unicodeRangePattern = regexp.MustCompile(`^[Uu]\+[0-9A-Fa-f]{1,6}(-[0-9A-Fa-f]{1,6})?$`)
)

var styleKeywords = map[string]bool{
	"normal": true, "italic": true, "oblique": true,
	"inherit": true, "initial": true, "revert": true, "unset": true,
}

var weightKeywords = map[string]bool{
	"normal": true, "bold": true, "bolder": true, "lighter": true, "inherit": true,
}

var displayKeywords = map[string]bool{
	"auto": true, "block": true, "fallback": true, "swap": true,
}

var stretchKeywords = map[string]bool{
	"ultra-condensed": true, "extra-condensed": true, "condensed": true,
	"semi-condensed": true, "normal": true, "semi-expanded": true,
	"expanded": true, "extra-expanded": true, "ultra-expanded": true,
}

var variantKeywords = map[string]bool{
	"normal": true, "none": true,
	"small-caps": true, "all-small-caps": true, "petite-caps": true,
	"all-petite-caps": true, "unicase": true, "titling-caps": true,
	"lining-nums": true, "oldstyle-nums": true, "proportional-nums": true,
	"tabular-nums": true, "diagonal-fractions": true, "stacked-fractions": true,
	"ordinal": true, "slashed-zero": true,
	"common-ligatures": true, "no-common-ligatures": true,
	"discretionary-ligatures": true, "no-discretionary-ligatures": true,
	"historical-ligatures": true, "no-historical-ligatures": true,
	"contextual": true, "no-contextual": true, "historical-forms": true,
}

// CheckFunc validates one property of a descriptor, returning a descriptive
// error on failure.
type CheckFunc func(d Descriptor) error

type namedCheck struct {
	name  string
	check CheckFunc
}

// Validator enforces CSS font-property grammar on descriptors. Checks run in
// declaration order and short-circuit on first failure; each is an
// independent named predicate so callers can override individual rules
// without touching the orchestration.
type Validator struct {
	log    *zap.Logger
	checks []namedCheck
}

// NewValidator creates a validator with the default rule set.
func NewValidator(log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	v := &Validator{log: log.Named("font-validator")}
	v.checks = []namedCheck{
		{"provider", checkProvider},
		{"font-family", checkFamily},
		{"src", checkSrc},
		{"font-display", checkDisplay},
		{"font-style", checkStyle},
		{"font-weight", checkWeight},
		{"ascent-override", checkOverride(PropAscentOverride)},
		{"descent-override", checkOverride(PropDescentOverride)},
		{"line-gap-override", checkOverride(PropLineGapOverride)},
		{"font-stretch", checkStretch},
		{"font-variant", checkVariant},
		{"unicode-range", checkUnicodeRange},
	}
	return v
}

// Override replaces the named check, keeping its position in the run order.
// Unknown names are ignored.
func (v *Validator) Override(name string, fn CheckFunc) {
	for i := range v.checks {
		if v.checks[i].name == name {
			v.checks[i].check = fn
			return
		}
	}
}

// Validate runs all checks in order, short-circuiting on first failure. A
// failure is reported as a non-fatal diagnostic and makes Validate return
// false; the input descriptor is never mutated.
func (v *Validator) Validate(d Descriptor) bool {
	for _, c := range v.checks {
		if err := c.check(d); err != nil {
			v.log.Warn("Invalid font descriptor",
				zap.String("check", c.name),
				zap.String("family", d.Family()),
				zap.Error(err))
			return false
		}
	}
	return true
}

func checkProvider(d Descriptor) error {
	p, ok := d[PropProvider]
	if !ok {
		return fmt.Errorf("font provider must be set")
	}
	if s, ok := p.(string); !ok || s == "" {
		return fmt.Errorf("font provider must be a non-empty string")
	}
	return nil
}

func checkFamily(d Descriptor) error {
	f, ok := d[PropFamily]
	if !ok {
		return fmt.Errorf("font font-family must be set")
	}
	if s, ok := f.(string); !ok || s == "" {
		return fmt.Errorf("font font-family must be a non-empty string")
	}
	return nil
}

// validSrcEntry accepts base64 data URIs, absolute URLs, protocol-relative
// URLs and file:./ relative references.
func validSrcEntry(src string) bool {
	if dataURIPattern.MatchString(src) {
		return true
	}
	if strings.HasPrefix(src, "//") {
		return true
	}
	if strings.HasPrefix(src, "file:./") {
		return true
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

func checkSrc(d Descriptor) error {
	if _, ok := d[PropSrc]; !ok {
		return nil
	}
	// cast to a sequence; non-string members come back dropped, so check the
	// raw value shape first
	switch d[PropSrc].(type) {
	case string, []string, []any, nil:
	default:
		return fmt.Errorf("font src must be a string or an array of strings")
	}
	for _, src := range d.Src() {
		if !validSrcEntry(src) {
			return fmt.Errorf("font src '%s' is not a valid URL, data URI or file reference", src)
		}
	}
	return nil
}

func checkDisplay(d Descriptor) error {
	v, ok := d[PropDisplay]
	if !ok {
		return nil
	}
	s, isString := v.(string)
	if !isString || !displayKeywords[s] {
		return fmt.Errorf("font font-display '%v' must be one of auto, block, fallback or swap", v)
	}
	return nil
}

func checkStyle(d Descriptor) error {
	v, ok := d[PropStyle]
	if !ok {
		return nil
	}
	s, isString := v.(string)
	if !isString || s == "" {
		return fmt.Errorf("font font-style must be a non-empty string")
	}
	if !styleKeywords[s] && !obliqueAnglePattern.MatchString(s) {
		return fmt.Errorf("font font-style '%s' is not a valid style value", s)
	}
	return nil
}

// validWeightToken accepts a single integer weight value.
func validWeightToken(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func checkWeight(d Descriptor) error {
	v, ok := d[PropWeight]
	if !ok {
		return nil
	}
	s, isString := v.(string)
	if !isString || s == "" {
		return fmt.Errorf("font font-weight must be a non-empty string")
	}
	if weightKeywords[s] {
		return nil
	}
	tokens := strings.Fields(s)
	if len(tokens) == 1 && validWeightToken(tokens[0]) {
		return nil
	}
	if len(tokens) == 2 && validWeightToken(tokens[0]) && validWeightToken(tokens[1]) {
		return nil
	}
	return fmt.Errorf("font font-weight '%s' is not a valid weight value or range", s)
}

func checkOverride(prop string) CheckFunc {
	return func(d Descriptor) error {
		v, ok := d[prop]
		if !ok {
			return nil
		}
		s, isString := v.(string)
		if !isString || (s != "normal" && !percentagePattern.MatchString(s)) {
			return fmt.Errorf("font %s '%v' must be 'normal' or a percentage", prop, v)
		}
		return nil
	}
}

func checkStretch(d Descriptor) error {
	v, ok := d[PropStretch]
	if !ok {
		return nil
	}
	s, isString := v.(string)
	if !isString || s == "" {
		return fmt.Errorf("font font-stretch must be a non-empty string")
	}
	tokens := strings.Fields(s)
	if len(tokens) == 0 || len(tokens) > 2 {
		return fmt.Errorf("font font-stretch '%s' must have one or two values", s)
	}
	for _, t := range tokens {
		if !stretchKeywords[t] && !percentagePattern.MatchString(t) {
			return fmt.Errorf("font font-stretch '%s' is not a valid stretch value", s)
		}
	}
	return nil
}

func checkVariant(d Descriptor) error {
	v, ok := d[PropVariant]
	if !ok {
		return nil
	}
	s, isString := v.(string)
	if !isString || s == "" {
		return fmt.Errorf("font font-variant must be a non-empty string")
	}
	for _, t := range strings.Fields(s) {
		if !variantKeywords[t] {
			return fmt.Errorf("font font-variant '%s' is not a recognized variant keyword", t)
		}
	}
	return nil
}

func checkUnicodeRange(d Descriptor) error {
	v, ok := d[PropUnicodeRange]
	if !ok {
		return nil
	}
	s, isString := v.(string)
	if !isString || s == "" {
		return fmt.Errorf("font unicode-range must be a non-empty string")
	}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if !unicodeRangePattern.MatchString(t) {
			return fmt.Errorf("font unicode-range '%s' is not a valid codepoint or range", t)
		}
	}
	return nil
}
