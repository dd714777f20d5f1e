package utils

import (
	"fmt"
	"time"
)

// Param is one named request parameter that was actually supplied.
type Param struct {
	Name  string
	Value string
}

// ExtractParams picks the named parameters out of a raw parameter map, in
// the order given. Names missing from the map are left out, so optional
// filters that were not requested are never validated.
func ExtractParams(raw map[string]string, names ...string) []Param {
	params := make([]Param, 0, len(names))
	for _, name := range names {
		if value, ok := raw[name]; ok {
			params = append(params, Param{Name: name, Value: value})
		}
	}
	return params
}

// ValidateParams runs the registered validator for every supplied param and
// returns one "Invalid <name>: <value>" message per rejection, in input order.
// Params without a registered validator are accepted as is.
func ValidateParams(params []Param, validators map[string]Validator) (bool, []string) {
	var errs []string
	for _, p := range params {
		validate, ok := validators[p.Name]
		if !ok {
			continue
		}
		if !validate(p.Value) {
			errs = append(errs, fmt.Sprintf("Invalid %s: %s", p.Name, p.Value))
		}
	}
	return len(errs) == 0, errs
}

// ValidateTimeWindow rejects a window whose start lies after its end.
// Both bounds must already have passed ValidateTimestamp; an open bound is
// always accepted.
func ValidateTimeWindow(start, end string) error {
	if start == "" || end == "" {
		return nil
	}
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", ParamStartTime, err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", ParamEndTime, err)
	}
	if s.After(e) {
		return fmt.Errorf("%s must not be after %s", ParamStartTime, ParamEndTime)
	}
	return nil
}

// Lookup returns the value of a supplied param, or "" when absent.
func Lookup(params []Param, name string) string {
	for _, p := range params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// PathParams returns every named path parameter, bound or not. A template
// variable missing from the event is kept with an empty value so that its
// validator rejects it.
func PathParams(raw map[string]string, names ...string) []Param {
	params := make([]Param, 0, len(names))
	for _, name := range names {
		params = append(params, Param{Name: name, Value: raw[name]})
	}
	return params
}
