// Package validation collects configuration validation errors.
//
// Two styles are supported: struct tag validation through
// go-playground/validator, and a programmatic collector that parses raw
// configuration strings and records every failure before reporting.
//
// # Struct Tag Validation
//
//	type Pool struct {
//	    MaxTotal int `validate:"gte=0"`
//	}
//	err := validation.ValidateStruct(pool)
//
// # Programmatic Validation
//
//	v := validation.New()
//	port := v.Int("httpAccess.proxyPort", raw)
//	err := v.Validate()
package validation
