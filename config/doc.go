// Package config provides configuration loading for httpaccess.
//
// It uses Viper to load configuration from a YAML file, a .env file and the
// process environment, and exposes the result either as a typed struct
// (LoadConfig) or as a flat PropertyStore (LoadProperties).
//
// # Usage
//
//	props, err := config.LoadProperties("httpaccess")
//	host := props.GetProperty("httpAccess.proxyHost")
//
// Environment variables override file values: HTTPACCESS_PROXYHOST maps to
// httpAccess.proxyHost.
package config
