// Package config provides configuration management for finextract.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// The YAML file is taken from FINX_CONFIG_FILE when set, otherwise from the
// first of config.yaml and configs/config.yaml that exists.
//
// # Environment Variables
//
// Variables follow the pattern FINX_<SECTION>_<FIELD>:
//
//	FINX_SERVER_PORT=8080
//	FINX_LOGGING_LEVEL=debug
//	FINX_EXTRACTION_WORKERS=8
//	FINX_EXTRACTION_CSV_ENCODING=gb18030
//	FINX_SECURITY_RATE_LIMIT_RPS=50
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests that need a configuration without touching the environment use
// config.Default().
package config
