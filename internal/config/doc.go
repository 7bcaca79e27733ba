// Package config provides centralized configuration management for metricqa.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//	1. Default() values
//	2. A YAML file (explicit path, or config.yaml / configs/config.yaml)
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern MQA_<SECTION>_<FIELD>:
//
//	MQA_VALIDATION_ASSET_COLUMN=asset
//	MQA_VALIDATION_EXCLUDED_COLUMNS=asset,time,ReferenceRate
//	MQA_PATHS_CATALOG_FILE=data/static/metrics.txt
//	MQA_LOGGING_LEVEL=debug
//
// Range rules for the value-range check can only be declared in YAML:
//
//	validation:
//	  ranges:
//	    - column: CapMrktCurUSD
//	      min: 0
//	      max: 1e13
//
// # Validation
//
// Struct tags are checked with go-playground/validator at load time; an
// invalid configuration is a fatal input error.
package config
