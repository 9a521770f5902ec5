// Package config loads the dashboard configuration.
//
// # Sources
//
// Values are layered, later sources overriding earlier ones:
//
//	1. Built-in defaults (Default)
//	2. A YAML file: $FINDASH_CONFIG_FILE, config.yaml or configs/config.yaml
//	3. Environment variables prefixed FINDASH_
//
// A .env file in the working directory is read by the binaries before Load
// runs, so its entries behave like environment variables.
//
// # Environment Variables
//
//	FINDASH_SERVER_PORT=8080
//	FINDASH_DATA_SOURCE=workbook
//	FINDASH_DATA_WORKBOOK_FILE=financial_data_us.xlsx
//	FINDASH_DATA_SHEETS_SPREADSHEET_ID=1AbC...
//	FINDASH_DASHBOARD_TREND_LOOKBACK=4
//	FINDASH_PATHS_BASE_DIR=/srv/findash
//
// # Paths
//
// Relative paths resolve against the executable directory unless
// FINDASH_PATHS_BASE_DIR is set. The workbook lives under the data
// directory.
package config
