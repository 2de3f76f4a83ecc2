package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# CodeLens configuration
version: "1.0"

# Analysis service the source code is sent to
service:
  endpoint: http://localhost:8080/analyze
  timeout: 30s
  max_response_bytes: 16777216   # 16MB
  user_agent: codelens

# Reports written by "codelens analyze" and "codelens watch"
output:
  default_format: text   # text, json, markdown, csv
  color_mode: auto       # auto, always, never
  verbose: false
  show_tokens: false     # include the token table in text and markdown reports
  compact_mode: false

# Terminal UI
ui:
  mode: auto             # auto, tui, plain
  theme: default         # default, high-contrast, minimal
  preload_sample: true   # start "codelens tui" and "codelens serve" with a sample program
  table_height: 12

# Browser surface started by "codelens serve"
server:
  addr: 127.0.0.1:3000
  read_timeout: 15s
  write_timeout: 60s
  idle_timeout: 60s
  shutdown_timeout: 10s

# "codelens watch"
watch:
  debounce: 300ms

# Every setting can be overridden with a CODELENS_<SECTION>_<KEY> environment
# variable, e.g. CODELENS_SERVICE_ENDPOINT or CODELENS_UI_THEME.
`
}

// MinimalSampleConfig returns a configuration file with only essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
service:
  endpoint: http://localhost:8080/analyze
  timeout: 30s
output:
  default_format: text
ui:
  theme: default
`
}
