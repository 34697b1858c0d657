package main

import "time"

const (
	serverName    = "mindset-mcp"
	serverVersion = "0.2.0"

	toolCoach    = "mindset_coach"
	toolClassify = "classify_state"

	stateResourcePrefix = "mindset://states/"

	transportStdio = "stdio"
	transportSSE   = "sse"
	transportHTTP  = "http"

	logFormatText = "text"
	logFormatJSON = "json"

	defaultAddr           = ":8080"
	defaultLogLevel       = "info"
	defaultSessionTTL     = time.Hour
	defaultSessionMaxSize = 10_000
	defaultMaxLength      = 0

	shutdownTimeout = 10 * time.Second
	maxBridgeBody   = 64 << 10 // 64 KiB
	maxImageBytes   = 4 << 20  // 4 MiB
)
