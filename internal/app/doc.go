// Package app is the composition root for axemon.
//
// Run loads configuration, applies command-line overrides, opens the log
// file, and builds one axeos.Client that serves both data paths:
//
//	config.Load ─> applyOverrides ─> Validate
//	logging.New (lumberjack file, zerolog)
//	axeos.NewClient
//	  ├─> telemetry.NewSampler   GET /api/system/info every PollInterval
//	  └─> logview.NewViewer      websocket /api/ws, opened on demand,
//	                             or logtail.File with --console-file
//	prefs.Load ─> ui.Run (blocks)
//
// Configuration and client errors are fatal and returned. Device errors at
// runtime are not: the UI shows them and offers a reconnect.
package app
