// Package monitoring provides Prometheus metrics for the orchestrator.
//
// Tracked families: inbound HTTP requests, outbound annotation API calls
// (by operation and outcome), poll cycles, bulk action invocations, the
// active session mode, recorded operation errors, and websocket fan-out.
//
// Usage:
//
//	metrics := monitoring.NewMetrics(nil)
//	router.Use(monitoring.Middleware(metrics))
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
package monitoring
