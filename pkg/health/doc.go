// Package health provides liveness and readiness HTTP handlers.
//
// [LivenessHandler] always answers 200. [ReadinessHandler] runs a set of named
// [Checks] concurrently with a shared timeout and answers 503 when any fails.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"storage": files.CheckBucket,
//	}, health.WithTimeout(3*time.Second), health.WithLogger(log)))
//
// Responses are plain text ("OK" or "Service Unavailable") unless the client
// sends Accept: application/json or ?format=json:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "storage": {"status": "unhealthy", "error": "storage: bucket not found: resumes", "latency_ms": 12}
//	  }
//	}
package health
