package metrics

// InitializeMetrics pre-populates all expected label combinations so
// that every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Scheduler outcomes ---
	for _, status := range []string{"ready", "failed"} {
		SchedulerItemsProcessed.WithLabelValues(status)
	}

	// --- Transcoder variants (default quality ladder) ---
	for _, q := range []string{"1080p", "720p", "480p"} {
		for _, status := range []string{"success", "failure"} {
			TranscodeVariantsTotal.WithLabelValues(q, status)
		}
		TranscodeVariantDuration.WithLabelValues(q)
	}

	// --- Delivery ---
	for _, class := range []string{"constrained", "standard"} {
		for _, status := range []string{"200", "206", "416"} {
			RangeRequestsTotal.WithLabelValues(class, status)
		}
	}
	for _, kind := range []string{"stream", "original"} {
		DeliveryBytesTotal.WithLabelValues(kind)
	}

	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "create_item", "get_item",
		"list_items", "claim_next_pending", "update_result", "requeue",
		"reprocess", "delete_item", "count_pending"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
