package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- DB query operations ---
	for _, op := range []string{
		"create_asset", "update_asset", "get_asset", "get_asset_by_slug",
		"list_assets", "delete_asset",
		"create_format", "get_format", "get_format_by_name", "list_formats",
		"delete_format", "create_format_set", "get_format_set", "list_format_sets",
		"get_or_create_stream", "get_stream", "streams_for_asset",
		"update_stream", "set_stream_job_handle", "delete_stream",
		"delete_streams_for_asset", "get_stats",
	} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	// --- Probe and preview outcomes ---
	for _, status := range []string{"success", "error"} {
		ProbesTotal.WithLabelValues(status)
		PreviewsTotal.WithLabelValues(status)
	}

	// --- Encoder runs per kind ---
	for _, kind := range []string{"audio", "video"} {
		EncodesTotal.WithLabelValues(kind, "success")
		EncodesTotal.WithLabelValues(kind, "error")
		EncodeDuration.WithLabelValues(kind)
	}

	// --- Job lifecycle outcomes ---
	for _, status := range []string{"success", "failure", "revoked"} {
		JobsTotal.WithLabelValues(status)
	}

	// --- Library gauges ---
	for _, kind := range []string{"audio", "video"} {
		AssetsTotal.WithLabelValues(kind)
	}
	for _, status := range []string{"preparation", "in_progress", "successful", "failure"} {
		StreamsTotal.WithLabelValues(status)
	}

	// --- DB storage files ---
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}
}
