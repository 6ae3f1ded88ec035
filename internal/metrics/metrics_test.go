package metrics

import (
	"testing"
)

func TestHTTPMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestDatabaseMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"DBQueryTotal", DBQueryTotal},
		{"DBQueryDuration", DBQueryDuration},
		{"DBConnectionsOpen", DBConnectionsOpen},
		{"DBSizeBytes", DBSizeBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestPipelineMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"ProbesTotal", ProbesTotal},
		{"ProbeDuration", ProbeDuration},
		{"EncodesTotal", EncodesTotal},
		{"EncodeDuration", EncodeDuration},
		{"PreviewsTotal", PreviewsTotal},
		{"JobsTotal", JobsTotal},
		{"JobsInProgress", JobsInProgress},
		{"QueueDepth", QueueDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestMetricOperations(t *testing.T) {
	t.Run("HTTPRequestsTotal increment", func(_ *testing.T) {
		HTTPRequestsTotal.WithLabelValues("GET", "/test", "200").Add(0)
	})

	t.Run("DBQueryTotal increment", func(_ *testing.T) {
		DBQueryTotal.WithLabelValues("get_asset", "success").Add(0)
	})

	t.Run("DBQueryDuration observe", func(_ *testing.T) {
		DBQueryDuration.WithLabelValues("get_asset").Observe(0.001)
	})

	t.Run("EncodesTotal with labels", func(_ *testing.T) {
		EncodesTotal.WithLabelValues("audio", "success").Add(0)
		EncodesTotal.WithLabelValues("video", "error").Add(0)
	})

	t.Run("EncodeDuration observe", func(_ *testing.T) {
		EncodeDuration.WithLabelValues("video").Observe(42.5)
	})

	t.Run("ProbesTotal increment", func(_ *testing.T) {
		ProbesTotal.WithLabelValues("success").Add(0)
		ProbesTotal.WithLabelValues("error").Add(0)
	})

	t.Run("JobsTotal by outcome", func(_ *testing.T) {
		JobsTotal.WithLabelValues("success").Add(0)
		JobsTotal.WithLabelValues("failure").Add(0)
		JobsTotal.WithLabelValues("revoked").Add(0)
	})

	t.Run("QueueDepth set", func(_ *testing.T) {
		QueueDepth.Set(3)
		QueueDepth.Set(0)
	})

	t.Run("JobsInProgress toggle", func(_ *testing.T) {
		JobsInProgress.Inc()
		JobsInProgress.Dec()
	})
}

func TestLibraryMetricOperations(t *testing.T) {
	t.Run("AssetsTotal by kind", func(_ *testing.T) {
		AssetsTotal.WithLabelValues("audio").Set(100)
		AssetsTotal.WithLabelValues("video").Set(50)
	})

	t.Run("StreamsTotal by status", func(_ *testing.T) {
		StreamsTotal.WithLabelValues("preparation").Set(2)
		StreamsTotal.WithLabelValues("in_progress").Set(1)
		StreamsTotal.WithLabelValues("successful").Set(40)
		StreamsTotal.WithLabelValues("failure").Set(3)
	})

	t.Run("FormatsTotal", func(_ *testing.T) {
		FormatsTotal.Set(12)
	})
}

func TestAppInfoMetric(t *testing.T) {
	if AppInfo == nil {
		t.Fatal("AppInfo metric is nil")
	}

	t.Run("SetAppInfo function", func(_ *testing.T) {
		SetAppInfo("1.0.0", "abc123", "go1.25.0")
		SetAppInfo("2.0.0", "def456", "go1.25.1")
	})
}

func TestInitializeMetrics(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("InitializeMetrics() panicked: %v", r)
		}
	}()

	InitializeMetrics()
}

func TestInitializeMetricsIdempotent(t *testing.T) {
	// Calling InitializeMetrics multiple times should not panic or cause
	// duplicate registration errors (WithLabelValues on existing labels is safe).
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("InitializeMetrics() panicked on second call: %v", r)
		}
	}()

	InitializeMetrics()
	InitializeMetrics()
}

func TestMetricsConcurrentAccess(t *testing.T) {
	// Test that metrics can be updated concurrently without panic
	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func(id int) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Goroutine %d panicked: %v", id, r)
				}
				done <- true
			}()

			HTTPRequestsTotal.WithLabelValues("GET", "/test", "200").Inc()
			DBQueryTotal.WithLabelValues("get_asset", "success").Inc()
			EncodesTotal.WithLabelValues("audio", "success").Inc()
			JobsTotal.WithLabelValues("success").Inc()
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
