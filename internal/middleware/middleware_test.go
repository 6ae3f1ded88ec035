package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if rw == nil {
		t.Fatal("Expected responseWriter to be created")
	}

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code 200, got %d", rw.statusCode)
	}

	if rw.bytesWritten != 0 {
		t.Errorf("Expected bytesWritten to be 0, got %d", rw.bytesWritten)
	}

	if rw.wroteHeader {
		t.Error("Expected wroteHeader to be false initially")
	}
}

func TestResponseWriterWriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	rw.WriteHeader(http.StatusNotFound)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("Expected status code 404, got %d", rw.statusCode)
	}

	if !rw.wroteHeader {
		t.Error("Expected wroteHeader to be true after WriteHeader")
	}

	// Write header again - should be ignored
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusNotFound {
		t.Error("Status code should not change after first WriteHeader")
	}
}

func TestResponseWriterWrite(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	data := []byte("test data")
	n, err := rw.Write(data)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if n != len(data) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(data), n)
	}

	if rw.bytesWritten != int64(len(data)) {
		t.Errorf("Expected bytesWritten to be %d, got %d", len(data), rw.bytesWritten)
	}

	if !rw.wroteHeader {
		t.Error("Expected wroteHeader to be true after Write")
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain field", "GET", "GET"},
		{"Newline replaced", "a\nb", "a b"},
		{"Carriage return replaced", "a\rb", "a b"},
		{"Null byte stripped", "a\x00b", "ab"},
		{"ANSI escape stripped", "a\x1b[31mb", "a[31mb"},
		{"Tab preserved", "a\tb", "a\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.expected {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaultLoggingConfig(t *testing.T) {
	config := DefaultLoggingConfig()

	if len(config.SkipPaths) != 0 {
		t.Errorf("Expected empty SkipPaths, got %d items", len(config.SkipPaths))
	}

	if !config.LogHealthChecks {
		t.Error("Expected LogHealthChecks to be true by default")
	}
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		config LoggingConfig
	}{
		{
			name:   "Logs regular requests",
			path:   "/api/assets",
			config: DefaultLoggingConfig(),
		},
		{
			name:   "Skips configured path prefixes",
			path:   "/internal/debug",
			config: LoggingConfig{SkipPaths: []string{"/internal"}},
		},
		{
			name:   "Logs health checks when enabled",
			path:   "/health",
			config: LoggingConfig{LogHealthChecks: true},
		},
		{
			name:   "Skips health checks when disabled",
			path:   "/health",
			config: LoggingConfig{LogHealthChecks: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})

			middleware := Logger(tt.config)
			wrappedHandler := middleware(handler)

			req := httptest.NewRequest("GET", tt.path, http.NoBody)
			w := httptest.NewRecorder()

			wrappedHandler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "X-Forwarded-For single",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.1",
		},
		{
			name:     "X-Forwarded-For chain uses first",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.1",
		},
		{
			name:     "X-Real-IP fallback",
			headers:  map[string]string{"X-Real-IP": "10.0.0.3"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.3",
		},
		{
			name:     "RemoteAddr fallback strips port",
			headers:  nil,
			remote:   "192.168.1.1:1234",
			expected: "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := getClientIP(req); got != tt.expected {
				t.Errorf("getClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatLogLine(t *testing.T) {
	logger := NewW3CLogger(DefaultLoggingConfig(), "MediaConverter/1.0")

	req := httptest.NewRequest("GET", "/api/assets/42/preview?width=320", http.NoBody)
	req.RemoteAddr = "10.0.0.9:55012"
	req.Header.Set("User-Agent", "curl/8.5.0")

	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusOK)
	rw.Write([]byte("png bytes"))

	line := logger.formatLogLine(req, rw, 25*time.Millisecond)

	fields := strings.Fields(line)
	if len(fields) != 12 {
		t.Fatalf("Expected 12 fields, got %d: %q", len(fields), line)
	}
	if fields[2] != "10.0.0.9" {
		t.Errorf("c-ip = %q, want 10.0.0.9", fields[2])
	}
	if fields[3] != "GET" || fields[4] != "/api/assets/42/preview" {
		t.Errorf("method/stem = %q %q", fields[3], fields[4])
	}
	if fields[5] != "width=320" {
		t.Errorf("cs-uri-query = %q, want width=320", fields[5])
	}
	if fields[6] != "200" {
		t.Errorf("sc-status = %q, want 200", fields[6])
	}
	if fields[7] != "9" {
		t.Errorf("sc-bytes = %q, want 9", fields[7])
	}
	if fields[8] != "25" {
		t.Errorf("time-taken = %q, want 25", fields[8])
	}
}

func TestFormatLogLineSanitizesInjection(t *testing.T) {
	logger := NewW3CLogger(DefaultLoggingConfig(), "MediaConverter/1.0")

	req := httptest.NewRequest("GET", "/api/assets", http.NoBody)
	req.Header.Set("User-Agent", "evil\n2026-01-01 00:00:00 forged line")

	rw := newResponseWriter(httptest.NewRecorder())
	line := logger.formatLogLine(req, rw, time.Millisecond)

	if strings.Contains(line, "\n") {
		t.Errorf("log line contains a newline: %q", line)
	}
}

func TestDefaultCompressionConfig(t *testing.T) {
	config := DefaultCompressionConfig()

	if config.MinSize != 1024 {
		t.Errorf("Expected MinSize to be 1024, got %d", config.MinSize)
	}

	if config.Level != gzip.DefaultCompression {
		t.Errorf("Expected Level to be DefaultCompression (%d), got %d", gzip.DefaultCompression, config.Level)
	}

	found := false
	for _, ct := range config.CompressibleTypes {
		if ct == "application/json" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected application/json in CompressibleTypes")
	}
}

func TestCompressionMiddleware(t *testing.T) {
	tests := []struct {
		name              string
		responseBody      string
		contentType       string
		acceptEncoding    string
		expectCompression bool
		minSize           int
	}{
		{
			name:              "Compresses large JSON",
			responseBody:      strings.Repeat(`{"kind":"video"}`, 200),
			contentType:       "application/json",
			acceptEncoding:    "gzip",
			expectCompression: true,
			minSize:           1024,
		},
		{
			name:              "Doesn't compress small responses",
			responseBody:      `{"ok":true}`,
			contentType:       "application/json",
			acceptEncoding:    "gzip",
			expectCompression: false,
			minSize:           1024,
		},
		{
			name:              "Doesn't compress media payloads",
			responseBody:      strings.Repeat("data", 500),
			contentType:       "video/mp4",
			acceptEncoding:    "gzip",
			expectCompression: false,
			minSize:           1024,
		},
		{
			name:              "Respects client without gzip support",
			responseBody:      strings.Repeat(`{"kind":"audio"}`, 200),
			contentType:       "application/json",
			acceptEncoding:    "",
			expectCompression: false,
			minSize:           1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(tt.responseBody))
			})

			config := CompressionConfig{
				MinSize:           tt.minSize,
				Level:             gzip.DefaultCompression,
				CompressibleTypes: DefaultCompressionConfig().CompressibleTypes,
			}

			middleware := Compression(config)
			wrappedHandler := middleware(handler)

			req := httptest.NewRequest("GET", "/test", http.NoBody)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()

			wrappedHandler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}

			isCompressed := w.Header().Get("Content-Encoding") == "gzip"
			if isCompressed != tt.expectCompression {
				t.Errorf("Expected compression=%v, got compression=%v", tt.expectCompression, isCompressed)
			}

			if tt.expectCompression {
				gr, err := gzip.NewReader(w.Body)
				if err != nil {
					t.Fatalf("Failed to create gzip reader: %v", err)
				}
				defer gr.Close()

				decompressed, err := io.ReadAll(gr)
				if err != nil {
					t.Fatalf("Failed to decompress: %v", err)
				}

				if string(decompressed) != tt.responseBody {
					t.Error("Decompressed content doesn't match original")
				}
			}
		})
	}
}

func TestGzipResponseWriterBuffering(t *testing.T) {
	w := httptest.NewRecorder()
	config := DefaultCompressionConfig()
	grw := newGzipResponseWriter(w, config)

	// Write small amount of data (less than MinSize)
	smallData := []byte("small")
	n, err := grw.Write(smallData)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if n != len(smallData) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(smallData), n)
	}

	// Data should be buffered
	if len(grw.buffer) != len(smallData) {
		t.Errorf("Expected buffer length %d, got %d", len(smallData), len(grw.buffer))
	}

	if !bytes.Equal(grw.buffer, smallData) {
		t.Error("Buffer content doesn't match written data")
	}
}

func TestCompressionWithMultipleWrites(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		// Multiple small writes that together exceed MinSize
		for i := 0; i < 50; i++ {
			w.Write([]byte(strings.Repeat(`{"id":1}`, 10)))
		}
	})

	config := DefaultCompressionConfig()
	middleware := Compression(config)
	wrappedHandler := middleware(handler)

	req := httptest.NewRequest("GET", "/test", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	// Should be compressed since total exceeds MinSize
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Error("Expected response to be compressed")
	}
}

func TestNewMetricsResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	mrw := newMetricsResponseWriter(w)

	if mrw == nil {
		t.Fatal("Expected metricsResponseWriter to be created")
	}

	if mrw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code 200, got %d", mrw.statusCode)
	}

	mrw.WriteHeader(http.StatusCreated)
	if mrw.statusCode != http.StatusCreated {
		t.Errorf("Expected status code 201, got %d", mrw.statusCode)
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Expected underlying writer to have status 201, got %d", w.Code)
	}
}

func TestDefaultMetricsConfig(t *testing.T) {
	config := DefaultMetricsConfig()

	expectedPaths := []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"}
	for _, path := range expectedPaths {
		found := false
		for _, skip := range config.SkipPaths {
			if skip == path {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected %q to be in default SkipPaths", path)
		}
	}
}

func TestMetricsMiddlewareSkipPaths(t *testing.T) {
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	config := MetricsConfig{
		SkipPaths: []string{"/metrics", "/health"},
	}
	middleware := Metrics(config)
	wrappedHandler := middleware(handler)

	paths := []string{"/metrics", "/health", "/api/assets", "/"}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			handlerCalled = false
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()

			wrappedHandler.ServeHTTP(w, req)

			if !handlerCalled {
				t.Error("Expected handler to be called")
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "Asset detail",
			path:     "/api/assets/42",
			expected: "/api/assets/{id}",
		},
		{
			name:     "Asset convert",
			path:     "/api/assets/42/convert",
			expected: "/api/assets/{id}/convert",
		},
		{
			name:     "Stream file",
			path:     "/api/streams/7/file",
			expected: "/api/streams/{id}/file",
		},
		{
			name:     "Format detail",
			path:     "/api/formats/3",
			expected: "/api/formats/{id}",
		},
		{
			name:     "Collection path unchanged",
			path:     "/api/assets",
			expected: "/api/assets",
		},
		{
			name:     "Root path",
			path:     "/",
			expected: "/",
		},
		{
			name:     "Health check path",
			path:     "/health",
			expected: "/health",
		},
		{
			name:     "Deep path gets truncated",
			path:     "/a/b/c/d/e/f/g/h",
			expected: "/a/b/c/d/e/{path}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizePath(tt.path)
			if result != tt.expected {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestNormalizePathCardinality(t *testing.T) {
	// Many different IDs must map to one series
	assetPaths := []string{
		"/api/assets/1",
		"/api/assets/22",
		"/api/assets/333",
	}

	for _, path := range assetPaths {
		normalized := normalizePath(path)
		if normalized != "/api/assets/{id}" {
			t.Errorf("Expected all asset paths to normalize to /api/assets/{id}, got %q for %q", normalized, path)
		}
	}
}

func TestMetricsMiddlewareStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"200 OK", http.StatusOK},
		{"201 Created", http.StatusCreated},
		{"400 Bad Request", http.StatusBadRequest},
		{"404 Not Found", http.StatusNotFound},
		{"500 Internal Server Error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			config := MetricsConfig{SkipPaths: []string{}}
			middleware := Metrics(config)
			wrappedHandler := middleware(handler)

			req := httptest.NewRequest(http.MethodGet, "/api/test", http.NoBody)
			w := httptest.NewRecorder()

			wrappedHandler.ServeHTTP(w, req)

			if w.Code != tt.statusCode {
				t.Errorf("Expected status code %d, got %d", tt.statusCode, w.Code)
			}
		})
	}
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	config := DefaultLoggingConfig()
	middleware := Logger(config)
	wrappedHandler := middleware(handler)

	req := httptest.NewRequest("GET", "/api/test", http.NoBody)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		wrappedHandler.ServeHTTP(w, req)
	}
}

func BenchmarkNormalizePath(b *testing.B) {
	paths := []string{
		"/api/assets/42/convert",
		"/api/streams/7/file",
		"/api/formats",
		"/",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, path := range paths {
			_ = normalizePath(path)
		}
	}
}
