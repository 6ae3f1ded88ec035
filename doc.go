// Package main provides the entry point for the Media Converter service.
//
// Media Converter is a self-hosted service for converting audio and video
// files into named target formats. Source files are uploaded, probed with
// ffprobe for technical metadata, gated against each format's bitrate
// floor and converted asynchronously with ffmpeg. Every conversion is
// tracked as a stream record moving through preparation, in_progress and
// a terminal successful or failure state.
//
// # Application Lifecycle
//
// The application follows a structured initialization sequence:
//
//  1. Configuration Loading: Reads environment variables and validates directories
//  2. Database Initialization: Opens the SQLite library database
//  3. Component Initialization:
//     - File Stores: Media sources, finished stream outputs
//     - Prober and Encoder: ffprobe/ffmpeg wrappers
//     - Conversion Queue: Worker pool sized to available CPUs
//     - Metrics Collector: Gathers Prometheus metrics (if enabled)
//  4. HTTP Server Setup: Configures routes, middleware, and starts server
//  5. Graceful Shutdown: Handles SIGINT/SIGTERM, drains the queue cleanly
//
// # HTTP Servers
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - Asset upload, listing, replacement and deletion
//     - Format and format set management
//     - Conversion dispatch, cancellation and reconciliation
//     - Source, preview and output file serving with range support
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// # Environment Variables
//
// See the startup package documentation for the full list.
package main
