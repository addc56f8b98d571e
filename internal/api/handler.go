package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"PcapDigest/internal/core/model"
	"PcapDigest/internal/engine"
	"PcapDigest/internal/engine/report"
)

// uploadField is the multipart form field carrying the capture file.
const uploadField = "pcap"

// Handler holds the dependencies for the API handlers.
type Handler struct {
	decoder        model.Decoder
	sinks          []report.Sink
	maxUploadBytes int64
}

// NewHandler creates the API handler. sinks receive every successfully
// built report; sink failures are logged and never affect the response.
func NewHandler(decoder model.Decoder, maxUploadBytes int64, sinks ...report.Sink) *Handler {
	return &Handler{
		decoder:        decoder,
		sinks:          sinks,
		maxUploadBytes: maxUploadBytes,
	}
}

// NewRouter builds the HTTP router with all API routes and the CORS
// middleware mounted.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/health", h.healthHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/pcap/parse", h.parseHandler).Methods(http.MethodPost, http.MethodOptions)
	return r
}

// corsMiddleware mirrors an allow-all CORS policy: any origin, method and
// header, credentials allowed, with OPTIONS preflights short-circuited.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// healthHandler is the static liveness probe.
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseHandler accepts a multipart capture upload, decodes it, runs the
// analysis pipeline and returns the report. A capture that cannot be
// decoded yields 422, which keeps "zero packets" (a valid 200 with a zeroed
// report) distinguishable from "capture could not be read".
func (h *Handler) parseHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "capture upload too large")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "missing 'pcap' form file")
		return
	}
	defer file.Close()

	packets, err := h.decoder.Decode(file)
	if err != nil {
		log.Printf("Decode failed for upload %q: %v", header.Filename, err)
		writeError(w, http.StatusUnprocessableEntity, "could not decode capture")
		return
	}

	rpt := engine.Analyze(packets)

	meta := report.CaptureMeta{ReceivedAt: time.Now(), FileName: header.Filename}
	for _, sink := range h.sinks {
		if err := sink.Store(r.Context(), meta, rpt); err != nil {
			log.Printf("Report sink failed for upload %q: %v", header.Filename, err)
		}
	}

	writeJSON(w, http.StatusOK, rpt)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
