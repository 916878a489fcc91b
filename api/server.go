package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"shotframe/model"
	"shotframe/palette"
	"shotframe/scheduler"
	"shotframe/screenshot"
	"shotframe/storage"
)

const maxUploadBytes = 64 << 20

// CaptureFunc captures a screenshot and stores it.
type CaptureFunc func(ctx context.Context, opts model.ScreenshotOptions, progress screenshot.ProgressFunc) (*model.CaptureRecord, error)

type Server struct {
	store    *storage.Store
	tool     *screenshot.Tool
	capture  CaptureFunc
	sched    *scheduler.Scheduler
	colors   *palette.Registry
	defaults model.ScreenshotOptions
	ws       *WSConnectionManager
	upgrader websocket.Upgrader
}

func NewServer(store *storage.Store, tool *screenshot.Tool, captureFn CaptureFunc, sched *scheduler.Scheduler, colors *palette.Registry, defaults model.ScreenshotOptions) *Server {
	return &Server{
		store:    store,
		tool:     tool,
		capture:  captureFn,
		sched:    sched,
		colors:   colors,
		defaults: defaults,
		ws:       NewWSConnectionManager(),
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/validate", s.handleValidate)
	mux.HandleFunc("/api/capture", s.handleCapture)
	mux.HandleFunc("/api/capture/stream", s.handleCaptureStream)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/captures", s.handleCaptures)
	mux.HandleFunc("/api/captures/", s.handleCaptureByID)
	mux.HandleFunc("/api/export/captures.csv", s.handleExportCapturesCSV)
	mux.HandleFunc("/api/schedules", s.handleSchedules)
	mux.HandleFunc("/api/schedules/", s.handleScheduleByID)
	mux.HandleFunc("/api/colors", s.handleColors)
	mux.HandleFunc("/api/ws", s.handleWS)
}

// Shutdown disconnects websocket clients.
func (s *Server) Shutdown() {
	s.ws.CloseAll()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":     "ok",
		"capture":    s.tool.Ready(),
		"themes":     len(s.tool.Themes()),
		"platforms":  len(s.tool.Platforms()),
		"ws_clients": s.ws.Count(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// BroadcastCaptureComplete notifies websocket clients about a stored capture.
func (s *Server) BroadcastCaptureComplete(rec *model.CaptureRecord) {
	s.ws.Broadcast(Event{
		Type:    "capture_complete",
		Message: rec.Filename,
		Capture: rec,
	})
}

// ---------- capture ----------

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	platformID := r.URL.Query().Get("platform")
	if platformID == "" {
		platformID = s.defaults.PlatformID
	}

	v, err := s.tool.ValidatePlatformSize(platformID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) decodeOptions(r *http.Request) (model.ScreenshotOptions, error) {
	opts := s.defaults
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
			return opts, fmt.Errorf("%w: invalid json: %v", model.ErrMalformedInput, err)
		}
	}
	return opts, opts.Validate()
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	opts, err := s.decodeOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := s.capture(r.Context(), opts, nil)
	if err != nil {
		log.Printf("[api] capture: %v", err)
		writeError(w, err)
		return
	}
	s.BroadcastCaptureComplete(rec)

	s.serveCapture(w, r, rec, "attachment")
}

type progressUpdate struct {
	Stage   string
	Message string
}

type captureOutcome struct {
	rec *model.CaptureRecord
	err error
}

// handleCaptureStream runs a capture and streams its progress as SSE. Progress
// is also broadcast to websocket clients under the same session id.
func (s *Server) handleCaptureStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	opts, err := s.decodeOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sessionID := uuid.NewString()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	send := func(v map[string]any) {
		fmt.Fprintf(w, "data: %s\n\n", mustJSON(v))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}

	send(map[string]any{
		"type":      "started",
		"sessionId": sessionID,
		"message":   "Starting capture...",
	})

	ctx := r.Context()
	progressCh := make(chan progressUpdate, 16)
	resultCh := make(chan captureOutcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				resultCh <- captureOutcome{err: fmt.Errorf("panic: %v", p)}
			}
		}()

		progressFn := func(stage string, message string) {
			s.ws.Broadcast(Event{Type: "capture_progress", SessionID: sessionID, Stage: stage, Message: message})
			select {
			case progressCh <- progressUpdate{Stage: stage, Message: message}:
			case <-ctx.Done():
			}
		}

		rec, err := s.capture(ctx, opts, progressFn)
		resultCh <- captureOutcome{rec: rec, err: err}
	}()

	writeProgress := func(u progressUpdate) {
		send(map[string]any{
			"type":    "progress",
			"stage":   u.Stage,
			"message": u.Message,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case u := <-progressCh:
			writeProgress(u)
		case final := <-resultCh:
			// Progress sent before the result may still be buffered.
			for drained := false; !drained; {
				select {
				case u := <-progressCh:
					writeProgress(u)
				default:
					drained = true
				}
			}

			if final.err != nil {
				send(map[string]any{
					"type":    "error",
					"message": final.err.Error(),
				})
				return
			}
			s.BroadcastCaptureComplete(final.rec)
			send(map[string]any{
				"type":    "completed",
				"capture": final.rec,
				"message": "Capture completed successfully",
			})
			return
		}
	}
}

// handleRender applies a theme to an uploaded png, jpeg or webp image.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	themeID := q.Get("theme")
	if themeID == "" {
		themeID = s.defaults.ThemeID
	}
	format := s.defaults.Format
	if v := q.Get("format"); v != "" {
		f, err := model.ParseFormat(v)
		if err != nil {
			writeError(w, err)
			return
		}
		format = f
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusRequestEntityTooLarge)
		return
	}

	res, err := s.tool.Render(data, themeID, format)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", res.Format.ContentType())
	w.Header().Set("X-Image-Width", strconv.Itoa(res.Width))
	w.Header().Set("X-Image-Height", strconv.Itoa(res.Height))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// ---------- history ----------

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, fmt.Errorf("%w: invalid from", model.ErrMalformedInput)
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, fmt.Errorf("%w: invalid to", model.ErrMalformedInput)
		}
		to = t
	}
	return from, to, nil
}

func (s *Server) handleCaptures(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := s.store.ListCaptures(from, to)
	if err != nil {
		http.Error(w, "failed to load captures", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []model.CaptureRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCaptureByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/captures/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	rec, err := s.store.FindCapture(id)
	if err != nil {
		writeError(w, err)
		return
	}

	disposition := "inline"
	if r.URL.Query().Get("download") != "" {
		disposition = "attachment"
	}
	s.serveCapture(w, r, rec, disposition)
}

func (s *Server) serveCapture(w http.ResponseWriter, r *http.Request, rec *model.CaptureRecord, disposition string) {
	f, err := s.store.OpenCapture(rec)
	if err != nil {
		http.Error(w, "failed to open capture", http.StatusInternalServerError)
		log.Printf("[api] open capture %s: %v", rec.ID, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", rec.Options.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, rec.Filename))
	w.Header().Set("X-Capture-ID", rec.ID)
	http.ServeContent(w, r, rec.Filename, rec.Timestamp, f)
}

func (s *Server) handleExportCapturesCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := s.store.ListCaptures(from, to)
	if err != nil {
		http.Error(w, "failed to load captures", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("captures-%s.csv", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"ID", "Timestamp", "Filename", "Platform", "Theme", "Appearance", "Format", "Width", "Height", "Bytes", "Schedule"}
	if err := writer.Write(header); err != nil {
		log.Printf("[api] write CSV header: %v", err)
		return
	}

	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.Timestamp.Format(time.RFC3339),
			rec.Filename,
			rec.Options.PlatformID,
			rec.Options.ThemeID,
			string(rec.Options.Appearance),
			string(rec.Options.Format),
			strconv.Itoa(rec.Width),
			strconv.Itoa(rec.Height),
			strconv.Itoa(rec.Bytes),
			rec.Schedule,
		}
		if err := writer.Write(row); err != nil {
			log.Printf("[api] write CSV row: %v", err)
			return
		}
	}
}

// ---------- schedules ----------

func (s *Server) decodeSchedule(r *http.Request) (model.Schedule, error) {
	sc := model.Schedule{Options: s.defaults}
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		return sc, fmt.Errorf("%w: invalid json", model.ErrMalformedInput)
	}
	if sc.Type == "" {
		sc.Type = model.ScheduleInterval
	}
	if !scheduler.Validate(sc) {
		return sc, fmt.Errorf("%w: invalid %s schedule", model.ErrMalformedInput, sc.Type)
	}
	return sc, sc.Options.Validate()
}

func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.sched.Schedules())

	case http.MethodPost:
		sc, err := s.decodeSchedule(r)
		if err != nil {
			writeError(w, err)
			return
		}
		sc.ID = uuid.NewString()
		if sc.Name == "" {
			sc.Name = sc.ID
		}

		s.sched.SetSchedules(append(s.sched.Schedules(), sc))
		writeJSON(w, http.StatusCreated, sc)

	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleScheduleByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/schedules/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	cur := s.sched.Schedules()

	switch r.Method {
	case http.MethodGet:
		for _, sc := range cur {
			if sc.ID == id {
				writeJSON(w, http.StatusOK, sc)
				return
			}
		}
		http.NotFound(w, r)

	case http.MethodPut:
		upd, err := s.decodeSchedule(r)
		if err != nil {
			writeError(w, err)
			return
		}
		upd.ID = id

		found := false
		for i := range cur {
			if cur[i].ID == id {
				cur[i] = upd
				found = true
				break
			}
		}
		if !found {
			http.NotFound(w, r)
			return
		}

		s.sched.SetSchedules(cur)
		writeJSON(w, http.StatusOK, upd)

	case http.MethodDelete:
		out := cur[:0]
		found := false
		for _, sc := range cur {
			if sc.ID == id {
				found = true
				continue
			}
			out = append(out, sc)
		}
		if !found {
			http.NotFound(w, r)
			return
		}

		s.sched.SetSchedules(out)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPut+", "+http.MethodDelete)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ---------- colors / websocket ----------

func (s *Server) handleColors(w http.ResponseWriter, r *http.Request) {
	appearance := model.Appearance(r.URL.Query().Get("appearance"))
	switch appearance {
	case "":
		writeJSON(w, http.StatusOK, s.colors.Definitions())
	case model.AppearanceLight, model.AppearanceDark:
		writeJSON(w, http.StatusOK, s.colors.Resolve(appearance))
	default:
		http.Error(w, "appearance must be light or dark", http.StatusBadRequest)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[api] websocket upgrade: %v", err)
		return
	}
	s.ws.Add(conn)
	defer func() {
		s.ws.Remove(conn)
		conn.Close()
	}()

	_ = s.ws.WriteJSON(conn, Event{Type: "hello", Time: time.Now().UTC().Format(time.RFC3339)})

	// Clients only listen; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ---------- helpers ----------

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrMalformedInput):
		status = http.StatusBadRequest
	case errors.Is(err, screenshot.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] writeJSON: %v", err)
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{"error":"marshal error"}`
	}
	return string(b)
}
