package apihttp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"playstream/internal/domain"
)

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoSource):
		writeError(w, http.StatusBadRequest, "invalid_request", "a magnet or torrent file is required")
	case errors.Is(err, domain.ErrSourceAmbiguous):
		writeError(w, http.StatusBadRequest, "invalid_request", "provide either a magnet or a torrent file, not both")
	case errors.Is(err, domain.ErrUnknownMediaKind):
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown media kind")
	case errors.Is(err, domain.ErrAlreadyActive):
		writeError(w, http.StatusConflict, "already_active", "download already active")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// saveUploadedFile writes a dropped .torrent file to a temp location so the
// engine can parse it from disk.
func saveUploadedFile(src io.Reader, filename string) (string, error) {
	base := strings.TrimSpace(filename)
	if base == "" {
		base = "torrent"
	}
	base = strings.ReplaceAll(base, string(os.PathSeparator), "_")
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext)
	pattern := prefix + "-*" + ext

	out, err := os.CreateTemp(os.TempDir(), pattern)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}

	return out.Name(), nil
}

func parsePositiveInt(value string, requirePositive bool) (int, error) {
	if strings.TrimSpace(value) == "" {
		return -1, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if requirePositive && parsed <= 0 {
		return 0, errors.New("must be > 0")
	}
	if !requirePositive && parsed < 0 {
		return 0, errors.New("must be >= 0")
	}
	return parsed, nil
}

func parseMediaKind(raw string) domain.MediaKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "movie":
		return domain.MediaKindMovie
	case "show":
		return domain.MediaKindShow
	default:
		return domain.MediaKindUnknown
	}
}
