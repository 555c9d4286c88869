package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/saransh1220/snaplabel/internal/modules/filestorage/domain"
	"github.com/saransh1220/snaplabel/internal/shared/utils"
)

// maxUploadBytes bounds a single local upload.
const maxUploadBytes = 20 << 20

// UploadHandler accepts PUTs against URLs signed by local storage.
type UploadHandler struct {
	receiver domain.UploadReceiver
	logger   *slog.Logger
}

func NewUploadHandler(receiver domain.UploadReceiver, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{receiver: receiver, logger: logger}
}

// Put handles PUT /uploads/{key...}.
func (h *UploadHandler) Put(w http.ResponseWriter, r *http.Request) {
	expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusForbidden, "Invalid upload URL", nil)
		return
	}

	upload := domain.SignedUpload{
		Key:         r.PathValue("key"),
		ContentType: r.Header.Get("Content-Type"),
		Expires:     expires,
		Signature:   r.URL.Query().Get("signature"),
	}

	if err := h.receiver.Verify(upload); err != nil {
		msg := "Invalid upload URL"
		if errors.Is(err, domain.ErrURLExpired) {
			msg = "Upload URL expired"
		}
		utils.WriteError(w, http.StatusForbidden, msg, nil)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := h.receiver.UploadFile(r.Context(), upload.Key, body, upload.ContentType); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, "Upload too large", nil)
			return
		}
		h.logger.Error("local upload failed", "key", upload.Key, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Upload failed", err)
		return
	}

	h.logger.Info("object stored", "key", upload.Key, "content_type", upload.ContentType)
	w.WriteHeader(http.StatusOK)
}
