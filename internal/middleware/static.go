package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/respond"
	"go.uber.org/zap"
)

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><rect width="200" height="200" fill="#f0f0f0"/><circle cx="100" cy="92" r="38" fill="none" stroke="#999" stroke-width="10"/><path d="M62 92h76" stroke="#999" stroke-width="10"/><text x="100" y="170" text-anchor="middle" font-family="Arial" font-size="14" fill="#666">ITEM</text></svg>`

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

var errImageNotFound = apperrors.New(apperrors.KindNotFound, "IMAGE_NOT_FOUND", "Image not found")

// ItemImageServer serves menu item pictures from a directory. Only image
// files are served; an image that is not on disk yet gets a placeholder.
type ItemImageServer struct {
	dir    string
	logger *zap.Logger
}

func NewItemImageServer(dir string, logger *zap.Logger) *ItemImageServer {
	return &ItemImageServer{dir: dir, logger: logger.Named("images")}
}

func (s *ItemImageServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		respond.JSON(w, http.StatusMethodNotAllowed, respond.ErrorResponse{Error: "Method not allowed", Code: "METHOD_NOT_ALLOWED"})
		return
	}

	name := filepath.Clean("/" + r.URL.Path)
	contentType, ok := imageTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		respond.Error(w, s.logger, errImageNotFound)
		return
	}

	path := filepath.Join(s.dir, name)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=2592000")
		http.ServeFile(w, r, path)
		return
	}

	s.logger.Debug("item image missing, serving placeholder", zap.String("image", name))
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write([]byte(placeholderSVG))
}
