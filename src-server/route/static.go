package route

import (
	"net/http"
	"os"
	"path/filepath"

	"confreg/src-server/utils"
)

// Static serves assets (stylesheet, logos) from STATIC_DIR. The routes are
// not registered when no directory is configured.
func Static(muxer *http.ServeMux, as *utils.AppState) {
	staticDir := as.Config.GetStaticDir()
	if staticDir == "" {
		return
	}
	files := http.FS(os.DirFS(staticDir))

	muxer.HandleFunc("GET /static/{filepath...}", func(w http.ResponseWriter, r *http.Request) {
		file, err := files.Open(filepath.Clean(r.PathValue("filepath")))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		defer file.Close()
		stat, err := file.Stat()
		if err != nil || stat.IsDir() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.ServeContent(w, r, stat.Name(), stat.ModTime(), file)
	})
}
