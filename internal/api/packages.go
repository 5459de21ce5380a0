package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"

	"github.com/MediSynth-io/updateservice/internal/models"
	"github.com/MediSynth-io/updateservice/internal/pagination"
)

type packageRequest struct {
	Version     string  `json:"version"`
	Description *string `json:"description"`
}

func (api *Api) CreatePackage(w http.ResponseWriter, r *http.Request) {
	appID, err := pathID(r, "application_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	var req packageRequest
	if err := decode(r, &req); err != nil {
		api.writeError(w, r, err)
		return
	}
	if req.Version == "" {
		api.writeError(w, r, invalid("version is required"))
		return
	}
	if !models.ValidVersion(req.Version) {
		api.writeError(w, r, invalid("Invalid version format"))
		return
	}
	if err := maxLength("description", req.Description); err != nil {
		api.writeError(w, r, err)
		return
	}

	p, err := api.registry.Create(r.Context(), appID, req.Version, req.Description)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p.View())
}

func (api *Api) ListPackages(w http.ResponseWriter, r *http.Request) {
	appID, err := pathID(r, "application_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	page, err := api.pages.Parse(r.URL.Query())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.registry.ApplicationExists(r.Context(), appID); err != nil {
		api.writeError(w, r, err)
		return
	}

	pkgs, err := api.registry.List(r.Context(), appID, page.Limit(), page.Offset)
	if err == nil {
		err = pagination.Check(len(pkgs))
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	summaries := make([]models.PackageSummary, 0, len(pkgs))
	for i := range pkgs {
		summaries = append(summaries, pkgs[i].Summary())
	}
	writeJSON(w, http.StatusOK, summaries)
}

func packageIDs(r *http.Request) (appID, pkgID int64, err error) {
	if appID, err = pathID(r, "application_id"); err != nil {
		return 0, 0, err
	}
	if pkgID, err = pathID(r, "package_id"); err != nil {
		return 0, 0, err
	}
	return appID, pkgID, nil
}

func (api *Api) GetPackage(w http.ResponseWriter, r *http.Request) {
	appID, pkgID, err := packageIDs(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	p, err := api.registry.Get(r.Context(), appID, pkgID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

func (api *Api) DeletePackage(w http.ResponseWriter, r *http.Request) {
	appID, pkgID, err := packageIDs(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	if err := api.registry.Delete(r.Context(), appID, pkgID); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, "Package has been successfully deleted")
}

// UploadFile streams the multipart field "file" into the artifact store
// without buffering the whole body.
func (api *Api) UploadFile(w http.ResponseWriter, r *http.Request) {
	appID, pkgID, err := packageIDs(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		api.writeError(w, r, invalid("multipart form with a file field is required"))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			api.writeError(w, r, invalid("file is required"))
			return
		}
		if err != nil {
			api.writeError(w, r, invalid("malformed multipart body: %v", err))
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		p, err := api.artifacts.Upload(r.Context(), appID, pkgID, part, part.FileName())
		part.Close()
		if err != nil {
			api.writeError(w, r, err)
			return
		}
		api.log.Infow("package file uploaded", "application", appID, "package", pkgID, "file", *p.File, "size", *p.Size)
		writeJSON(w, http.StatusOK, p.View())
		return
	}
}

func (api *Api) DownloadFile(w http.ResponseWriter, r *http.Request) {
	appID, pkgID, err := packageIDs(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	art, err := api.artifacts.Download(r.Context(), appID, pkgID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	f, err := os.Open(art.Path)
	if err != nil {
		api.log.Warnw("artifact vanished before streaming", "path", art.Path, "error", err)
		writeDetail(w, http.StatusNotFound, "File not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	http.ServeContent(w, r, art.Filename, info.ModTime(), f)
}
