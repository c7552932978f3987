package http

import (
	"bytes"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/mind-engage/mindengage-scorm/internal/export"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
)

// ExportSCORMHandler streams the SCORM 1.2 zip of a course. The ETag is the
// tree fingerprint, so If-None-Match is answered with 304 by ServeContent.
func ExportSCORMHandler(svc *export.Service, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "courseID")
		if !ok {
			return
		}
		b, err := svc.Export(r.Context(), id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="`+b.Name+`"`)
		w.Header().Set("ETag", strconv.Quote(b.ETag))
		nethttp.ServeContent(w, r, b.Name, time.Time{}, bytes.NewReader(b.Data))
	}
}
