package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/shoplens/shoplens-backend/api/middleware"
	"github.com/shoplens/shoplens-backend/api/responses"
	"github.com/shoplens/shoplens-backend/internal/audit"
	"github.com/shoplens/shoplens-backend/internal/export"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

// ExportShopData serves the shop's data as a CSV download. The file is
// assembled in memory first so a mid-query failure still gets a clean
// JSON error instead of a truncated download.
func ExportShopData(svc export.Service, auditSvc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		shopID, sessionID, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var buf bytes.Buffer
		counts, err := svc.WriteCSV(r.Context(), shopID, &buf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if auditSvc != nil {
			auditSvc.Record(r.Context(), audit.RecordParams{
				ShopID:    shopID,
				SessionID: &sessionID,
				Action:    enums.AuditActionDataExport,
				Detail:    fmt.Sprintf("sessions=%d notifications=%d suggestions=%d", counts.Sessions, counts.Notifications, counts.Suggestions),
				ClientIP:  middleware.ClientIP(r),
			})
		}

		filename := fmt.Sprintf("shoplens-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
