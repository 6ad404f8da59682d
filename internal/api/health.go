package api

import (
	"context"
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/models/dtos"

	"gorm.io/gorm"
)

const healthProbeKey = "health:probe"

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Verifies the server, database and cache are reachable.
// @Tags Misc
// @Success 200 {object} dtos.HealthCheckResponse
// @Router /healthCheck [get]
func HealthCheckHandler(db *gorm.DB, cache common.CacheInterface, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := map[string]dtos.ServiceStatus{
			"database": pingDatabase(ctx, db),
			"cache":    probeCache(ctx, cache),
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := dtos.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}
		if overallStatus != "ok" {
			common.RespondErrorData(w, initTime, nil, "Service degraded", resp, http.StatusServiceUnavailable)
			return
		}
		common.RespondSuccess(w, initTime, "Service healthy", resp)
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) dtos.ServiceStatus {
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logging.Error("Health check: database unreachable", "error", err)
		return dtos.ServiceStatus{Status: "down", Details: "Database unreachable"}
	}
	return dtos.ServiceStatus{Status: "ok", Details: "Database connected"}
}

func probeCache(ctx context.Context, cache common.CacheInterface) dtos.ServiceStatus {
	cache.Set(ctx, healthProbeKey, []byte("1"), 10*time.Second)
	if _, ok := cache.Get(ctx, healthProbeKey); !ok {
		return dtos.ServiceStatus{Status: "down", Details: "cache write not readable"}
	}
	return dtos.ServiceStatus{Status: "ok", Details: "Cache reachable"}
}
