package app

import (
	"context"
	"net/http"
	"time"

	"github.com/cinetick/seat-reservation-core/api"
)

// healthcheckHandler probes the stores the service cannot run without. A
// failing probe degrades the report instead of erroring: the handler itself
// is up, the dependency is not.
func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dependencies := map[string]string{
		"postgres": "up",
		"redis":    "up",
	}

	if err := app.db.Ping(ctx); err != nil {
		dependencies["postgres"] = "down"
	}

	if err := app.redis.Ping(ctx).Err(); err != nil {
		dependencies["redis"] = "down"
	}

	status := "UP"
	code := http.StatusOK

	for _, state := range dependencies {
		if state != "up" {
			status = "DEGRADED"
			code = http.StatusServiceUnavailable
			break
		}
	}

	resp := api.HealthcheckResponse{
		Status: status,
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: app.config.Env,
		},
		Dependencies: dependencies,
	}

	app.writeJSON(w, code, resp, nil)
}
