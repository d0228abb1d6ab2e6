package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/pipeline"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
	"github.com/praju435/ml-based-solar-tracking-system/pkg/util"
)

const defaultDeviceID = "panel-01"

// Handler wires the HTTP transport to the pipeline service.
type Handler struct {
	svc    *pipeline.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc *pipeline.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// telemetryRequest accepts the device's wire format including its legacy
// field names. Missing fields are filled, never rejected.
type telemetryRequest struct {
	DeviceID     string   `json:"device_id"`
	Voltage      *float64 `json:"voltage"`
	Illumination *float64 `json:"illumination"`
	LDR          *float64 `json:"ldr"`
	Temperature  *float64 `json:"temperature"`
	Temp         *float64 `json:"temp"`
	Humidity     *float64 `json:"humidity"`
	TiltAngle    *float64 `json:"tilt_angle"`
	PanelAngle   *float64 `json:"panel_angle"`
	Current      *float64 `json:"current"`
	Cur          *float64 `json:"cur"`
}

func (r telemetryRequest) toSample(now time.Time) telemetry.Sample {
	deviceID := r.DeviceID
	if deviceID == "" {
		deviceID = defaultDeviceID
	}
	return telemetry.Sample{
		Timestamp:    now,
		DeviceID:     deviceID,
		Voltage:      pick(r.Voltage),
		Illumination: pick(r.Illumination, r.LDR),
		Temperature:  pick(r.Temperature, r.Temp),
		Humidity:     pick(r.Humidity),
		TiltAngle:    pick(r.TiltAngle, r.PanelAngle),
		Current:      pick(r.Current, r.Cur),
	}
}

func pick(candidates ...*float64) float64 {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return 0
}

// Ingest accepts one telemetry sample and schedules a background pipeline
// run. It acknowledges success regardless of the pipeline's outcome.
func (h *Handler) Ingest(c *gin.Context) {
	var req telemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	sample := req.toSample(util.NowUTC())
	h.svc.Ingest(c.Request.Context(), sample)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Forecast serves the latest persisted daily forecast for a device.
func (h *Handler) Forecast(c *gin.Context) {
	deviceID := c.DefaultQuery("device", defaultDeviceID)
	days, err := strconv.Atoi(c.DefaultQuery("h", "7"))
	if err != nil || days < 0 {
		days = 7
	}
	c.JSON(http.StatusOK, h.svc.Forecast(c.Request.Context(), deviceID, days))
}

// Data serves the dashboard aggregate for a device.
func (h *Handler) Data(c *gin.Context) {
	deviceID := c.DefaultQuery("device", defaultDeviceID)
	data := h.svc.Dashboard(c.Request.Context(), deviceID)
	c.JSON(http.StatusOK, gin.H{
		"status":                      "ok",
		"telemetry":                   data.Telemetry,
		"today_voltage_prediction":    data.TodayVoltage,
		"tomorrow_voltage_prediction": data.TomorrowVoltage,
		"next_7_days_prediction":      data.NextSevenDays,
		"prediction_raw":              data.PredictionRaw,
	})
}

// predictRequest carries the synchronous prediction payload.
type predictRequest struct {
	Sequence []telemetryRequest `json:"sequence"`
	Horizon  int                `json:"horizon"`
}

// Predict runs the prediction steps synchronously, without persistence or
// actuation side effects.
func (h *Handler) Predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if req.Horizon <= 0 {
		req.Horizon = 7
	}

	now := util.NowUTC()
	samples := make([]telemetry.Sample, 0, len(req.Sequence))
	for _, item := range req.Sequence {
		samples = append(samples, item.toSample(now))
	}

	shortTerm, daily, ensemble, err := h.svc.PredictSync(c.Request.Context(), samples, req.Horizon)
	if err != nil {
		status := http.StatusInternalServerError
		code := apperrors.CodeOf(err)
		switch code {
		case apperrors.CodeInvalidRequest, apperrors.CodeInsufficientData:
			status = http.StatusBadRequest
		case apperrors.CodePredictorUnavailable:
			status = http.StatusServiceUnavailable
		case "":
			code = "predict_failed"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	resp := gin.H{
		"short_term":     shortTerm,
		"daily_forecast": daily,
	}
	if ensemble != nil {
		resp["ensemble"] = ensemble
	}
	c.JSON(http.StatusOK, resp)
}

// Health reports process status, store connectivity and known devices.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.HealthCheck(c.Request.Context()))
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
