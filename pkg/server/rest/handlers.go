package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/rodroute/pkg/guidance"
	"github.com/lintang-b-s/rodroute/pkg/server/rest/service"
	"github.com/lintang-b-s/rodroute/pkg/util"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

type RouteService interface {
	Route(ctx context.Context, req service.RouteRequest) (service.RouteOutput, error)
	Rate(ctx context.Context, tag string, value float64) error
}

type RouteHandler struct {
	svc      RouteService
	metrics  *Metrics
	validate *validator.Validate
	trans    ut.Translator
	logger   *zap.Logger
}

func RodRouter(r chi.Router, svc RouteService, m *Metrics, logger *zap.Logger) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &RouteHandler{svc: svc, metrics: m, validate: validate, trans: trans, logger: logger}

	r.Group(func(r chi.Router) {
		r.Route("/api/route", func(r chi.Router) {
			r.Post("/generate", handler.Generate)
			r.Post("/return", handler.Return)
			r.Post("/rate", handler.Rate)
		})
	})
}

// RouteRequest model info
//
//	@Description	request body untuk membuat rute jalan kaki melingkar
type RouteRequest struct {
	Lat float64 `json:"lat" validate:"required,lt=90,gt=-90"`
	Lon float64 `json:"lon" validate:"required,lt=180,gt=-180"`
	// Distance in km
	Distance float64 `json:"distance" validate:"required,gt=0,lte=100"`
	// Tags yang disukai, dipisah "/" (contoh: park/water)
	Tags    string `json:"tags"`
	NegTags string `json:"neg_tags"`
	Type    string `json:"type" validate:"omitempty,oneof=directions geojson"`
}

func (s *RouteRequest) Bind(r *http.Request) error {
	return nil
}

func (s *RouteRequest) toService() service.RouteRequest {
	return service.RouteRequest{
		Lat:      s.Lat,
		Lon:      s.Lon,
		Distance: s.Distance,
		Tags:     s.Tags,
		NegTags:  s.NegTags,
		Type:     service.ParseRouteType(s.Type),
	}
}

// ReturnRequest model info
//
//	@Description	request body untuk rute pulang, dari posisi sekarang kembali ke rute yang sudah dilalui
type ReturnRequest struct {
	RouteRequest
	VisitedPath string `json:"visited_path" validate:"required"`
}

func (s *ReturnRequest) Bind(r *http.Request) error {
	if s.VisitedPath == "" {
		return errors.New("visited_path is required")
	}
	return nil
}

// RouteResponse model info
//
//	@Description	response body rute. route diisi untuk type directions, geojson untuk type geojson
type RouteResponse struct {
	Route    *guidance.Directions       `json:"route,omitempty"`
	GeoJSON  *geojson.FeatureCollection `json:"geojson,omitempty"`
	Length   float64                    `json:"length"`
	Attempts int                        `json:"attempts"`
}

func RenderRouteResponse(out service.RouteOutput) *RouteResponse {
	return &RouteResponse{
		Route:    out.Directions,
		GeoJSON:  out.GeoJSON,
		Length:   util.RoundFloat(out.Length, 3),
		Attempts: out.Attempts,
	}
}

// RateRequest model info
//
//	@Description	request body untuk memberi rating rute
type RateRequest struct {
	Tag    string  `json:"tag" validate:"required"`
	Rating float64 `json:"rating" validate:"gte=0,lte=1"`
}

func (s *RateRequest) Bind(r *http.Request) error {
	return nil
}

// RateResponse model info
//
//	@Description	response body rating
type RateResponse struct {
	Message string `json:"message"`
}

func (h *RouteHandler) valid(w http.ResponseWriter, r *http.Request, data interface{}) bool {
	if err := h.validate.Struct(data); err != nil {
		vv := translateError(err, h.trans)
		render.Render(w, r, ErrValidation(err, vv))
		return false
	}
	return true
}

// Generate
//
//	@Summary		buat rute jalan kaki melingkar dengan panjang kira-kira distance km
//	@Description	buat rute jalan kaki melingkar yang melewati tempat dengan tags yang disukai dan menghindari neg_tags
//	@Tags			routes
//	@Param			body	body	RouteRequest	true	"request body rute melingkar"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/route/generate [post]
//	@Success		200	{object}	RouteResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *RouteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	data := &RouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.valid(w, r, data) {
		return
	}
	h.route(w, r, data.toService())
}

// Return
//
//	@Summary		buat rute pulang
//	@Description	buat rute dari posisi sekarang yang kembali ke node terakhir dari visited_path tanpa melewati jalan yang sama
//	@Tags			routes
//	@Param			body	body	ReturnRequest	true	"request body rute pulang"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/route/return [post]
//	@Success		200	{object}	RouteResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *RouteHandler) Return(w http.ResponseWriter, r *http.Request) {
	data := &ReturnRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.valid(w, r, data) {
		return
	}
	req := data.toService()
	req.VisitedPath = data.VisitedPath
	h.route(w, r, req)
}

func (h *RouteHandler) route(w http.ResponseWriter, r *http.Request, req service.RouteRequest) {
	out, err := h.svc.Route(r.Context(), req)
	if err != nil {
		render.Render(w, r, ErrFromService(err))
		return
	}
	if h.metrics != nil {
		h.metrics.attempts.Observe(float64(out.Attempts))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderRouteResponse(out))
}

// Rate
//
//	@Summary		beri rating untuk rute yang sudah dilalui
//	@Description	rating (0 sampai 1) diterapkan ke semua edge dari rute secara asynchronous
//	@Tags			routes
//	@Param			body	body	RateRequest	true	"request body rating"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/route/rate [post]
//	@Success		202	{object}	RateResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *RouteHandler) Rate(w http.ResponseWriter, r *http.Request) {
	data := &RateRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.valid(w, r, data) {
		return
	}

	if err := h.svc.Rate(r.Context(), data.Tag, data.Rating); err != nil {
		render.Render(w, r, ErrFromService(err))
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, &RateResponse{Message: "Everything is fine!"})
}
