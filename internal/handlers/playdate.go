package handlers

import (
	"context"
	"net/http"

	"github.com/goplaynow/playdate-api/internal/auth"
	"github.com/goplaynow/playdate-api/internal/geo"
	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/service"
	"go.uber.org/zap"
)

type PlaydateHandler struct {
	svc             *service.Service
	defaultRadiusKm float64
	logger          *zap.Logger
}

func NewPlaydateHandler(svc *service.Service, defaultRadiusKm float64, logger *zap.Logger) *PlaydateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaydateHandler{svc: svc, defaultRadiusKm: defaultRadiusKm, logger: logger}
}

type PlaydateIDInput struct {
	ID string `path:"id" doc:"Playdate ID"`
}

type ListPlaydatesInput struct {
	Mine bool `query:"mine" doc:"Only playdates you created, including past and cancelled ones"`
}

type PlaydatesOutput struct {
	Body []models.Playdate
}

type CreatePlaydateInput struct {
	Body service.PlaydateForm
}

type PlaydateOutput struct {
	Status int
	Body   *models.Playdate
}

type UpdatePlaydateInput struct {
	ID   string `path:"id" doc:"Playdate ID"`
	Body service.PlaydateForm
}

type JoinInput struct {
	ID   string `path:"id" doc:"Playdate ID"`
	Body struct {
		ChildIDs []string `json:"child_ids" doc:"Children to bring"`
	}
}

type RemoveChildInput struct {
	EntryID string `path:"entryId" doc:"Participant entry ID"`
	ChildID string `path:"childId" doc:"Child ID"`
}

type RosterOutput struct {
	Body *service.RosterView
}

type NearbyInput struct {
	Lat      float64 `query:"lat" required:"true" minimum:"-90" maximum:"90" doc:"Latitude of the search origin"`
	Lon      float64 `query:"lon" required:"true" minimum:"-180" maximum:"180" doc:"Longitude of the search origin"`
	RadiusKm float64 `query:"radius_km" doc:"Search radius in kilometres"`
}

type NearbyPlaydate struct {
	Playdate   models.Playdate `json:"playdate"`
	DistanceKm float64         `json:"distance_km"`
}

type NearbyOutput struct {
	Body []NearbyPlaydate
}

func (h *PlaydateHandler) HandleList(ctx context.Context, input *ListPlaydatesInput) (*PlaydatesOutput, error) {
	var (
		list []models.Playdate
		err  error
	)
	if input.Mine {
		userID, authErr := requireUser(ctx)
		if authErr != nil {
			return nil, authErr
		}
		list, err = h.svc.ListByCreator(ctx, userID)
	} else {
		list, err = h.svc.ListUpcoming(ctx)
	}
	if err != nil {
		return nil, h.fail(err)
	}
	if list == nil {
		list = []models.Playdate{}
	}
	return &PlaydatesOutput{Body: list}, nil
}

func (h *PlaydateHandler) HandleCreate(ctx context.Context, input *CreatePlaydateInput) (*PlaydateOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := h.svc.CreatePlaydate(ctx, userID, input.Body)
	if err != nil {
		return nil, h.fail(err)
	}
	return &PlaydateOutput{Status: http.StatusCreated, Body: p}, nil
}

func (h *PlaydateHandler) HandleNearby(ctx context.Context, input *NearbyInput) (*NearbyOutput, error) {
	radius := input.RadiusKm
	if radius == 0 {
		radius = h.defaultRadiusKm
	}
	ranked, err := h.svc.Nearby(ctx, geo.Point{Lat: input.Lat, Lon: input.Lon}, radius)
	if err != nil {
		return nil, h.fail(err)
	}
	out := &NearbyOutput{Body: make([]NearbyPlaydate, 0, len(ranked))}
	for _, r := range ranked {
		out.Body = append(out.Body, NearbyPlaydate{Playdate: r.Item, DistanceKm: r.DistanceKm})
	}
	return out, nil
}

// HandleGet works signed in or not; anonymous callers get no personal fields.
// Parents on the roster never carry contact details.
func (h *PlaydateHandler) HandleGet(ctx context.Context, input *PlaydateIDInput) (*RosterOutput, error) {
	userID, _ := auth.UserID(ctx)
	return h.roster(h.svc.LoadRoster(ctx, input.ID, userID))
}

func (h *PlaydateHandler) HandleUpdate(ctx context.Context, input *UpdatePlaydateInput) (*RosterOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return h.roster(h.svc.Update(ctx, input.ID, userID, input.Body))
}

func (h *PlaydateHandler) HandleCancel(ctx context.Context, input *PlaydateIDInput) (*RosterOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return h.roster(h.svc.Cancel(ctx, input.ID, userID))
}

func (h *PlaydateHandler) HandleJoin(ctx context.Context, input *JoinInput) (*RosterOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return h.roster(h.svc.Join(ctx, input.ID, userID, input.Body.ChildIDs))
}

func (h *PlaydateHandler) HandleLeave(ctx context.Context, input *PlaydateIDInput) (*RosterOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return h.roster(h.svc.Leave(ctx, input.ID, userID))
}

func (h *PlaydateHandler) HandleRemoveChild(ctx context.Context, input *RemoveChildInput) (*RosterOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return h.roster(h.svc.RemoveChild(ctx, input.EntryID, input.ChildID, userID))
}

func (h *PlaydateHandler) roster(view *service.RosterView, err error) (*RosterOutput, error) {
	if err != nil {
		return nil, h.fail(err)
	}
	return &RosterOutput{Body: view}, nil
}

func (h *PlaydateHandler) fail(err error) error {
	httpErr := toHTTPError(err)
	if status, ok := httpErr.(interface{ GetStatus() int }); ok && status.GetStatus() >= 500 {
		h.logger.Error("playdate request failed", zap.Error(err))
	}
	return httpErr
}
