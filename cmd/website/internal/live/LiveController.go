package live

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/mediacatalog/cmd/website/internal/viewmodels"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/gorilla/websocket"
)

type LiveControllerConfig struct {
	CatalogService services.CatalogServicer
	Hub            *Hub
	Upgrader       *websocket.Upgrader
}

type LiveController struct {
	catalogService services.CatalogServicer
	hub            *Hub
	upgrader       *websocket.Upgrader
}

func NewLiveController(config LiveControllerConfig) LiveController {
	if config.Upgrader == nil {
		config.Upgrader = &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}
	}

	return LiveController{
		catalogService: config.CatalogService,
		hub:            config.Hub,
		upgrader:       config.Upgrader,
	}
}

/*
GET /photo/{id}/live
*/
func (c LiveController) CommentFeed(w http.ResponseWriter, r *http.Request) {
	var (
		err  error
		conn *websocket.Conn
	)

	user := viewmodels.GetUserFromContext(r)
	photoID := httphelpers.GetFromRequest[int](r, "id")

	if _, err = c.catalogService.GetPhoto(r.Context(), user.ID, photoID); err != nil {
		if errors.Is(err, models.ErrPhotoNotFound) {
			httphelpers.WriteText(w, http.StatusNotFound, "photo not found")
			return
		}

		slog.Error("error checking photo for live feed", "error", err, "photoID", photoID)
		httphelpers.TextInternalServerError(w, "unable to open live feed")
		return
	}

	if conn, err = c.upgrader.Upgrade(w, r, nil); err != nil {
		slog.Error("error upgrading live feed connection", "error", err, "photoID", photoID)
		return
	}

	c.hub.Subscribe(conn, photoID, user.ID, viewmodels.GetSessionKeyFromContext(r))
}
