package editor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"campusexplorer/errs"
	"campusexplorer/middleware"
	"campusexplorer/models"
	"campusexplorer/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second
	// a drag with no input for this long is abandoned
	idleWait = 2 * time.Minute
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// outbound is what the admin client receives while dragging.
type outbound struct {
	Type     string              `json:"type"`
	State    string              `json:"state,omitempty"`
	Position *models.Coordinates `json:"position,omitempty"`
	Building *models.Building    `json:"building,omitempty"`
	Message  string              `json:"message,omitempty"`
	Kind     errs.Kind           `json:"kind,omitempty"`
}

// Handler serves GET /ws/editor/:id. The gesture begins before the upgrade,
// so permission and lookup failures are plain HTTP errors. After that the
// client streams Events and receives one "moved" frame per move and a final
// "committed" or "error" frame.
func Handler(ed *Editor, log *zap.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		caller := middleware.CapabilityFrom(r.Context())
		g, err := ed.Begin(r.Context(), caller, ps.ByName("id"))
		if err != nil {
			utils.RespondWithErr(w, log, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			g.Cancel()
			log.Warn("editor upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
		defer cancel()

		send := make(chan outbound, 16)
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for msg := range send {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
			}
		}()

		events := make(chan Event)
		go func() {
			defer close(events)
			conn.SetReadLimit(1024)
			for {
				conn.SetReadDeadline(time.Now().Add(idleWait))
				var ev Event
				if err := conn.ReadJSON(&ev); err != nil {
					return
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}()

		send <- outbound{Type: "state", State: g.State().String()}
		g.OnMove(func(pos models.Coordinates) {
			select {
			case send <- outbound{Type: "moved", State: Dragging.String(), Position: &pos}:
			default:
			}
		})
		b, err := g.Drive(ctx, events)
		switch {
		case err == nil:
			send <- outbound{Type: "committed", State: Idle.String(), Building: &b}
		case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
			send <- outbound{Type: "cancelled", State: Idle.String()}
		default:
			out := outbound{Type: "error", State: Idle.String(), Message: err.Error()}
			var de *errs.Error
			if errors.As(err, &de) {
				out.Message, out.Kind = de.Message, de.Kind
			}
			send <- out
		}
		close(send)
		<-writerDone
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
