package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/coder/websocket"

	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/sshexec"
	"github.com/craftops/panel/internal/sshtail"
)

// ConsoleWS is a live two-way console: outgoing text frames carry console
// log lines, incoming text frames are injected into the server console. One
// socket, one remote tail; closing either side tears down both.
func (a *API) ConsoleWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("console ws: accept error: %v", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(64 * 1024)

	relayCtx, relayCancel := context.WithCancel(r.Context())
	defer relayCancel()

	lines, err := sshtail.Follow(relayCtx, sess.Client(), 100,
		minecraft.ScreenLogPath(sess.RemoteUser),
		minecraft.ScreenLogFallbackPath(sess.RemoteUser))
	if err != nil {
		conn.Close(4502, "failed to open console log")
		return
	}

	// Client → console
	go func() {
		defer relayCancel()
		for {
			msgType, data, err := conn.Read(relayCtx)
			if err != nil {
				return
			}
			if msgType != websocket.MessageText {
				continue
			}
			send, err := minecraft.ConsoleCommand(string(data))
			if err != nil {
				conn.Write(relayCtx, websocket.MessageText, []byte("[ERROR] "+err.Error()))
				continue
			}
			if _, err := sshexec.Run(relayCtx, sess.Client(), send); err != nil {
				conn.Write(relayCtx, websocket.MessageText, []byte("[ERROR] "+err.Error()))
			}
		}
	}()

	// Console → client
	for {
		select {
		case line, open := <-lines:
			if !open {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := conn.Write(relayCtx, websocket.MessageText, []byte(line)); err != nil {
				return
			}
		case <-relayCtx.Done():
			return
		}
	}
}
