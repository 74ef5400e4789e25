// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package webserver

import (
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/setlife-network/zeus/client/units"
	"github.com/setlife-network/zeus/dex/msgjson"
	"github.com/setlife-network/zeus/dex/ws"
)

var (
	// Time allowed to read the next pong message from the peer. A var to
	// facilitate testing.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// A client id counter.
	cidCounter atomic.Int32
)

type wsClient struct {
	*ws.WSLink
	cid int32
}

func newWSClient(ip string, conn ws.Connection, hndlr func(msg *msgjson.Message) *msgjson.Error) *wsClient {
	return &wsClient{
		WSLink: ws.NewWSLink(ip, conn, pingPeriod, hndlr),
		cid:    cidCounter.Add(1),
	}
}

// handleWS handles the websocket connection request, creating a ws.Connection
// and a websocketHandler thread.
func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil && host != "" {
		ip = host
	}
	wsConn, err := ws.NewConnection(w, r, pingPeriod+pongWait)
	if err != nil {
		log.Errorf("ws connection error: %v", err)
		return
	}
	go s.websocketHandler(wsConn, ip)
}

// websocketHandler handles a new websocket client by creating a new wsClient,
// starting it, and blocking until the connection closes. This method should be
// run as a goroutine.
func (s *WebServer) websocketHandler(conn ws.Connection, ip string) {
	log.Debugf("New websocket client %s", ip)
	var cl *wsClient
	cl = newWSClient(ip, conn, func(msg *msgjson.Message) *msgjson.Error {
		return s.handleMessage(cl, msg)
	})
	wg, err := cl.Connect(s.ctx)
	if err != nil {
		log.Errorf("websocket link error: %v", err)
		conn.Close()
		return
	}
	s.mtx.Lock()
	s.clients[cl.cid] = cl
	s.mtx.Unlock()
	defer func() {
		s.mtx.Lock()
		delete(s.clients, cl.cid)
		s.mtx.Unlock()
	}()

	// Send the current unit so the client can render right away.
	if note, err := msgjson.NewNotification(msgjson.UnitsRoute, s.units.Units()); err == nil {
		cl.Send(note)
	}

	wg.Wait()
	log.Tracef("Disconnected websocket client %s", ip)
}

// handleMessage handles the websocket message, calling the right handler for
// the route.
func (s *WebServer) handleMessage(conn *wsClient, msg *msgjson.Message) *msgjson.Error {
	log.Tracef("message of type %d received for route %s", msg.Type, msg.Route)
	if msg.Type != msgjson.Request {
		// Web server doesn't send requests, only responses and notifications,
		// so a response-type message from a client is an error.
		return msgjson.NewError(msgjson.UnknownMessageType, "web server only handles requests")
	}
	handler, found := wsHandlers[msg.Route]
	if !found {
		return msgjson.NewError(msgjson.RPCUnknownRoute, "unknown route %q", msg.Route)
	}
	result, rpcErr := handler(s, msg)
	if rpcErr != nil {
		return rpcErr
	}
	resp, err := msgjson.NewResponse(msg.ID, result, nil)
	if err != nil {
		return msgjson.NewError(msgjson.RPCInternal, "error encoding response: %v", err)
	}
	if err := conn.Send(resp); err != nil {
		log.Debugf("Failed to send %q response to %s: %v", msg.Route, conn.IP(), err)
	}
	return nil
}

type wsHandler func(*WebServer, *msgjson.Message) (any, *msgjson.Error)

// wsHandlers is the map used by the server to locate the router handler for a
// request.
var wsHandlers = map[string]wsHandler{
	msgjson.UnitsRoute:      wsUnits,
	msgjson.CycleUnitsRoute: wsCycleUnits,
	msgjson.ResetUnitsRoute: wsResetUnits,
	msgjson.AmountRoute:     wsAmount,
}

func wsUnits(s *WebServer, _ *msgjson.Message) (any, *msgjson.Error) {
	return s.units.Units(), nil
}

func wsCycleUnits(s *WebServer, _ *msgjson.Message) (any, *msgjson.Error) {
	return s.units.CycleUnits(), nil
}

func wsResetUnits(s *WebServer, _ *msgjson.Message) (any, *msgjson.Error) {
	s.units.ResetUnits()
	return s.units.Units(), nil
}

// wsAmount renders an amount. Fiat failures are returned as errors with the
// codes RPCFiatDisabled and RPCFiatRatesUnavailable.
func wsAmount(s *WebServer, msg *msgjson.Message) (any, *msgjson.Error) {
	req := new(msgjson.AmountRequest)
	if err := msg.Unmarshal(req); err != nil {
		return nil, msgjson.NewError(msgjson.RPCParseError, "error parsing amount request: %v", err)
	}
	unit, err := parseUnitParam(req.Unit)
	if err != nil {
		return nil, msgjson.NewError(msgjson.RPCArgumentsError, "%v", err)
	}
	resp, err := s.renderAmount(req.Value, unit)
	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, units.ErrFiatDisabled):
		return nil, msgjson.NewError(msgjson.RPCFiatDisabled, "%v", err)
	case errors.Is(err, units.ErrFiatRatesUnavailable):
		return nil, msgjson.NewError(msgjson.RPCFiatRatesUnavailable, "%v", err)
	}
	return nil, msgjson.NewError(msgjson.RPCArgumentsError, "%v", err)
}
