// Package server is a thin JSON/WebSocket frontend over the core
// AtomSpace: add/fetch/remove atoms, stimulate attention, run one
// forward-chaining pass, and stream lifecycle events to subscribed
// WebSocket clients. Grounded on the teacher's hgql.HGQLServer (gin
// router + gin-contrib/cors + gorilla/websocket upgrader), trimmed
// down to the operations spec §6 actually names and kept as a boundary
// layer the core packages never import back (spec §2: "the
// REST/WebSocket frontends ... consume AtomSpace via the APIs
// specified in §6 but carry no interesting design").
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/EchoCog/atomspace/core/atomspace"
	"github.com/EchoCog/atomspace/core/ecan"
	"github.com/EchoCog/atomspace/core/ure"
)

// Server wires the AtomSpace, attention bank, and rule engine behind
// an HTTP+WebSocket API.
type Server struct {
	Router *gin.Engine

	as     *atomspace.AtomSpace
	bank   *ecan.Bank
	engine *ure.Engine
	log    *zap.SugaredLogger

	upgrader websocket.Upgrader
	hub      *broadcastHub
}

// New builds a Server over an existing AtomSpace, attention bank, and
// rule engine (nil bank/engine disable the attention/infer endpoints).
func New(as *atomspace.AtomSpace, bank *ecan.Bank, engine *ure.Engine, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Server{
		as:     as,
		bank:   bank,
		engine: engine,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		hub: newBroadcastHub(),
	}

	as.Subscribe(atomspace.ObserverFunc(s.hub.onEvent))

	gin.SetMode(gin.ReleaseMode)
	s.Router = gin.New()
	s.Router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"*"}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	s.Router.Use(cors.New(corsCfg))

	s.setupRoutes()
	return s
}

// Run starts the HTTP server, blocking until it errors or the process
// is signalled.
func (s *Server) Run(addr string) error {
	s.log.Infow("starting atomspace server", "addr", addr)
	return s.Router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.handleHealth)
	s.Router.GET("/atoms/:handle", s.handleGetAtom)
	s.Router.GET("/atoms", s.handleListByType)
	s.Router.DELETE("/atoms/:handle", s.handleRemoveAtom)
	s.Router.POST("/atoms/nodes", s.handleAddNode)
	s.Router.POST("/atoms/links", s.handleAddLink)

	s.Router.POST("/attention/stimulate", s.handleStimulate)
	s.Router.POST("/infer/forward", s.handleForward)

	s.Router.GET("/ws/events", s.handleWebSocket)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "atoms": s.as.Size()})
}

func (s *Server) handleGetAtom(c *gin.Context) {
	h := atomspace.Handle(c.Param("handle"))
	atom, ok := s.as.GetAtom(h)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "atom not found"})
		return
	}
	c.JSON(http.StatusOK, toDTO(atom))
}

func (s *Server) handleListByType(c *gin.Context) {
	typeName := c.Query("type")
	if typeName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type query parameter is required"})
		return
	}
	t, ok := atomspace.ParseAtomType(typeName)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown atom type " + typeName})
		return
	}
	includeSubtypes := c.Query("subtypes") == "true"

	handles := s.as.GetByType(t, includeSubtypes)
	out := make([]atomDTO, 0, len(handles))
	for _, h := range handles {
		if atom, ok := s.as.GetAtom(h); ok {
			out = append(out, toDTO(atom))
		}
	}
	c.JSON(http.StatusOK, gin.H{"atoms": out, "count": len(out)})
}

func (s *Server) handleRemoveAtom(c *gin.Context) {
	h := atomspace.Handle(c.Param("handle"))
	recursive := c.Query("recursive") == "true"
	removed, err := s.as.RemoveAtom(h, recursive)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) handleAddNode(c *gin.Context) {
	var req addNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := atomspace.ParseAtomType(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown atom type " + req.Type})
		return
	}
	h, err := s.as.AddNode(t, req.Name, req.truthValue())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	atom, _ := s.as.GetAtom(h)
	c.JSON(http.StatusCreated, toDTO(atom))
}

func (s *Server) handleAddLink(c *gin.Context) {
	var req addLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := atomspace.ParseAtomType(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown atom type " + req.Type})
		return
	}
	outgoing := make([]atomspace.Handle, len(req.Outgoing))
	for i, o := range req.Outgoing {
		outgoing[i] = atomspace.Handle(o)
	}
	h, err := s.as.AddLink(t, outgoing, req.truthValue())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	atom, _ := s.as.GetAtom(h)
	c.JSON(http.StatusCreated, toDTO(atom))
}

func (s *Server) handleStimulate(c *gin.Context) {
	if s.bank == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "attention bank not configured"})
		return
	}
	var req stimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	transferred, err := s.bank.Stimulate(atomspace.Handle(req.Handle), req.Amount, req.Clamp)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transferred": transferred})
}

func (s *Server) handleForward(c *gin.Context) {
	if s.engine == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "rule engine not configured"})
		return
	}
	derived, steps, err := s.engine.Forward(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]string, len(derived))
	for i, h := range derived {
		out[i] = string(h)
	}
	c.JSON(http.StatusOK, gin.H{"steps": steps, "derived": out})
}
